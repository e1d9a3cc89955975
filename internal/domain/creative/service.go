package creative

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adhub/adhub-api/internal/pkg/imaging"
	"github.com/adhub/adhub-api/internal/pkg/storage"
)

// maxUploadSize bounds creative uploads at 10 MB
const maxUploadSize = 10 << 20

// Asset is a stored fallback creative with its public URLs
type Asset struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ThumbKey    string `json:"thumb_key"`
	ThumbURL    string `json:"thumb_url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
}

// Service processes and stores fallback creative images
type Service struct {
	storage   storage.Storage
	processor *imaging.Processor
}

func NewService(store storage.Storage, processor *imaging.Processor) *Service {
	return &Service{storage: store, processor: processor}
}

// Upload decodes the image, renders a thumbnail and stores both variants.
// The returned URLs are suitable fallback content for a placement.
func (s *Service) Upload(ctx context.Context, filename string, reader io.Reader, size int64) (*Asset, error) {
	if size > maxUploadSize {
		return nil, fmt.Errorf("creative too large: %d bytes", size)
	}

	processed, err := s.processor.Process(io.LimitReader(reader, maxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to process creative: %w", err)
	}

	base := assetKey(filename, processed.ContentType)
	key := "creatives/" + base
	thumbKey := "creatives/thumbs/" + base

	if err := s.storage.Put(ctx, key, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store creative: %w", err)
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		// keep storage consistent when the thumbnail write fails
		_ = s.storage.Delete(ctx, key)
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	return &Asset{
		Key:         key,
		URL:         s.storage.URL(key),
		ThumbKey:    thumbKey,
		ThumbURL:    s.storage.URL(thumbKey),
		Width:       processed.Width,
		Height:      processed.Height,
		ContentType: processed.ContentType,
	}, nil
}

// Delete removes a stored creative and its thumbnail
func (s *Service) Delete(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, "creatives/") {
		return fmt.Errorf("invalid creative key")
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return err
	}
	thumbKey := "creatives/thumbs/" + filepath.Base(key)
	return s.storage.Delete(ctx, thumbKey)
}

func assetKey(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		if contentType == "image/png" {
			ext = ".png"
		} else {
			ext = ".jpg"
		}
	}
	return fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.NewString(), ext)
}
