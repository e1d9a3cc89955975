package creative

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/adhub/adhub-api/internal/pkg/imaging"
)

type fakeStorage struct {
	objects map[string][]byte
	putErr  map[string]error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte), putErr: make(map[string]error)}
}

func (s *fakeStorage) Put(_ context.Context, key string, reader io.Reader, _ string) error {
	for prefix, err := range s.putErr {
		if strings.HasPrefix(key, prefix) {
			return err
		}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStorage) URL(key string) string {
	return "https://cdn.test/" + key
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestService_Upload(t *testing.T) {
	store := newFakeStorage()
	service := NewService(store, imaging.NewProcessor(imaging.DefaultConfig()))

	data := testPNG(t, 600, 400)
	asset, err := service.Upload(context.Background(), "banner.png", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	if asset.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", asset.ContentType)
	}
	if asset.Width != 600 || asset.Height != 400 {
		t.Errorf("dimensions = %dx%d, want 600x400", asset.Width, asset.Height)
	}
	if !strings.HasPrefix(asset.Key, "creatives/") || !strings.HasSuffix(asset.Key, ".png") {
		t.Errorf("unexpected key %q", asset.Key)
	}
	if !strings.HasPrefix(asset.ThumbKey, "creatives/thumbs/") {
		t.Errorf("unexpected thumb key %q", asset.ThumbKey)
	}
	if asset.URL != "https://cdn.test/"+asset.Key {
		t.Errorf("URL = %q does not point at the stored key", asset.URL)
	}

	if _, ok := store.objects[asset.Key]; !ok {
		t.Error("original not stored")
	}
	if _, ok := store.objects[asset.ThumbKey]; !ok {
		t.Error("thumbnail not stored")
	}
}

func TestService_UploadRejectsNonImage(t *testing.T) {
	service := NewService(newFakeStorage(), imaging.NewProcessor(imaging.DefaultConfig()))

	data := []byte("definitely not an image")
	_, err := service.Upload(context.Background(), "evil.png", bytes.NewReader(data), int64(len(data)))
	if err == nil {
		t.Fatal("expected decode failure for non-image upload")
	}
}

func TestService_UploadRejectsOversized(t *testing.T) {
	service := NewService(newFakeStorage(), imaging.NewProcessor(imaging.DefaultConfig()))

	_, err := service.Upload(context.Background(), "big.png", bytes.NewReader(nil), maxUploadSize+1)
	if err == nil {
		t.Fatal("expected size rejection")
	}
}

func TestService_UploadCleansUpOnThumbnailFailure(t *testing.T) {
	store := newFakeStorage()
	store.putErr["creatives/thumbs/"] = errors.New("bucket unavailable")
	service := NewService(store, imaging.NewProcessor(imaging.DefaultConfig()))

	data := testPNG(t, 100, 100)
	_, err := service.Upload(context.Background(), "banner.png", bytes.NewReader(data), int64(len(data)))
	if err == nil {
		t.Fatal("expected thumbnail storage failure to propagate")
	}
	if len(store.objects) != 0 {
		t.Errorf("original left behind after failed upload: %v", len(store.objects))
	}
}
