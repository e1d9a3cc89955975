package delivery

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/adhub/adhub-api/internal/domain/placement"
)

// PlacementSource is the slice of the placement registry the selector needs
type PlacementSource interface {
	ListByType(ctx context.Context, t placement.Type) ([]placement.Placement, error)
}

// Picker supplies randomness; injectable so selection is testable
type Picker interface {
	Pick(n int) int
}

type randPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newRandPicker() *randPicker {
	return &randPicker{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (p *randPicker) Pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

// experimentFormats are the formats a between-posts view may be assigned
// when the selected placement's format is auto. Assignment happens once
// per page view and stays fixed for that view's lifetime.
var experimentFormats = []placement.Format{
	placement.FormatAuto,
	placement.FormatRectangle,
	placement.FormatHorizontal,
	placement.FormatVertical,
}

// Selection is the outcome of one per-surface, per-page-view selection.
// Placement is nil when nothing should render; FallbackSlot may still be
// set in that case if the surface defines one.
type Selection struct {
	Placement    *placement.Placement
	Format       placement.Format
	FallbackSlot string
}

// None reports whether the selection carries no placement and no fallback
func (s Selection) None() bool {
	return s.Placement == nil && s.FallbackSlot == ""
}

// Selector picks at most one placement per surface per page view
type Selector struct {
	source PlacementSource
	picker Picker
}

func NewSelector(source PlacementSource) *Selector {
	return &Selector{source: source, picker: newRandPicker()}
}

// NewSelectorWithPicker is used by tests that need deterministic draws
func NewSelectorWithPicker(source PlacementSource, picker Picker) *Selector {
	return &Selector{source: source, picker: picker}
}

// Select returns the placement to render on the given surface for this
// page view, or a no-placement selection. Store failures are absorbed:
// the host page must never break because ad delivery broke.
func (s *Selector) Select(ctx context.Context, cfg SurfaceConfig, page placement.Location) Selection {
	candidates, err := s.source.ListByType(ctx, cfg.Type)
	if err != nil {
		log.Warn().Err(err).Str("type", string(cfg.Type)).Msg("Placement lookup failed, rendering nothing")
		return Selection{FallbackSlot: cfg.FallbackSlot}
	}

	eligible := make([]placement.Placement, 0, len(candidates))
	for _, c := range candidates {
		if !c.IsEnabled {
			continue
		}
		if cfg.FilterLocation && !c.MatchesLocation(page) {
			continue
		}
		eligible = append(eligible, c)
	}

	if len(eligible) == 0 {
		return Selection{FallbackSlot: cfg.FallbackSlot}
	}

	picked := eligible[s.picker.Pick(len(eligible))]

	format := picked.Format
	if format == placement.FormatAuto && cfg.Experiment {
		format = experimentFormats[s.picker.Pick(len(experimentFormats))]
	}

	return Selection{Placement: &picked, Format: format}
}
