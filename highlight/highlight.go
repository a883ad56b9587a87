// Package highlight paints differences back onto a page: each difference is
// re-located to an element and marked with a coloured box and a short
// label. Painting goes through a Surface so the same plan drives a live
// browser tab or an in-memory document.
package highlight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/slotdiff/pagedom"
	"github.com/hazyhaar/slotdiff/schedule"
)

// Surface is where overlays are painted.
type Surface interface {
	// Clear removes every overlay and label. It must succeed on a page
	// that was never highlighted.
	Clear(ctx context.Context) error
	// Draw adds overlays on top of whatever is present.
	Draw(ctx context.Context, overlays []Overlay) error
}

// Highlighter plans and paints overlays.
type Highlighter struct {
	labels schedule.Labels
	logger *slog.Logger
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithLabels sets the label locale. Default: English.
func WithLabels(l schedule.Labels) Option {
	return func(h *Highlighter) { h.labels = l }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Highlighter) { h.logger = l }
}

// New creates a Highlighter.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{labels: schedule.English, logger: slog.Default()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Plan re-locates every difference in doc and lays out its overlay.
// Differences that resolve to no element are dropped.
func (h *Highlighter) Plan(doc *pagedom.Document, diffs []schedule.Difference) []Overlay {
	overlays := make([]Overlay, 0, len(diffs))
	for _, d := range diffs {
		n, how := Relocate(doc, d)
		if n == nil {
			h.logger.Debug("highlight: unresolved", "key", d.Key, "type", d.Type)
			continue
		}
		h.logger.Debug("highlight: resolved", "key", d.Key, "method", how)
		overlays = append(overlays, NewOverlay(d.Type, d.Key, h.labels.Tag(d), n.Box))
	}
	return overlays
}

// Apply clears the surface, then draws the overlays planned against doc.
// Applying the same differences twice leaves the same overlays. It returns
// the number of overlays drawn.
func (h *Highlighter) Apply(ctx context.Context, doc *pagedom.Document, s Surface, diffs []schedule.Difference) (int, error) {
	if err := s.Clear(ctx); err != nil {
		return 0, fmt.Errorf("highlight: clear: %w", err)
	}
	overlays := h.Plan(doc, diffs)
	if len(overlays) > 0 {
		if err := s.Draw(ctx, overlays); err != nil {
			return 0, fmt.Errorf("highlight: draw: %w", err)
		}
	}
	h.logger.Info("highlight: drawn", "overlays", len(overlays), "differences", len(diffs))
	return len(overlays), nil
}

// Clear removes all overlays.
func (h *Highlighter) Clear(ctx context.Context, s Surface) error {
	if err := s.Clear(ctx); err != nil {
		return fmt.Errorf("highlight: clear: %w", err)
	}
	return nil
}
