// Package panel orchestrates the operator's actions: save the page as
// snapshot A or B, compare the two, highlight or clear the differences on
// the page, wipe everything. It reaches the page only through the bridge
// and persists snapshots in a Snapshots store.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"

	"github.com/hazyhaar/slotdiff/agent"
	"github.com/hazyhaar/slotdiff/connectivity"
	"github.com/hazyhaar/slotdiff/diff"
	"github.com/hazyhaar/slotdiff/internal/store"
	"github.com/hazyhaar/slotdiff/schedule"
)

// PageService is the connectivity service name of the page agent.
const PageService = "page"

var (
	// ErrMissingSnapshot is returned by Compare before both sides are saved.
	ErrMissingSnapshot = errors.New("panel: save snapshots A and B before comparing")

	// ErrOperationFailed wraps bridge failures: no agent, no page, bad reply.
	ErrOperationFailed = errors.New("panel: operation failed, make sure the schedule page is open")
)

// ExtractError carries the message of an extraction the agent reported
// as failed.
type ExtractError struct {
	Message string
}

func (e *ExtractError) Error() string {
	return "panel: extraction failed: " + e.Message
}

// Snapshots persists the two named snapshots.
type Snapshots interface {
	Save(ctx context.Context, side schedule.Side, snap *schedule.Snapshot) error
	Load(ctx context.Context, side schedule.Side) (*schedule.Snapshot, error)
	Status(ctx context.Context) ([]store.Entry, error)
	Clear(ctx context.Context) error
}

// Panel runs the operator's actions. One action at a time per caller;
// concurrent saves of the same side resolve as last write wins.
type Panel struct {
	router    *connectivity.Router
	snapshots Snapshots
	labels    schedule.Labels
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Panel.
type Option func(*Panel)

// WithLabels sets the locale of difference descriptions. Default: English.
func WithLabels(l schedule.Labels) Option {
	return func(p *Panel) { p.labels = l }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Panel) { p.logger = l }
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) { p.now = now }
}

// New creates a Panel that reaches the page through router's "page"
// service.
func New(router *connectivity.Router, snapshots Snapshots, opts ...Option) *Panel {
	p := &Panel{
		router:    router,
		snapshots: snapshots,
		labels:    schedule.English,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Comparison is the outcome of Compare.
type Comparison struct {
	Differences []schedule.Difference `json:"differences"`
	Summary     diff.Summary          `json:"summary"`
	// Highlighted counts overlays drawn on the page. Zero when there was
	// nothing to highlight.
	Highlighted int `json:"highlighted"`
	// HighlightError is set when the differences could not be painted.
	HighlightError string `json:"highlightError,omitempty"`
}

// SaveSnapshot extracts the page and stores the result under side,
// replacing what was there.
func (p *Panel) SaveSnapshot(ctx context.Context, side schedule.Side) (*schedule.Snapshot, error) {
	resp, err := p.send(ctx, agent.Request{Action: agent.ActionExtract})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &ExtractError{Message: resp.Error}
	}

	data := resp.Data
	if data == nil {
		data = []schedule.Slot{}
	}
	snap := &schedule.Snapshot{Data: data, Timestamp: p.now().UnixMilli(), URL: resp.URL}
	if err := p.snapshots.Save(ctx, side, snap); err != nil {
		return nil, fmt.Errorf("panel: save %s: %w", side.Letter(), err)
	}
	p.logger.Info("panel: snapshot saved", "side", side.Letter(), "slots", len(data), "url", resp.URL)
	return snap, nil
}

// Compare diffs snapshot A against snapshot B. A non-empty result is sent
// to the page for highlighting; an empty one leaves the page untouched.
func (p *Panel) Compare(ctx context.Context) (*Comparison, error) {
	a, err := p.load(ctx, schedule.SideA)
	if err != nil {
		return nil, err
	}
	b, err := p.load(ctx, schedule.SideB)
	if err != nil {
		return nil, err
	}

	diffs := diff.Compare(a.Data, b.Data, diff.WithLabels(p.labels))
	cmp := &Comparison{Differences: diffs, Summary: diff.Summarize(diffs)}
	p.logger.Info("panel: compared",
		"added", cmp.Summary.Added, "removed", cmp.Summary.Removed, "changed", cmp.Summary.Changed)

	if cmp.Summary.Empty() {
		return cmp, nil
	}
	n, err := p.Highlight(ctx, diffs)
	if err != nil {
		p.logger.Warn("panel: highlight failed", "error", err)
		cmp.HighlightError = err.Error()
		return cmp, nil
	}
	cmp.Highlighted = n
	return cmp, nil
}

// Highlight paints diffs on the page and returns the overlay count.
func (p *Panel) Highlight(ctx context.Context, diffs []schedule.Difference) (int, error) {
	resp, err := p.send(ctx, agent.Request{Action: agent.ActionHighlight, Differences: diffs})
	if err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, fmt.Errorf("%w: %s", ErrOperationFailed, resp.Error)
	}
	return resp.Drawn, nil
}

// ClearHighlight removes every overlay from the page.
func (p *Panel) ClearHighlight(ctx context.Context) error {
	resp, err := p.send(ctx, agent.Request{Action: agent.ActionClear})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrOperationFailed, resp.Error)
	}
	return nil
}

// ClearAll removes both snapshots, then the page's overlays.
func (p *Panel) ClearAll(ctx context.Context) error {
	if err := p.snapshots.Clear(ctx); err != nil {
		return fmt.Errorf("panel: clear snapshots: %w", err)
	}
	p.logger.Info("panel: snapshots cleared")
	return p.ClearHighlight(ctx)
}

// Status describes both sides.
func (p *Panel) Status(ctx context.Context) ([]store.Entry, error) {
	entries, err := p.snapshots.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("panel: status: %w", err)
	}
	return entries, nil
}

func (p *Panel) load(ctx context.Context, side schedule.Side) (*schedule.Snapshot, error) {
	snap, err := p.snapshots.Load(ctx, side)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrMissingSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("panel: load %s: %w", side.Letter(), err)
	}
	return snap, nil
}

// send makes one bridge round trip. Anything short of a decoded Response
// is ErrOperationFailed.
func (p *Panel) send(ctx context.Context, req agent.Request) (*agent.Response, error) {
	payload, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("panel: encode %s: %w", req.Action, err)
	}
	out, err := p.router.Call(ctx, PageService, payload)
	if err != nil {
		p.logger.Warn("panel: bridge call failed", "action", req.Action, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrOperationFailed, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no response to %s", ErrOperationFailed, req.Action)
	}
	var resp agent.Response
	if err := sonic.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %w", ErrOperationFailed, req.Action, err)
	}
	return &resp, nil
}
