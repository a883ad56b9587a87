package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/slotdiff/highlight"
	"github.com/hazyhaar/slotdiff/locate"
	"github.com/hazyhaar/slotdiff/pagedom"
)

// Page is the document the agent inspects and paints on.
type Page interface {
	// Capture returns the page's current element tree.
	Capture(ctx context.Context) (*pagedom.Document, error)
	highlight.Surface
}

// Agent executes commands against a Page one at a time.
type Agent struct {
	page      Page
	extractor *locate.Extractor
	hl        *highlight.Highlighter
	logger    *slog.Logger
	now       func() time.Time

	mu sync.Mutex
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *locate.Extractor) Option {
	return func(a *Agent) { a.extractor = e }
}

// WithHighlighter replaces the default highlighter.
func WithHighlighter(h *highlight.Highlighter) Option {
	return func(a *Agent) { a.hl = h }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New creates an Agent bound to page.
func New(page Page, opts ...Option) *Agent {
	a := &Agent{page: page, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(a)
	}
	if a.extractor == nil {
		a.extractor = locate.New(locate.WithLogger(a.logger))
	}
	if a.hl == nil {
		a.hl = highlight.New(highlight.WithLogger(a.logger))
	}
	return a
}

// Dispatch runs cmd and returns its result. Commands are serialised: the
// page is inspected by one command at a time.
func (a *Agent) Dispatch(ctx context.Context, cmd Command) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch c := cmd.(type) {
	case ExtractCommand:
		return a.extract(ctx)
	case HighlightCommand:
		return a.highlight(ctx, c)
	case ClearCommand:
		if err := a.hl.Clear(ctx, a.page); err != nil {
			return fail(err)
		}
		return Ack{}
	}
	return &Failure{Error: ErrUnknownOperation.Error()}
}

// capture reads the page. A panicking page is a failed capture.
func (a *Agent) capture(ctx context.Context) (doc *pagedom.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("agent: capture panicked: %v", r)
		}
	}()
	return a.page.Capture(ctx)
}

func (a *Agent) extract(ctx context.Context) Result {
	doc, err := a.capture(ctx)
	if err != nil {
		a.logger.Warn("agent: capture failed", "error", err)
		return fail(err)
	}
	slots, err := a.extractor.Extract(ctx, doc)
	if err != nil {
		a.logger.Warn("agent: extract failed", "error", err)
		return fail(err)
	}
	return &ExtractResult{Data: slots, URL: doc.URL, Timestamp: a.now().UnixMilli()}
}

func (a *Agent) highlight(ctx context.Context, c HighlightCommand) Result {
	doc, err := a.capture(ctx)
	if err != nil {
		return fail(err)
	}
	n, err := a.hl.Apply(ctx, doc, a.page, c.Differences)
	if err != nil {
		return fail(err)
	}
	return Ack{Drawn: n}
}

func fail(err error) *Failure { return &Failure{Error: err.Error()} }

// StaticPage is a Page over an in-memory document. Overlays are drawn
// into the document itself.
type StaticPage struct {
	highlight.DOMSurface
}

// NewStaticPage wraps doc.
func NewStaticPage(doc *pagedom.Document) *StaticPage {
	return &StaticPage{DOMSurface: highlight.DOMSurface{Doc: doc}}
}

// Capture returns the wrapped document.
func (p *StaticPage) Capture(ctx context.Context) (*pagedom.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Doc, nil
}
