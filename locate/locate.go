// Package locate finds schedule slots on an arbitrary page and normalises
// them into row/col keyed records.
//
// Extraction runs a fixed plan: table cells and grid-container children
// are collected first; if neither yields anything, colored blocks are
// banded into rows by their vertical position. A set of well-known
// schedule selectors is probed up front for diagnostics only.
package locate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/slotdiff/pagedom"
	"github.com/hazyhaar/slotdiff/schedule"
)

// ProbeSelectors are common class and attribute patterns of gantt and
// scheduling widgets.
var ProbeSelectors = []string{
	".gantt-task",
	".task-bar",
	".slot",
	".cell",
	".schedule-item",
	".event",
	".fc-event",
	"td[data-task]",
	"td[data-slot]",
	".grid-cell",
	`div[style*="background"]`,
	".production-slot",
	".schedule-block",
	`[class*="slot"]`,
	`[class*="task"]`,
	`[class*="block"]`,
}

// ProbeHit is a probe selector that matched.
type ProbeHit struct {
	Selector string `json:"selector"`
	Count    int    `json:"count"`
}

// Extractor runs the locate plan against documents.
type Extractor struct {
	plan   Plan
	probes []string
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithPlan replaces the strategy plan.
func WithPlan(p Plan) Option {
	return func(e *Extractor) { e.plan = p }
}

// WithProbes replaces the probe selector list.
func WithProbes(selectors []string) Option {
	return func(e *Extractor) { e.probes = selectors }
}

// New creates an Extractor with the default plan and probes.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		plan:   DefaultPlan(),
		probes: ProbeSelectors,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Probe runs every probe selector and returns those that matched. Invalid
// selectors are skipped.
func (e *Extractor) Probe(doc *pagedom.Document) []ProbeHit {
	var hits []ProbeHit
	for _, sel := range e.probes {
		nodes, err := doc.QuerySelectorAll(sel)
		if err != nil {
			continue
		}
		if len(nodes) > 0 {
			e.logger.Debug("locate: selector matched", "selector", sel, "count", len(nodes))
			hits = append(hits, ProbeHit{Selector: sel, Count: len(nodes)})
		}
	}
	return hits
}

// Extract returns the slot records of doc. It never returns partial data:
// a panic anywhere in the plan is recovered and reported as an error.
func (e *Extractor) Extract(ctx context.Context, doc *pagedom.Document) (slots []schedule.Slot, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("locate: extract: %w", err)
	}
	if doc == nil || doc.Root() == nil {
		return nil, fmt.Errorf("locate: extract: empty document")
	}
	defer func() {
		if r := recover(); r != nil {
			slots = nil
			err = fmt.Errorf("locate: extract: panic: %v", r)
		}
	}()

	e.Probe(doc)
	if e.logger.Enabled(ctx, slog.LevelDebug) {
		e.logger.Debug("locate: colored elements", "count", len(ColoredElements(doc)))
	}

	slots, group := e.plan.Run(doc)
	if slots == nil {
		slots = []schedule.Slot{}
	}
	e.logger.Info("locate: extracted", "records", len(slots), "strategy", group, "url", doc.URL)
	return slots, nil
}
