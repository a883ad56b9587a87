// Package agent is the page-resident half of the bridge. It owns one page
// and answers three commands: extract the schedule, highlight a set of
// differences, clear the highlight. Commands arrive as a closed set of Go
// types or as JSON requests carrying an action name.
package agent

import "github.com/hazyhaar/slotdiff/schedule"

// Command is one of ExtractCommand, HighlightCommand or ClearCommand.
type Command interface{ command() }

// ExtractCommand asks for the page's current slot list.
type ExtractCommand struct{}

// HighlightCommand paints overlays for Differences, replacing any
// overlays already on the page.
type HighlightCommand struct {
	Differences []schedule.Difference
}

// ClearCommand removes every overlay.
type ClearCommand struct{}

func (ExtractCommand) command()   {}
func (HighlightCommand) command() {}
func (ClearCommand) command()     {}

// Result is one of *ExtractResult, Ack or *Failure.
type Result interface{ result() }

// ExtractResult carries the extracted slots.
type ExtractResult struct {
	Data      []schedule.Slot
	URL       string
	Timestamp int64 // epoch milliseconds
}

// Ack acknowledges a highlight or clear command.
type Ack struct {
	Drawn int // overlays painted, highlight only
}

// Failure reports a command that did not complete. No partial data.
type Failure struct {
	Error string
}

func (*ExtractResult) result() {}
func (Ack) result()            {}
func (*Failure) result()       {}
