package schedule

import "fmt"

// Side names one of the two snapshot slots the panel keeps.
type Side string

const (
	SideA Side = "snapshotA"
	SideB Side = "snapshotB"
)

// Sides lists both snapshot sides in display order.
var Sides = []Side{SideA, SideB}

// ParseSide accepts "a", "b", "A", "B" or the full key names.
func ParseSide(s string) (Side, error) {
	switch s {
	case "a", "A", string(SideA):
		return SideA, nil
	case "b", "B", string(SideB):
		return SideB, nil
	}
	return "", fmt.Errorf("schedule: unknown snapshot side %q", s)
}

// Letter returns "A" or "B".
func (s Side) Letter() string {
	if s == SideB {
		return "B"
	}
	return "A"
}

// Snapshot is a persisted list of slots captured from one page state.
// Immutable once saved; re-saving a side replaces it wholesale.
type Snapshot struct {
	ID        string `json:"id,omitempty"`
	Data      []Slot `json:"data"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	URL       string `json:"url"`
}
