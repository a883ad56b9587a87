// Package schedule defines the structured types exchanged by slotdiff:
// slot records extracted from a page, named snapshots of those records, and
// the typed differences computed between two snapshots.
//
// These are the wire contract between the page agent, the panel and the
// snapshot store. Field names follow the message contract (camelCase).
package schedule

import "fmt"

// Kind tags the extraction strategy that produced a slot.
type Kind string

const (
	KindTableCell      Kind = "table-cell"
	KindGridItem       Kind = "grid-item"
	KindVisualPosition Kind = "visual-position"
)

// Slot is one observed schedule cell or block.
type Slot struct {
	Type       Kind     `json:"type"`
	Row        int      `json:"row"`
	Col        int      `json:"col"`
	TableIndex *int     `json:"tableIndex,omitempty"` // table-cell only
	Text       string   `json:"text"`
	Color      string   `json:"color"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	Width      *float64 `json:"width,omitempty"`
	Height     *float64 `json:"height,omitempty"`
	Element    string   `json:"element,omitempty"` // structural CSS path
}

// Key returns the diff key of the slot. Slots from any table after the first
// are scoped by table index so that two tables cannot collide on (row, col).
func (s Slot) Key() string {
	if s.Type == KindTableCell && s.TableIndex != nil && *s.TableIndex > 0 {
		return fmt.Sprintf("t%d:%d-%d", *s.TableIndex, s.Row, s.Col)
	}
	return fmt.Sprintf("%d-%d", s.Row, s.Col)
}

// Float returns a pointer to v, for the optional geometry fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
