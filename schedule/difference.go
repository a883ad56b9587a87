package schedule

// DiffType classifies a difference between two snapshots.
type DiffType string

const (
	Added   DiffType = "added"
	Removed DiffType = "removed"
	Changed DiffType = "changed"
)

// Difference is one keyed change between snapshot A and snapshot B.
// It is computed fresh on every comparison and never persisted.
//
// Geometry and Element are copied from the slot the difference refers to
// (B for added/changed, A for removed) so the highlighter can re-locate it.
type Difference struct {
	Type        DiffType `json:"type"`
	Key         string   `json:"key"`
	Row         int      `json:"row"`
	Col         int      `json:"col"`
	OldValue    *string  `json:"oldValue"`
	NewValue    *string  `json:"newValue"`
	OldColor    string   `json:"oldColor,omitempty"`
	NewColor    string   `json:"newColor,omitempty"`
	Description string   `json:"description"`

	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Element string   `json:"element,omitempty"`
}

// Old returns OldValue or "" when absent.
func (d Difference) Old() string {
	if d.OldValue == nil {
		return ""
	}
	return *d.OldValue
}

// New returns NewValue or "" when absent.
func (d Difference) New() string {
	if d.NewValue == nil {
		return ""
	}
	return *d.NewValue
}

// String returns a pointer to s.
func String(s string) *string { return &s }
