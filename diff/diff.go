// Package diff compares two snapshots' slot lists over their row/col key
// space and reports what was added, removed or changed.
//
// Matching is by key only: there is no fuzzy matching and no move
// detection. A slot whose text or color differs under the same key is a
// change; geometry is ignored.
package diff

import "github.com/hazyhaar/slotdiff/schedule"

// Options configures a comparison.
type Options struct {
	Labels schedule.Labels
}

// Option configures Compare.
type Option func(*Options)

// WithLabels sets the locale used for descriptions. Default: English.
func WithLabels(l schedule.Labels) Option {
	return func(o *Options) { o.Labels = l }
}

// keyed is an insertion-ordered map from diff key to slot. Re-inserting a
// key replaces its value but keeps its original position.
type keyed struct {
	keys  []string
	slots map[string]schedule.Slot
}

func index(slots []schedule.Slot) keyed {
	k := keyed{slots: make(map[string]schedule.Slot, len(slots))}
	for _, s := range slots {
		key := s.Key()
		if _, seen := k.slots[key]; !seen {
			k.keys = append(k.keys, key)
		}
		k.slots[key] = s
	}
	return k
}

// Compare computes the differences from a to b. Keys of a come first, in
// a's order (removed or changed), then keys only in b, in b's order
// (added). An empty result means no difference.
func Compare(a, b []schedule.Slot, opts ...Option) []schedule.Difference {
	o := Options{Labels: schedule.English}
	for _, fn := range opts {
		fn(&o)
	}

	ma, mb := index(a), index(b)
	diffs := make([]schedule.Difference, 0)

	for _, key := range ma.keys {
		sa := ma.slots[key]
		sb, ok := mb.slots[key]
		switch {
		case !ok:
			d := schedule.Difference{
				Type:     schedule.Removed,
				Key:      key,
				Row:      sa.Row,
				Col:      sa.Col,
				OldValue: schedule.String(sa.Text),
			}
			locateFrom(&d, sa)
			diffs = append(diffs, describe(d, o.Labels))
		case sa.Text != sb.Text || sa.Color != sb.Color:
			d := schedule.Difference{
				Type:     schedule.Changed,
				Key:      key,
				Row:      sa.Row,
				Col:      sa.Col,
				OldValue: schedule.String(sa.Text),
				NewValue: schedule.String(sb.Text),
				OldColor: sa.Color,
				NewColor: sb.Color,
			}
			locateFrom(&d, sb)
			diffs = append(diffs, describe(d, o.Labels))
		}
	}

	for _, key := range mb.keys {
		if _, ok := ma.slots[key]; ok {
			continue
		}
		sb := mb.slots[key]
		d := schedule.Difference{
			Type:     schedule.Added,
			Key:      key,
			Row:      sb.Row,
			Col:      sb.Col,
			NewValue: schedule.String(sb.Text),
		}
		locateFrom(&d, sb)
		diffs = append(diffs, describe(d, o.Labels))
	}
	return diffs
}

// locateFrom copies the slot's locator so the highlighter can find it.
func locateFrom(d *schedule.Difference, s schedule.Slot) {
	d.X, d.Y, d.Width, d.Height = s.X, s.Y, s.Width, s.Height
	d.Element = s.Element
}

func describe(d schedule.Difference, l schedule.Labels) schedule.Difference {
	d.Description = l.Describe(d)
	return d
}

// Summary counts differences by type.
type Summary struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
	Total   int `json:"total"`
}

// Summarize counts diffs.
func Summarize(diffs []schedule.Difference) Summary {
	var s Summary
	for _, d := range diffs {
		switch d.Type {
		case schedule.Added:
			s.Added++
		case schedule.Removed:
			s.Removed++
		case schedule.Changed:
			s.Changed++
		}
	}
	s.Total = len(diffs)
	return s
}

// Empty reports whether there is nothing to show.
func (s Summary) Empty() bool { return s.Total == 0 }
