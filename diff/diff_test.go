package diff

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/slotdiff/schedule"
)

func slot(row, col int, text, color string) schedule.Slot {
	return schedule.Slot{Type: schedule.KindVisualPosition, Row: row, Col: col, Text: text, Color: color}
}

func TestCompare_EndToEnd(t *testing.T) {
	a := []schedule.Slot{slot(0, 0, "Job1", "red")}
	b := []schedule.Slot{slot(0, 0, "Job2", "red")}
	diffs := Compare(a, b)
	require.Len(t, diffs, 1)
	d := diffs[0]
	assert.Equal(t, schedule.Changed, d.Type)
	assert.Equal(t, "0-0", d.Key)
	assert.Equal(t, "Job1", d.Old())
	assert.Equal(t, "Job2", d.New())
	assert.Equal(t, "red", d.OldColor)
	assert.Equal(t, `Changed: row 0 col 0: "Job1" → "Job2"`, d.Description)
}

func TestCompare_ColorOnlyChange(t *testing.T) {
	diffs := Compare(
		[]schedule.Slot{slot(1, 1, "Job", "rgb(76, 175, 80)")},
		[]schedule.Slot{slot(1, 1, "Job", "rgb(244, 67, 54)")},
	)
	require.Len(t, diffs, 1)
	assert.Equal(t, schedule.Changed, diffs[0].Type)
	assert.Equal(t, "rgb(244, 67, 54)", diffs[0].NewColor)
}

func TestCompare_GeometryIgnored(t *testing.T) {
	a := slot(0, 0, "Job", "red")
	b := a
	a.X, a.Y = schedule.Float(10), schedule.Float(10)
	b.X, b.Y = schedule.Float(300), schedule.Float(40)
	assert.Empty(t, Compare([]schedule.Slot{a}, []schedule.Slot{b}))
}

func TestCompare_Ordering(t *testing.T) {
	a := []schedule.Slot{slot(0, 2, "gone", "red"), slot(0, 0, "same", "red"), slot(0, 1, "old", "red")}
	b := []schedule.Slot{slot(5, 5, "new2", "red"), slot(0, 1, "new", "red"), slot(0, 0, "same", "red"), slot(3, 3, "new1", "red")}
	diffs := Compare(a, b)

	var got []string
	for _, d := range diffs {
		got = append(got, string(d.Type)+":"+d.Key)
	}
	assert.Equal(t, []string{"removed:0-2", "changed:0-1", "added:5-5", "added:3-3"}, got)

	assert.Nil(t, diffs[0].NewValue)
	assert.Nil(t, diffs[2].OldValue)
	assert.Equal(t, "Removed: row 0 col 2", diffs[0].Description)
	assert.Equal(t, `Added: row 5 col 5: "new2"`, diffs[2].Description)
}

func TestCompare_DuplicateKeysLastWins(t *testing.T) {
	a := []schedule.Slot{slot(0, 0, "first", "red"), slot(0, 1, "x", "red"), slot(0, 0, "second", "red")}
	b := []schedule.Slot{slot(0, 0, "second", "red"), slot(0, 1, "y", "red")}
	diffs := Compare(a, b)
	require.Len(t, diffs, 1)
	assert.Equal(t, "0-1", diffs[0].Key)

	// The duplicate keeps its first position in emission order.
	diffs = Compare(a, nil)
	require.Len(t, diffs, 2)
	assert.Equal(t, "0-0", diffs[0].Key)
	assert.Equal(t, "second", diffs[0].Old())
}

func TestCompare_CarriesLocator(t *testing.T) {
	a := slot(0, 0, "A", "red")
	a.Element = "div#a"
	a.X, a.Y = schedule.Float(1), schedule.Float(2)
	b := slot(0, 0, "B", "red")
	b.Element = "div#b"
	b.X, b.Y = schedule.Float(3), schedule.Float(4)
	c := slot(1, 0, "C", "red")
	c.Element = "div#c"

	diffs := Compare([]schedule.Slot{a, c}, []schedule.Slot{b})
	require.Len(t, diffs, 2)
	assert.Equal(t, "div#b", diffs[0].Element, "changed locates the new slot")
	assert.Equal(t, 3.0, *diffs[0].X)
	assert.Equal(t, "div#c", diffs[1].Element, "removed locates the old slot")
	assert.Nil(t, diffs[1].X)
}

func TestCompare_TableScopedKeys(t *testing.T) {
	cell := func(ti, row, col int, text string) schedule.Slot {
		return schedule.Slot{Type: schedule.KindTableCell, TableIndex: schedule.Int(ti), Row: row, Col: col, Text: text}
	}
	a := []schedule.Slot{cell(0, 0, 0, "A"), cell(1, 0, 0, "B")}
	b := []schedule.Slot{cell(0, 0, 0, "A"), cell(1, 0, 0, "B2")}
	diffs := Compare(a, b)
	require.Len(t, diffs, 1)
	assert.Equal(t, "t1:0-0", diffs[0].Key)
}

func TestCompare_ChineseLabels(t *testing.T) {
	diffs := Compare(nil, []schedule.Slot{slot(2, 3, "新任务", "red")}, WithLabels(schedule.Chinese))
	require.Len(t, diffs, 1)
	assert.Equal(t, `新增: 行2 列3: "新任务"`, diffs[0].Description)
}

func TestCompare_EmptyIsNonNil(t *testing.T) {
	diffs := Compare(nil, nil)
	assert.NotNil(t, diffs)
	assert.Empty(t, diffs)
}

// randomSlots builds a slot list over a small key space so that random
// pairs overlap.
func randomSlots(r *rand.Rand) []schedule.Slot {
	n := r.Intn(12)
	out := make([]schedule.Slot, n)
	for i := range out {
		out[i] = slot(r.Intn(3), r.Intn(3), fmt.Sprintf("t%d", r.Intn(3)), []string{"red", "blue"}[r.Intn(2)])
	}
	return out
}

func lastByKey(slots []schedule.Slot) map[string]schedule.Slot {
	m := make(map[string]schedule.Slot)
	for _, s := range slots {
		m[s.Key()] = s
	}
	return m
}

func TestCompare_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		a, b := randomSlots(r), randomSlots(r)

		assert.Empty(t, Compare(a, a), "self-compare")

		ma, mb := lastByKey(a), lastByKey(b)
		diffs := Compare(a, b)
		for _, d := range diffs {
			sa, inA := ma[d.Key]
			sb, inB := mb[d.Key]
			switch d.Type {
			case schedule.Removed:
				assert.True(t, inA && !inB)
			case schedule.Added:
				assert.True(t, inB && !inA)
			case schedule.Changed:
				require.True(t, inA && inB)
				assert.True(t, sa.Text != sb.Text || sa.Color != sb.Color)
			}
		}

		want := 0
		for k, sa := range ma {
			sb, ok := mb[k]
			if !ok || sa.Text != sb.Text || sa.Color != sb.Color {
				want++
			}
		}
		for k := range mb {
			if _, ok := ma[k]; !ok {
				want++
			}
		}
		require.Len(t, diffs, want)

		sum := Summarize(diffs)
		assert.Equal(t, want, sum.Total)
		assert.Equal(t, sum.Total, sum.Added+sum.Removed+sum.Changed)
	}
}
