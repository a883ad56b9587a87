package highlight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/slotdiff/pagedom"
	"github.com/hazyhaar/slotdiff/schedule"
)

const board = `<!doctype html><html><body>
<div id="board" style="width:600px; height:300px">
  <div id="j1" style="background:#4caf50; left:10px; top:10px; width:100px; height:30px">Job1</div>
  <div id="j2" style="background:#4caf50; left:10px; top:50px; width:100px; height:30px">Job2</div>
  <div id="j3" style="background:#4caf50; left:200px; top:10px; width:100px; height:30px">Job3</div>
</div>
</body></html>`

func newBoard(t *testing.T) *pagedom.Document {
	t.Helper()
	doc, err := pagedom.ParseString(board, "http://example.test/")
	require.NoError(t, err)
	return doc
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRelocate_Cascade(t *testing.T) {
	doc := newBoard(t)

	n, how := Relocate(doc, schedule.Difference{X: schedule.Float(15), Y: schedule.Float(15), Element: "div#j2"})
	require.NotNil(t, n)
	assert.Equal(t, ByGeometry, how)
	assert.Equal(t, "j1", n.ID())

	n, how = Relocate(doc, schedule.Difference{X: schedule.Float(5000), Y: schedule.Float(5000), Element: "div#j2"})
	require.NotNil(t, n)
	assert.Equal(t, ByPath, how)
	assert.Equal(t, "j2", n.ID())

	n, how = Relocate(doc, schedule.Difference{Element: "div#1bad >", NewValue: schedule.String("Job3")})
	require.NotNil(t, n)
	assert.Equal(t, ByText, how)
	assert.Equal(t, "j3", n.ID())

	n, how = Relocate(doc, schedule.Difference{Element: "div#missing", NewValue: schedule.String("nope")})
	assert.Nil(t, n)
	assert.Equal(t, Unresolved, how)

	// Removed differences have no new value and no locator to fall back on.
	n, _ = Relocate(doc, schedule.Difference{Type: schedule.Removed, OldValue: schedule.String("Job1")})
	assert.Nil(t, n)
}

func capturedBoard(t *testing.T) *pagedom.Document {
	t.Helper()
	doc, err := pagedom.FromCapture(pagedom.Capture{
		URL: "http://plant.test/gantt",
		Nodes: []pagedom.CapturedNode{
			{Parent: -1, Tag: "html", Width: 1440, Height: 900},
			{Parent: 0, Tag: "body", Width: 1440, Height: 900},
			{Parent: 1, Tag: "div", Attrs: map[string]string{"id": "keep"}, Text: "Kept", Background: "rgb(76, 175, 80)", X: 280, Y: 90, Width: 100, Height: 30},
		},
	})
	require.NoError(t, err)
	return doc
}

func TestRelocate_GeometryRequiresMatchingSize(t *testing.T) {
	doc := capturedBoard(t)

	gone := schedule.Difference{
		Type: schedule.Removed, Key: "0-1", OldValue: schedule.String("Gone"),
		X: schedule.Float(300), Y: schedule.Float(100), Width: schedule.Float(80), Height: schedule.Float(20),
		Element: "div.task:nth-child(2)",
	}
	n, how := Relocate(doc, gone)
	assert.Nil(t, n)
	assert.Equal(t, Unresolved, how)

	// Within tolerance of the recorded size.
	near := gone
	near.Width, near.Height = schedule.Float(95), schedule.Float(24)
	n, how = Relocate(doc, near)
	require.NotNil(t, n)
	assert.Equal(t, ByGeometry, how)
	assert.Equal(t, "keep", n.ID())

	// A point outside every block only hits the page root.
	root := gone
	root.X, root.Y = schedule.Float(900), schedule.Float(600)
	n, _ = Relocate(doc, root)
	assert.Nil(t, n)

	// Without a recorded size the page root is still never a hit.
	grid := root
	grid.Width, grid.Height = nil, nil
	n, _ = Relocate(doc, grid)
	assert.Nil(t, n)
}

func TestPlan_RemovedSlotNeverCoversPage(t *testing.T) {
	doc := capturedBoard(t)
	h := New(WithLogger(quiet()))
	overlays := h.Plan(doc, []schedule.Difference{{
		Type: schedule.Removed, Key: "0-1", OldValue: schedule.String("Gone"),
		X: schedule.Float(300), Y: schedule.Float(100), Width: schedule.Float(80), Height: schedule.Float(20),
	}})
	assert.Empty(t, overlays)
}

func TestNewOverlay_Layout(t *testing.T) {
	o := NewOverlay(schedule.Added, "0-0", "Added: Job3", pagedom.Rect{X: 200, Y: 10, Width: 100, Height: 30})
	assert.Equal(t, pagedom.Rect{X: 198, Y: 8, Width: 104, Height: 34}, o.Box)
	assert.Equal(t, 200.0, o.LabelX)
	assert.Equal(t, -14.0, o.LabelY)
	assert.Equal(t, "rgba(76, 175, 80, 0.5)", o.Fill())
	assert.Equal(t, "rgba(76, 175, 80, 1)", o.Border())
	assert.Equal(t, "rgba(76, 175, 80, 0.9)", o.LabelBackground())

	assert.Contains(t, o.BoxStyle, "left: 198px")
	assert.Contains(t, o.BoxStyle, "border: 3px solid rgba(76, 175, 80, 1)")
	assert.Contains(t, o.BoxStyle, "pointer-events: none")
	assert.Contains(t, o.BoxStyle, "z-index: 999999")
	assert.Contains(t, o.BoxStyle, "animation: pulse 1.5s infinite")
	assert.Contains(t, o.LabelStyle, "top: -14px")
	assert.Contains(t, o.LabelStyle, "z-index: 1000000")
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, Green, ColorFor(schedule.Added))
	assert.Equal(t, Red, ColorFor(schedule.Removed))
	assert.Equal(t, Orange, ColorFor(schedule.Changed))
	assert.Equal(t, Blue, ColorFor("moved"))
}

func sampleDiffs() []schedule.Difference {
	return []schedule.Difference{
		{Type: schedule.Changed, Key: "0-0", OldValue: schedule.String("Job0"), NewValue: schedule.String("Job1"), Element: "div#j1"},
		{Type: schedule.Added, Key: "0-1", NewValue: schedule.String("Job3")},
		{Type: schedule.Removed, Key: "9-9", OldValue: schedule.String("Gone")},
	}
}

func TestApply_DrawsResolvedOnly(t *testing.T) {
	doc := newBoard(t)
	h := New(WithLogger(quiet()))
	n, err := h.Apply(context.Background(), doc, DOMSurface{Doc: doc}, sampleDiffs())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	boxes, labels := Markers(doc)
	require.Len(t, boxes, 2)
	require.Len(t, labels, 2)
	assert.Equal(t, "changed", boxes[0].Attr("data-diff-type"))
	assert.Equal(t, "rgba(255, 152, 0, 0.5)", boxes[0].Background)
	assert.Equal(t, "Job0 → Job1", labels[0].Text())
	assert.Equal(t, "Added: Job3", labels[1].Text())
	assert.Same(t, doc.Body(), boxes[0].Parent())
}

func TestApply_Idempotent(t *testing.T) {
	doc := newBoard(t)
	h := New(WithLogger(quiet()))
	surface := DOMSurface{Doc: doc}
	ctx := context.Background()

	_, err := h.Apply(ctx, doc, surface, sampleDiffs())
	require.NoError(t, err)
	boxes1, labels1 := Markers(doc)

	require.NoError(t, h.Clear(ctx, surface))
	_, err = h.Apply(ctx, doc, surface, sampleDiffs())
	require.NoError(t, err)
	_, err = h.Apply(ctx, doc, surface, sampleDiffs())
	require.NoError(t, err)

	boxes2, labels2 := Markers(doc)
	assert.Len(t, boxes2, len(boxes1))
	assert.Len(t, labels2, len(labels1))
}

func TestApply_OverlaysDoNotCaptureRelocation(t *testing.T) {
	doc := newBoard(t)
	h := New(WithLogger(quiet()))
	diffs := []schedule.Difference{{Type: schedule.Changed, Key: "0-0", X: schedule.Float(12), Y: schedule.Float(12), OldValue: schedule.String("a"), NewValue: schedule.String("b")}}

	_, err := h.Apply(context.Background(), doc, DOMSurface{Doc: doc}, diffs)
	require.NoError(t, err)
	first, _ := Markers(doc)

	_, err = h.Apply(context.Background(), doc, DOMSurface{Doc: doc}, diffs)
	require.NoError(t, err)
	second, _ := Markers(doc)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Box, second[0].Box)
}

func TestClear_NeverHighlighted(t *testing.T) {
	doc := newBoard(t)
	before := len(doc.All())
	require.NoError(t, New(WithLogger(quiet())).Clear(context.Background(), DOMSurface{Doc: doc}))
	assert.Len(t, doc.All(), before)
}

func TestApply_UnknownTypeAndChineseLabels(t *testing.T) {
	doc := newBoard(t)
	h := New(WithLogger(quiet()), WithLabels(schedule.Chinese))
	overlays := h.Plan(doc, []schedule.Difference{
		{Type: "moved", NewValue: schedule.String("Job2")},
		{Type: schedule.Removed, OldValue: schedule.String("Job1"), Element: "div#j1"},
	})
	require.Len(t, overlays, 2)
	assert.Equal(t, Blue, overlays[0].Color)
	assert.Empty(t, overlays[0].Label)
	assert.Equal(t, "删除: Job1", overlays[1].Label)
}

type brokenSurface struct{ clearErr, drawErr error }

func (b brokenSurface) Clear(context.Context) error { return b.clearErr }
func (b brokenSurface) Draw(context.Context, []Overlay) error { return b.drawErr }

func TestApply_SurfaceErrors(t *testing.T) {
	doc := newBoard(t)
	h := New(WithLogger(quiet()))
	boom := errors.New("tab closed")

	_, err := h.Apply(context.Background(), doc, brokenSurface{clearErr: boom}, sampleDiffs())
	assert.ErrorIs(t, err, boom)

	_, err = h.Apply(context.Background(), doc, brokenSurface{drawErr: boom}, sampleDiffs())
	assert.ErrorIs(t, err, boom)

	// Nothing to draw means Draw is never called.
	n, err := h.Apply(context.Background(), doc, brokenSurface{drawErr: boom}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
