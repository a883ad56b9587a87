package pagedom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schedulePage = `<!doctype html>
<html><head><title>Plan</title><style>td{color:red}</style></head>
<body>
  <table id="plan">
    <tr><th>Name</th><th>Mon</th></tr>
    <tr><td class="cell a">Alice</td><td style="background:#4caf50">Shift 1</td></tr>
  </table>
  <div class="gantt" style="left:10px;top:20px;width:400px;height:200px">
    <div style="left:5px;top:5px;width:100px;height:30px;background-color:rgb(76,175,80)">Task 1</div>
    <div style="left:5px;top:40px;width:100px;height:30px;display:none">Hidden</div>
    <span data-role="bar-x">Task 2</span>
  </div>
  <script>var x = "not text";</script>
</body></html>`

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseString(src, "http://example.test/plan")
	require.NoError(t, err)
	return doc
}

func TestParse_TextAndStructure(t *testing.T) {
	doc := mustParse(t, schedulePage)
	assert.Equal(t, "html", doc.Root().Tag)
	assert.Equal(t, "body", doc.Body().Tag)
	assert.Equal(t, "http://example.test/plan", doc.URL)

	tds, err := doc.QuerySelectorAll("td")
	require.NoError(t, err)
	require.Len(t, tds, 2)
	assert.Equal(t, "Alice", tds[0].Text())
	assert.Equal(t, "Shift 1", tds[1].Text())

	assert.NotContains(t, doc.Body().Text(), "not text")
	assert.NotContains(t, doc.Body().Text(), "Hidden")
	assert.Contains(t, doc.Body().Text(), "Task 1")
}

func TestParse_GeometryAndColor(t *testing.T) {
	doc := mustParse(t, schedulePage)
	gantt, err := doc.QuerySelector(".gantt")
	require.NoError(t, err)
	require.NotNil(t, gantt)
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 400, Height: 200}, gantt.Box)
	assert.Equal(t, Transparent, gantt.Background)

	task := gantt.Children()[0]
	assert.Equal(t, Rect{X: 15, Y: 25, Width: 100, Height: 30}, task.Box)
	assert.Equal(t, "rgb(76, 175, 80)", task.Background)

	hidden := gantt.Children()[1]
	assert.Equal(t, Rect{}, hidden.Box)
	assert.Empty(t, hidden.Text())

	tds, _ := doc.QuerySelectorAll("td")
	assert.Equal(t, "rgb(76, 175, 80)", tds[1].Background)
}

func TestNormalizeColor(t *testing.T) {
	cases := map[string]string{
		"#fff":                "rgb(255, 255, 255)",
		"#4CAF50":             "rgb(76, 175, 80)",
		"#00000080":           "rgba(0, 0, 0, 0.502)",
		"rgb(1,2,3)":          "rgb(1, 2, 3)",
		"rgba(1, 2, 3, 0.5)":  "rgba(1, 2, 3, 0.5)",
		"rgba(1, 2, 3, 1)":    "rgb(1, 2, 3)",
		"rgb(10 20 30 / 50%)": "rgba(10, 20, 30, 0.5)",
		"transparent":         Transparent,
		"Orange":              "rgb(255, 165, 0)",
		"not-a-colour":        Transparent,
		"#12":                 Transparent,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeColor(in), in)
	}
}

func TestBackgroundShorthand(t *testing.T) {
	st := parseStyle("background: url(x.png) no-repeat #ff9800 !important")
	assert.Equal(t, "rgb(255, 152, 0)", backgroundOf(st))
	st = parseStyle("background: #000; background-color: white")
	assert.Equal(t, "rgb(255, 255, 255)", backgroundOf(st))
}

func TestSelector_Matching(t *testing.T) {
	doc := mustParse(t, schedulePage)
	cases := []struct {
		sel  string
		want int
	}{
		{"td", 2},
		{"td, th", 4},
		{"#plan tr", 2},
		{"table > tr", 0}, // rows live under an implied tbody
		{"table > tbody > tr", 2},
		{"td.cell.a", 1},
		{".gantt > div", 2},
		{`[data-role]`, 1},
		{`[data-role^="bar"]`, 1},
		{`[data-role$=x]`, 1},
		{`[data-role*="-"]`, 1},
		{`[style*="grid"]`, 0},
		{`[class~=cell]`, 1},
		{"tr:nth-of-type(2) td", 2},
		{"td:first-child", 1},
		{"td:last-child", 1},
		{"tr:nth-child(odd)", 1},
		{"*", len(doc.All())},
	}
	for _, tc := range cases {
		got, err := doc.QuerySelectorAll(tc.sel)
		require.NoError(t, err, tc.sel)
		assert.Len(t, got, tc.want, tc.sel)
	}
}

func TestSelector_Invalid(t *testing.T) {
	for _, sel := range []string{"", "td,", "#1abc", "div[", "div[a=", "a + b", "td:hover", "div >", "[x!=y]", `[a="b]`} {
		_, err := Compile(sel)
		assert.ErrorIs(t, err, ErrSelector, sel)
	}
}

func TestNodeQuerySelectorAll_Scoped(t *testing.T) {
	doc := mustParse(t, `<body><table><tr><td>a</td></tr></table><table><tr><td>b</td><td>c</td></tr></table></body>`)
	tables, err := doc.QuerySelectorAll("table")
	require.NoError(t, err)
	require.Len(t, tables, 2)
	cells, err := tables[1].QuerySelectorAll("td, th")
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, "b", cells[0].Text())
}

func TestPath(t *testing.T) {
	doc := mustParse(t, `<body><div id="app"><ul><li>a</li><li>b</li><li>c</li></ul></div><p>x</p><p>y</p></body>`)
	lis, _ := doc.QuerySelectorAll("li")
	assert.Equal(t, "div#app > ul > li", Path(lis[0]))
	assert.Equal(t, "div#app > ul > li:nth-of-type(3)", Path(lis[2]))

	ps, _ := doc.QuerySelectorAll("p")
	assert.Equal(t, "html > body > p:nth-of-type(2)", Path(ps[1]))

	// Paths resolve back to the same element.
	for _, n := range []*Node{lis[1], ps[1]} {
		got, err := doc.QuerySelector(Path(n))
		require.NoError(t, err)
		assert.Same(t, n, got)
	}

	detached := NewElement("span", nil)
	assert.Equal(t, "span", Path(detached))
}

func TestElementFromPoint(t *testing.T) {
	doc := mustParse(t, schedulePage)
	hit := doc.ElementFromPoint(20, 30)
	require.NotNil(t, hit)
	assert.Equal(t, "Task 1", hit.Text())

	hit = doc.ElementFromPoint(300, 150)
	require.NotNil(t, hit)
	assert.True(t, hit.HasClass("gantt"))

	assert.Nil(t, doc.ElementFromPoint(5000, 5000))

	// Overlays do not intercept hits.
	ov := NewElement("div", map[string]string{"class": OverlayClass})
	ov.Box = Rect{X: 0, Y: 0, Width: 1000, Height: 1000}
	doc.Append(nil, ov)
	hit = doc.ElementFromPoint(20, 30)
	require.NotNil(t, hit)
	assert.Equal(t, "Task 1", hit.Text())
}

func TestAppendRemove(t *testing.T) {
	doc := mustParse(t, `<body><div>a</div></body>`)
	before := len(doc.All())
	n := NewElement("div", map[string]string{"class": LabelClass})
	doc.Append(nil, n)
	assert.Len(t, doc.All(), before+1)
	assert.Same(t, doc.Body(), n.Parent())
	assert.True(t, n.IsOverlay())

	doc.Remove(n)
	assert.Len(t, doc.All(), before)
	assert.Nil(t, n.Parent())
}

func TestFromCapture(t *testing.T) {
	doc, err := FromCapture(Capture{
		URL: "http://live.test/",
		Nodes: []CapturedNode{
			{Parent: -1, Tag: "HTML"},
			{Parent: 0, Tag: "BODY", Width: 800, Height: 600},
			{Parent: 1, Tag: "DIV", Attrs: map[string]string{"Class": "gantt"}, Text: "Job 1", Background: "rgb(1, 2, 3)", X: 10, Y: 100, Width: 80, Height: 20},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://live.test/", doc.URL)
	div, err := doc.QuerySelector("body > .gantt")
	require.NoError(t, err)
	require.NotNil(t, div)
	assert.Equal(t, "Job 1", div.Text())
	assert.Equal(t, "rgb(1, 2, 3)", div.Background)
	assert.Equal(t, Transparent, doc.Body().Background)
	assert.Equal(t, "html > body > div", Path(div))

	_, err = FromCapture(Capture{Nodes: []CapturedNode{{Parent: 0, Tag: "html"}}})
	assert.Error(t, err)
}
