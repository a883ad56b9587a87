package locate

import (
	"math"
	"sort"
	"strings"

	"github.com/hazyhaar/slotdiff/pagedom"
	"github.com/hazyhaar/slotdiff/schedule"
)

// Strategy turns a document into slot records. Strategies are pure: they
// read the document and never mutate it.
type Strategy struct {
	Name string
	Run  func(doc *pagedom.Document) []schedule.Slot
}

// Plan composes strategies. The structural strategies all run and their
// records are concatenated in order; the fallback only runs when they
// produced nothing.
type Plan struct {
	Structural []Strategy
	Fallback   Strategy
}

// DefaultPlan is tables, then grid containers, then geometric inference.
func DefaultPlan() Plan {
	return Plan{
		Structural: []Strategy{
			{Name: string(schedule.KindTableCell), Run: TableCells},
			{Name: string(schedule.KindGridItem), Run: GridItems},
		},
		Fallback: Strategy{Name: string(schedule.KindVisualPosition), Run: VisualPositions},
	}
}

// Run executes the plan and returns the records plus the name of the group
// that produced them ("structural" or the fallback name).
func (p Plan) Run(doc *pagedom.Document) ([]schedule.Slot, string) {
	var out []schedule.Slot
	for _, s := range p.Structural {
		out = append(out, s.Run(doc)...)
	}
	if len(out) > 0 || p.Fallback.Run == nil {
		return out, "structural"
	}
	return p.Fallback.Run(doc), p.Fallback.Name
}

// TableCells emits one record per non-empty td/th, keyed by the row and
// cell index inside its table.
func TableCells(doc *pagedom.Document) []schedule.Slot {
	var out []schedule.Slot
	tables, _ := doc.QuerySelectorAll("table")
	for ti, table := range tables {
		rows, _ := table.QuerySelectorAll("tr")
		for ri, row := range rows {
			cells, _ := row.QuerySelectorAll("td, th")
			for ci, cell := range cells {
				text := strings.TrimSpace(cell.Text())
				if text == "" {
					continue
				}
				out = append(out, schedule.Slot{
					Type:       schedule.KindTableCell,
					Row:        ri,
					Col:        ci,
					TableIndex: schedule.Int(ti),
					Text:       text,
					Color:      cell.Background,
					Element:    pagedom.Path(cell),
				})
			}
		}
	}
	return out
}

// GridContainers matches elements laid out as a grid or timeline.
const GridContainers = `[style*="grid"], .grid, .gantt, .schedule, .timeline`

// gridRowWidth is the assumed number of items per visual row.
const gridRowWidth = 20

// GridItems emits one record per direct child of a grid-like container
// that has text and is wider than 10px.
func GridItems(doc *pagedom.Document) []schedule.Slot {
	var out []schedule.Slot
	containers, _ := doc.QuerySelectorAll(GridContainers)
	for _, c := range containers {
		if c.IsOverlay() {
			continue
		}
		for i, child := range c.Children() {
			if child.IsOverlay() {
				continue
			}
			text := strings.TrimSpace(child.Text())
			if text == "" || child.Box.Width <= 10 {
				continue
			}
			out = append(out, schedule.Slot{
				Type:    schedule.KindGridItem,
				Row:     i / gridRowWidth,
				Col:     i % gridRowWidth,
				Text:    text,
				Color:   child.Background,
				X:       schedule.Float(child.Box.X),
				Y:       schedule.Float(child.Box.Y),
				Element: pagedom.Path(child),
			})
		}
	}
	return out
}

// rowBucket is the vertical band, in px, treated as one row.
const rowBucket = 30

// VisualPositions infers rows and columns from colored blocks: blocks are
// banded by y into 30px buckets, buckets are ordered top to bottom and
// blocks within a bucket left to right.
func VisualPositions(doc *pagedom.Document) []schedule.Slot {
	colored := ColoredElements(doc)
	if len(colored) == 0 {
		return nil
	}
	buckets := make(map[float64][]Colored)
	var keys []float64
	for _, c := range colored {
		k := math.Floor(c.Y/rowBucket) * rowBucket
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], c)
	}
	sort.Float64s(keys)

	out := make([]schedule.Slot, 0, len(colored))
	for row, k := range keys {
		items := buckets[k]
		sort.SliceStable(items, func(i, j int) bool { return items[i].X < items[j].X })
		for col, c := range items {
			out = append(out, schedule.Slot{
				Type:    schedule.KindVisualPosition,
				Row:     row,
				Col:     col,
				Text:    c.Text,
				Color:   c.Color,
				X:       schedule.Float(c.X),
				Y:       schedule.Float(c.Y),
				Width:   schedule.Float(c.Width),
				Height:  schedule.Float(c.Height),
				Element: pagedom.Path(c.Node),
			})
		}
	}
	return out
}
