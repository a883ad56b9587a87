package schedule

import "fmt"

// Labels holds the user-facing texts for differences and overlay labels.
type Labels struct {
	RemovedDesc string // row, col
	ChangedDesc string // row, col, old, new
	AddedDesc   string // row, col, new
	AddedTag    string // new
	RemovedTag  string // old
	ChangedTag  string // old, new
	NoDiff      string
}

var (
	// English is the default locale.
	English = Labels{
		RemovedDesc: "Removed: row %d col %d",
		ChangedDesc: `Changed: row %d col %d: "%s" → "%s"`,
		AddedDesc:   `Added: row %d col %d: "%s"`,
		AddedTag:    "Added: %s",
		RemovedTag:  "Removed: %s",
		ChangedTag:  "%s → %s",
		NoDiff:      "No differences found",
	}

	// Chinese is the zh locale.
	Chinese = Labels{
		RemovedDesc: "已删除: 行%d 列%d",
		ChangedDesc: `变更: 行%d 列%d: "%s" → "%s"`,
		AddedDesc:   `新增: 行%d 列%d: "%s"`,
		AddedTag:    "新增: %s",
		RemovedTag:  "删除: %s",
		ChangedTag:  "%s → %s",
		NoDiff:      "没有发现差异",
	}
)

// LabelsFor returns the label set for a locale code ("en", "zh").
// Unknown codes fall back to English.
func LabelsFor(locale string) Labels {
	if locale == "zh" {
		return Chinese
	}
	return English
}

// Describe renders the description of a difference.
func (l Labels) Describe(d Difference) string {
	switch d.Type {
	case Removed:
		return fmt.Sprintf(l.RemovedDesc, d.Row, d.Col)
	case Changed:
		return fmt.Sprintf(l.ChangedDesc, d.Row, d.Col, d.Old(), d.New())
	case Added:
		return fmt.Sprintf(l.AddedDesc, d.Row, d.Col, d.New())
	}
	return ""
}

// Tag renders the short overlay label of a difference. Unknown types get
// an empty label.
func (l Labels) Tag(d Difference) string {
	switch d.Type {
	case Added:
		return fmt.Sprintf(l.AddedTag, d.New())
	case Removed:
		return fmt.Sprintf(l.RemovedTag, d.Old())
	case Changed:
		return fmt.Sprintf(l.ChangedTag, d.Old(), d.New())
	}
	return ""
}
