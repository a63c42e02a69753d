// Package progress projects a session snapshot into per-field status rows.
package progress

import (
	"math"

	"docfill/internal/types"
)

// DefaultVisibleRows is how many field rows a list shows before summarising the rest.
const DefaultVisibleRows = 10

// Status is the display state of one placeholder.
type Status int

const (
	Pending Status = iota
	Current
	Filled
)

func (s Status) String() string {
	switch s {
	case Current:
		return "current"
	case Filled:
		return "filled"
	default:
		return "pending"
	}
}

// Field is one row of the projection.
// A filled field at the current index has Status Current and Filled true.
type Field struct {
	Placeholder types.Placeholder
	Index       int
	Filled      bool
	Current     bool
	Value       string
	Status      Status
}

// Projection is the derived view of progress.
type Projection struct {
	CompletedCount int
	TotalCount     int
	Percent        float64 // server progress, clamped for display
	Fields         []Field
}

// Project derives per-field status from the document and focus index.
// percent is the server-computed progress; it is passed through, never recomputed.
func Project(doc *types.Document, currentIndex int, percent float64) Projection {
	proj := Projection{Percent: DisplayPercent(percent)}
	if doc == nil {
		return proj
	}

	proj.TotalCount = len(doc.Placeholders)
	proj.Fields = make([]Field, 0, len(doc.Placeholders))
	for i, p := range doc.Placeholders {
		v, filled := doc.FilledValues.Lookup(p)
		f := Field{
			Placeholder: p,
			Index:       i,
			Filled:      filled,
			Current:     i == currentIndex,
			Value:       v,
		}
		switch {
		case f.Current:
			f.Status = Current
		case filled:
			f.Status = Filled
		default:
			f.Status = Pending
		}
		if filled {
			proj.CompletedCount++
		}
		proj.Fields = append(proj.Fields, f)
	}
	return proj
}

// Visible returns up to limit rows and how many were left out.
// A non-positive limit means DefaultVisibleRows.
func (p Projection) Visible(limit int) ([]Field, int) {
	if limit <= 0 {
		limit = DefaultVisibleRows
	}
	if len(p.Fields) <= limit {
		return p.Fields, 0
	}
	return p.Fields[:limit], len(p.Fields) - limit
}

// Rounded returns the display percentage as a whole number.
func (p Projection) Rounded() int {
	return int(math.Round(p.Percent))
}

// DisplayPercent clamps a server percentage into [0, 100].
func DisplayPercent(percent float64) float64 {
	if math.IsNaN(percent) || percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
