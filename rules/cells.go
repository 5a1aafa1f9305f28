// rules/cells.go
package rules

import "github.com/gewnthar/crewsched/utils"

// Cells is the trimmed text of a row's cells. Out of range access yields "".
type Cells []string

func (c Cells) At(i int) string {
	if i < 0 || i >= len(c) {
		return ""
	}
	return c[i]
}

// Index returns the position of the first cell equal to text, or -1.
func (c Cells) Index(text string) int {
	for i, v := range c {
		if v == text {
			return i
		}
	}
	return -1
}

// Last returns the final cell, or "".
func (c Cells) Last() string { return c.At(len(c) - 1) }

// NewCells trims each raw cell text.
func NewCells(raw []string) Cells {
	c := make(Cells, len(raw))
	for i, s := range raw {
		c[i] = utils.CleanText(s)
	}
	return c
}

type RowKind int

const (
	RowOther RowKind = iota
	RowHeader
	RowTotals
	RowLeg
)

func (k RowKind) String() string {
	switch k {
	case RowHeader:
		return "header"
	case RowTotals:
		return "totals"
	case RowLeg:
		return "leg"
	}
	return "other"
}

// KindOf classifies a row by its class attribute. main wins over bold, bold over nowrap.
func KindOf(classAttr string) RowKind {
	switch {
	case utils.HasClassToken(classAttr, RowClassHeader):
		return RowHeader
	case utils.HasClassToken(classAttr, RowClassTotals):
		return RowTotals
	case utils.HasClassToken(classAttr, RowClassLeg):
		return RowLeg
	}
	return RowOther
}

// Row is one table row reduced to what the duty period scanner needs.
// Text is the untrimmed concatenation of the row's text.
type Row struct {
	Kind  RowKind
	Cells Cells
	Text  string
}
