// Package tabular holds the in-memory table model the validation core works on.
//
// Every cell is normalized once at ingestion into a tagged value (Blank, Text,
// Number or Date) so rule evaluation branches on a closed set of kinds instead
// of probing raw spreadsheet values.
package tabular

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the content of a Cell.
type Kind int

const (
	Blank Kind = iota
	Text
	Number
	Date
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Text:
		return "text"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// DateLayout is the day-month-year layout dates are rendered with.
const DateLayout = "02-01-2006"

// DateParseLayout accepts day and month with or without a leading zero.
const DateParseLayout = "2-1-2006"

// Cell is a normalized table entry.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Time   time.Time
}

// BlankCell returns an absent value.
func BlankCell() Cell { return Cell{Kind: Blank} }

// TextCell returns a textual cell, or a blank one if s is whitespace-only.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return BlankCell()
	}
	return Cell{Kind: Text, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(v float64) Cell { return Cell{Kind: Number, Number: v} }

// DateCell returns a date cell.
func DateCell(t time.Time) Cell { return Cell{Kind: Date, Time: t} }

// Normalize converts a raw string into a Cell. Whitespace-only input is Blank;
// anything else is Text. Numeric and date tagging is left to readers that know
// the source cell type.
func Normalize(raw string) Cell { return TextCell(raw) }

// IsBlank reports whether the cell is absent.
func (c Cell) IsBlank() bool { return c.Kind == Blank }

// String renders the cell the way it is compared and reported.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case Date:
		return c.Time.Format(DateLayout)
	default:
		return ""
	}
}

// Trimmed returns String with surrounding whitespace removed.
func (c Cell) Trimmed() string { return strings.TrimSpace(c.String()) }
