package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"surveydq/internal/domain"
	"surveydq/internal/profile"
	"surveydq/internal/tabular"
)

// Strategy selects how allowed values are read off an answer-sheet row.
type Strategy int

const (
	// StrategyColumn treats the headers of marked columns as the answer options.
	StrategyColumn Strategy = iota
	// StrategyRow reads the options spelled out in the row's value cells.
	StrategyRow
	// StrategyRowOrColumn takes both the spelled-out values and the marked headers.
	StrategyRowOrColumn
)

func (s Strategy) String() string {
	switch s {
	case StrategyRow:
		return "row-only"
	case StrategyRowOrColumn:
		return "row-or-column"
	default:
		return "column"
	}
}

// Classifier decides the extraction strategy of each answer field.
type Classifier struct {
	rowOnly     map[string]bool
	rowOrColumn map[string]bool
}

// NewClassifier builds a classifier from the two explicit field lists; every
// other field uses StrategyColumn.
func NewClassifier(rowOnly, rowOrColumn []string) Classifier {
	c := Classifier{rowOnly: make(map[string]bool), rowOrColumn: make(map[string]bool)}
	for _, f := range rowOnly {
		c.rowOnly[f] = true
	}
	for _, f := range rowOrColumn {
		c.rowOrColumn[f] = true
	}
	return c
}

// Strategy returns the strategy for field.
func (c Classifier) Strategy(field string) Strategy {
	switch {
	case c.rowOnly[field]:
		return StrategyRow
	case c.rowOrColumn[field]:
		return StrategyRowOrColumn
	default:
		return StrategyColumn
	}
}

// RowValues returns the rendered non-blank value cells of a row.
func RowValues(values []tabular.Cell) []string {
	var out []string
	for _, c := range values {
		if !c.IsBlank() {
			out = append(out, c.String())
		}
	}
	return out
}

// ColumnValues returns the headers of the columns in which the row has a non-blank cell.
// values and headers are parallel slices.
func ColumnValues(values []tabular.Cell, headers []string) []string {
	var out []string
	for i, c := range values {
		if !c.IsBlank() && i < len(headers) {
			out = append(out, headers[i])
		}
	}
	return out
}

// RowOrColumnValues returns RowValues followed by ColumnValues.
func RowOrColumnValues(values []tabular.Cell, headers []string) []string {
	return append(RowValues(values), ColumnValues(values, headers)...)
}

// Extract applies strategy s to one row.
func Extract(s Strategy, values []tabular.Cell, headers []string) []string {
	switch s {
	case StrategyRow:
		return RowValues(values)
	case StrategyRowOrColumn:
		return RowOrColumnValues(values, headers)
	default:
		return ColumnValues(values, headers)
	}
}

// Answers maps a field to its ordered, distinct allowed values.
type Answers struct {
	order  []string
	values map[string][]string
	folded map[string]map[string]struct{}
}

// NewAnswers builds a catalog directly from field -> values, trimming,
// dropping empties and de-duplicating in first-seen order.
func NewAnswers(fields []string, values map[string][]string) *Answers {
	a := &Answers{values: make(map[string][]string), folded: make(map[string]map[string]struct{})}
	for _, f := range fields {
		a.add(f, values[f])
	}
	return a
}

func (a *Answers) add(field string, raw []string) {
	existing, known := a.values[field]
	seen := make(map[string]bool, len(existing)+len(raw))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		existing = append(existing, v)
	}
	if len(existing) == 0 {
		return
	}
	if !known {
		a.order = append(a.order, field)
	}
	a.values[field] = existing

	set := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		set[Fold(v)] = struct{}{}
	}
	a.folded[field] = set
}

// BuildAnswers derives the answer catalog from the reference sheet. Rows are
// grouped by the field-name column; rows with a blank field name are skipped.
// A nil sheet yields an empty catalog. Missing identifier columns are an ErrSchema.
func BuildAnswers(ref *tabular.Table, cols profile.AnswerColumns, cls Classifier) (*Answers, error) {
	a := &Answers{values: make(map[string][]string), folded: make(map[string]map[string]struct{})}
	if ref == nil {
		return a, nil
	}

	ref = ref.DropBlank()
	if ref.Empty() {
		return a, nil
	}
	fieldIdx, ok := ref.ColumnIndex(cols.FieldName)
	if !ok {
		return nil, fmt.Errorf("%w: column %q missing from sheet %q", domain.ErrSchema, cols.FieldName, ref.Name)
	}
	langIdx, hasLang := ref.ColumnIndex(cols.Language)

	var headers []string
	var pos []int
	for i, h := range ref.Columns {
		if i == fieldIdx || (hasLang && i == langIdx) {
			continue
		}
		headers = append(headers, h)
		pos = append(pos, i)
	}

	grouped := make(map[string][]string)
	var order []string
	for _, row := range ref.Rows {
		field := row[fieldIdx].Trimmed()
		if field == "" {
			continue
		}
		values := make([]tabular.Cell, len(pos))
		for k, i := range pos {
			values[k] = row[i]
		}
		if _, ok := grouped[field]; !ok {
			order = append(order, field)
		}
		grouped[field] = append(grouped[field], Extract(cls.Strategy(field), values, headers)...)
	}

	for _, f := range order {
		a.add(f, grouped[f])
	}
	return a, nil
}

// Fields returns the catalogued fields in first-seen order.
func (a *Answers) Fields() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Values returns the allowed values of field.
func (a *Answers) Values(field string) ([]string, bool) {
	v, ok := a.values[field]
	if !ok {
		return nil, false
	}
	out := make([]string, len(v))
	copy(out, v)
	return out, true
}

// Has reports whether field has a catalog entry.
func (a *Answers) Has(field string) bool {
	_, ok := a.folded[field]
	return ok
}

// Allows reports whether value matches one of field's allowed values,
// ignoring case and surrounding whitespace. Fields without an entry allow anything.
func (a *Answers) Allows(field, value string) bool {
	set, ok := a.folded[field]
	if !ok {
		return true
	}
	_, ok = set[Fold(value)]
	return ok
}

// Len returns the number of catalogued fields.
func (a *Answers) Len() int { return len(a.order) }

// Fold normalizes a value for case-insensitive comparison.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
