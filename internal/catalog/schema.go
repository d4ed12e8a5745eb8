// Package catalog builds the two read-only catalogs a validation run needs
// from the key workbook: the expected-field schema and the allowed-answer
// catalog. Both are built once per run and never mutated afterwards.
package catalog

import (
	"fmt"
	"strings"

	"surveydq/internal/domain"
	"surveydq/internal/profile"
	"surveydq/internal/tabular"
)

// Schema lists the fields a data sheet is expected to carry and their declared types.
type Schema struct {
	fields []domain.FieldSpec
	types  map[string]domain.FieldType
}

// BuildSchema selects the rows of meta whose applicability is the universal
// marker or country, keeping field names in first-occurrence order.
// A missing field-name or applicability column is an ErrSchema.
func BuildSchema(meta *tabular.Table, cols profile.SchemaColumns, marker string, country domain.Country) (*Schema, error) {
	if meta == nil {
		return nil, fmt.Errorf("%w: schema sheet not found", domain.ErrSchema)
	}
	for _, c := range []string{cols.FieldName, cols.Applicability} {
		if !meta.Has(c) {
			return nil, fmt.Errorf("%w: column %q missing from sheet %q", domain.ErrSchema, c, meta.Name)
		}
	}

	s := &Schema{types: make(map[string]domain.FieldType)}
	seen := make(map[string]bool)
	hasType := meta.Has(cols.Type)

	for i := range meta.Rows {
		name := meta.Cell(i, cols.FieldName).Trimmed()
		if name == "" {
			continue
		}

		typ := domain.FieldText
		if hasType {
			typ = ParseFieldType(meta.Cell(i, cols.Type).Trimmed())
		}
		// Later rows override earlier ones, matching how the key sheet is maintained.
		s.types[name] = typ

		app := applicability(meta.Cell(i, cols.Applicability).Trimmed(), marker, country)
		if app == domain.ApplicabilityNotRequired || seen[name] {
			continue
		}
		seen[name] = true
		s.fields = append(s.fields, domain.FieldSpec{Name: name, Applicability: app})
	}

	for i := range s.fields {
		s.fields[i].Type = s.types[s.fields[i].Name]
	}
	return s, nil
}

func applicability(flag, marker string, country domain.Country) domain.Applicability {
	switch flag {
	case marker:
		return domain.ApplicabilityGlobal
	case string(country):
		return domain.ApplicabilityCountry
	default:
		return domain.ApplicabilityNotRequired
	}
}

// ParseFieldType maps the key workbook's type vocabulary onto FieldType.
// Unknown or blank declarations are text.
func ParseFieldType(s string) domain.FieldType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "datetime64[ns]", "datetime", "date":
		return domain.FieldDate
	case "float64", "int64", "float", "int", "integer", "numeric", "number":
		return domain.FieldNumeric
	default:
		return domain.FieldText
	}
}

// Fields returns the expected fields in schema order.
func (s *Schema) Fields() []domain.FieldSpec {
	out := make([]domain.FieldSpec, len(s.fields))
	copy(out, s.fields)
	return out
}

// Expected returns the expected field names in schema order.
func (s *Schema) Expected() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// TypeOf returns the declared type of field, defaulting to text.
func (s *Schema) TypeOf(field string) domain.FieldType {
	if t, ok := s.types[field]; ok {
		return t
	}
	return domain.FieldText
}
