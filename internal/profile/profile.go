// Package profile describes a survey's validation layout as data: which sheets
// exist, how the key workbook is shaped, which answer fields use which
// extraction strategy, the duplicate-key candidates and the conditional rules.
package profile

import (
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"surveydq/internal/domain"
)

// ConditionalRule requires Field to be non-blank on every row where Companion equals Trigger.
type ConditionalRule struct {
	Sheet     string `yaml:"sheet" json:"sheet" validate:"required"`
	Field     string `yaml:"field" json:"field" validate:"required"`
	Companion string `yaml:"companion" json:"companion" validate:"required,nefield=Field"`
	Trigger   string `yaml:"trigger" json:"trigger" validate:"required"`
}

// SchemaColumns names the columns of the schema (description) sheet.
type SchemaColumns struct {
	FieldName     string `yaml:"field_name" json:"field_name" validate:"required"`
	Applicability string `yaml:"applicability" json:"applicability" validate:"required"`
	Type          string `yaml:"type" json:"type" validate:"required"`
}

// AnswerColumns names the two identifier columns of the answer sheet.
type AnswerColumns struct {
	Language  string `yaml:"language" json:"language" validate:"required"`
	FieldName string `yaml:"field_name" json:"field_name" validate:"required,nefield=Language"`
}

// Profile is the full declarative description of one survey.
type Profile struct {
	Name                string            `yaml:"name" json:"name" validate:"required"`
	SchemaSheet         string            `yaml:"schema_sheet" json:"schema_sheet" validate:"required"`
	AnswerSheet         string            `yaml:"answer_sheet" json:"answer_sheet" validate:"required"`
	SchemaColumns       SchemaColumns     `yaml:"schema_columns" json:"schema_columns"`
	AnswerColumns       AnswerColumns     `yaml:"answer_columns" json:"answer_columns"`
	UniversalMarker     string            `yaml:"universal_marker" json:"universal_marker" validate:"required"`
	Countries           []domain.Country  `yaml:"countries" json:"countries" validate:"required,min=1,dive,required"`
	Languages           []domain.Language `yaml:"languages" json:"languages" validate:"required,min=1,dive,oneof=EN FR"`
	Sheets              []string          `yaml:"sheets" json:"sheets" validate:"required,min=1,unique,dive,required"`
	RowOnlyFields       []string          `yaml:"row_only_fields" json:"row_only_fields" validate:"unique"`
	RowOrColumnFields   []string          `yaml:"row_or_column_fields" json:"row_or_column_fields" validate:"unique"`
	DuplicateCandidates []string          `yaml:"duplicate_candidates" json:"duplicate_candidates" validate:"unique,dive,required"`
	KeySeparator        string            `yaml:"key_separator" json:"key_separator" validate:"required"`
	ConditionalRules    []ConditionalRule `yaml:"conditional_rules" json:"conditional_rules" validate:"dive"`
}

// Default returns the profile of the child-labour monitoring survey the tool was built for.
func Default() *Profile {
	return &Profile{
		Name:        "mars-kpi",
		SchemaSheet: "description",
		AnswerSheet: "answer_list",
		SchemaColumns: SchemaColumns{
			FieldName:     "Field Name Eng for partner",
			Applicability: "For Mars KPI reporting",
			Type:          "Type of variable in the table",
		},
		AnswerColumns: AnswerColumns{
			Language:  "Language",
			FieldName: "Field Name Eng for partner",
		},
		UniversalMarker:     "Y",
		Countries:           []domain.Country{domain.CountryGhana, domain.CountryIvoryCoast},
		Languages:           []domain.Language{domain.LanguageEN, domain.LanguageFR},
		Sheets:              []string{"P", "B-C", "D", "E_Com", "E_Hho", "E_Chd"},
		RowOnlyFields:       []string{},
		RowOrColumnFields:   []string{"VisitType", "ReNoSchool", "RChildType", "RHhType", "EducStatus"},
		DuplicateCandidates: []string{"ChldID", "FarmerID", "VisitType", "EndDateActivity"},
		KeySeparator:        "|",
		ConditionalRules: []ConditionalRule{
			{Sheet: "D", Field: "ReNoAvble", Companion: "ChldAvble", Trigger: "0"},
			{Sheet: "B-C", Field: "HH_ReNoAvble", Companion: "HH_Avble", Trigger: "0"},
		},
	}
}

// Load reads a YAML profile from path. Keys missing from the file keep their default values.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML profile layered over Default and validates it.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProfile, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the profile's structural constraints.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProfile, err)
	}
	for _, f := range p.RowOnlyFields {
		if slices.Contains(p.RowOrColumnFields, f) {
			return fmt.Errorf("%w: field %q is classified as both row-only and row-or-column", domain.ErrProfile, f)
		}
	}
	return nil
}

// SupportsCountry reports whether c is one of the profile's countries.
func (p *Profile) SupportsCountry(c domain.Country) bool {
	return slices.Contains(p.Countries, c)
}

// SupportsLanguage reports whether l is one of the profile's languages.
func (p *Profile) SupportsLanguage(l domain.Language) bool {
	return slices.Contains(p.Languages, l)
}

// RulesFor returns the conditional rules whose dependent field is field on sheet.
func (p *Profile) RulesFor(sheet, field string) []ConditionalRule {
	var out []ConditionalRule
	for _, r := range p.ConditionalRules {
		if r.Sheet == sheet && r.Field == field {
			out = append(out, r)
		}
	}
	return out
}
