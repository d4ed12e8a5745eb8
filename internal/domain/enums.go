package domain

// IssueKind classifies a single validation finding.
type IssueKind string

const (
	IssueEmptySheet           IssueKind = "empty_sheet"
	IssueMissingColumn        IssueKind = "missing_column"
	IssueMissingValue         IssueKind = "missing_value"
	IssueDateFormat           IssueKind = "date_format"
	IssueTypeMismatch         IssueKind = "type_mismatch"
	IssueInvalidValue         IssueKind = "invalid_value"
	IssueConditionalRule      IssueKind = "conditional_rule"
	IssueDuplicateCombination IssueKind = "duplicate_combination"
)

// AllIssueKinds lists every issue kind in reporting order.
var AllIssueKinds = []IssueKind{
	IssueEmptySheet,
	IssueMissingColumn,
	IssueMissingValue,
	IssueDateFormat,
	IssueTypeMismatch,
	IssueInvalidValue,
	IssueConditionalRule,
	IssueDuplicateCombination,
}

// Label returns the human-readable name used in rendered reports.
func (k IssueKind) Label() string {
	switch k {
	case IssueEmptySheet:
		return "Empty Sheet"
	case IssueMissingColumn:
		return "Missing Column"
	case IssueMissingValue:
		return "Missing Value"
	case IssueDateFormat:
		return "Date Format Error"
	case IssueTypeMismatch:
		return "Type Error"
	case IssueInvalidValue:
		return "Invalid Value"
	case IssueConditionalRule:
		return "Conditional Rule"
	case IssueDuplicateCombination:
		return "Duplicate"
	default:
		return string(k)
	}
}

// FieldType is the declared type of a schema field.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumeric FieldType = "numeric"
	FieldDate    FieldType = "date"
)

// Applicability describes whether a field is required everywhere or only for one country.
type Applicability string

const (
	ApplicabilityGlobal      Applicability = "global"
	ApplicabilityCountry     Applicability = "country"
	ApplicabilityNotRequired Applicability = "not_required"
)

// Country is the survey country a run validates against.
type Country string

const (
	CountryGhana      Country = "GHA"
	CountryIvoryCoast Country = "CIV"
)

// Language selects the message template used when rendering issues.
type Language string

const (
	LanguageEN Language = "EN"
	LanguageFR Language = "FR"
)

// RunStatus represents the lifecycle of a stored validation run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)
