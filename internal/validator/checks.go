package validator

import (
	"strconv"
	"strings"
	"time"

	"surveydq/internal/catalog"
	"surveydq/internal/domain"
	"surveydq/internal/i18n"
	"surveydq/internal/tabular"
)

// cellValidator adapts a pair of functions to the Validator interface.
type cellValidator struct {
	ruleKey  string
	kind     domain.IssueKind
	applies  func(domain.FieldSpec, *catalog.Answers) bool
	validate func(string, tabular.Cell, *catalog.Answers) Result
}

func (v *cellValidator) RuleKey() string        { return v.ruleKey }
func (v *cellValidator) Kind() domain.IssueKind { return v.kind }

func (v *cellValidator) Applies(f domain.FieldSpec, a *catalog.Answers) bool {
	return v.applies(f, a)
}

func (v *cellValidator) Validate(field string, c tabular.Cell, a *catalog.Answers) Result {
	return v.validate(field, c, a)
}

// BuiltinValidators returns the built-in cell checks in evaluation order.
func BuiltinValidators() []Validator {
	return []Validator{
		DateValidator(),
		NumericValidator(),
		MembershipValidator(),
	}
}

// DateValidator requires date-typed fields to hold a day-month-year date.
func DateValidator() Validator {
	return &cellValidator{
		ruleKey: "type.date",
		kind:    domain.IssueDateFormat,
		applies: func(f domain.FieldSpec, _ *catalog.Answers) bool {
			return f.Type == domain.FieldDate
		},
		validate: func(_ string, c tabular.Cell, _ *catalog.Answers) Result {
			if IsDate(c) {
				return Pass
			}
			return Fail(i18n.MsgExpectedDate)
		},
	}
}

// NumericValidator requires numeric-typed fields to hold a number.
func NumericValidator() Validator {
	return &cellValidator{
		ruleKey: "type.numeric",
		kind:    domain.IssueTypeMismatch,
		applies: func(f domain.FieldSpec, _ *catalog.Answers) bool {
			return f.Type == domain.FieldNumeric
		},
		validate: func(_ string, c tabular.Cell, _ *catalog.Answers) Result {
			if IsNumeric(c) {
				return Pass
			}
			return Fail(i18n.MsgExpectedNumeric)
		},
	}
}

// MembershipValidator requires catalogued fields to hold one of their allowed values.
func MembershipValidator() Validator {
	return &cellValidator{
		ruleKey: "catalog.membership",
		kind:    domain.IssueInvalidValue,
		applies: func(f domain.FieldSpec, a *catalog.Answers) bool {
			return a != nil && a.Has(f.Name)
		},
		validate: func(field string, c tabular.Cell, a *catalog.Answers) Result {
			if a.Allows(field, c.String()) {
				return Pass
			}
			return Fail(i18n.MsgInvalidValue, c.String())
		},
	}
}

// IsDate reports whether c is a date cell or text in day-month-year form naming a real calendar day.
func IsDate(c tabular.Cell) bool {
	switch c.Kind {
	case tabular.Date:
		return true
	case tabular.Text:
		_, err := time.Parse(tabular.DateParseLayout, strings.TrimSpace(c.Text))
		return err == nil
	default:
		return false
	}
}

// IsNumeric reports whether c is a number cell or text that parses as one.
func IsNumeric(c tabular.Cell) bool {
	switch c.Kind {
	case tabular.Number:
		return true
	case tabular.Text:
		_, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		return err == nil
	default:
		return false
	}
}
