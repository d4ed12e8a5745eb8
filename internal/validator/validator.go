// Package validator runs the per-sheet validation pass: cell checks from a
// registry, declarative conditional rules and composite-key duplicate detection.
package validator

import (
	"surveydq/internal/catalog"
	"surveydq/internal/domain"
	"surveydq/internal/i18n"
	"surveydq/internal/tabular"
)

// Result is the outcome of one cell check. A failed result names the message
// template and its arguments; the engine renders it in the run language.
type Result struct {
	Passed  bool
	Message i18n.Key
	Args    []any
}

// Pass is the result of a satisfied check.
var Pass = Result{Passed: true}

// Fail builds a failed result.
func Fail(key i18n.Key, args ...any) Result {
	return Result{Message: key, Args: args}
}

// Validator is the interface for a single cell-level rule. Validators only
// ever see non-blank cells; blanks are handled by the engine.
type Validator interface {
	RuleKey() string
	Kind() domain.IssueKind
	Applies(field domain.FieldSpec, answers *catalog.Answers) bool
	Validate(field string, cell tabular.Cell, answers *catalog.Answers) Result
}
