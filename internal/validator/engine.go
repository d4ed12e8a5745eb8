package validator

import (
	"strings"

	"surveydq/internal/catalog"
	"surveydq/internal/domain"
	"surveydq/internal/i18n"
	"surveydq/internal/profile"
	"surveydq/internal/tabular"
)

// Engine validates data sheets against the schema and answer catalogs of one run.
// It holds no mutable state and is safe for concurrent use across sheets.
type Engine struct {
	registry *Registry
	schema   *catalog.Schema
	answers  *catalog.Answers
	profile  *profile.Profile
	messages i18n.Catalog
	lang     domain.Language
}

// NewEngine creates a new validation engine.
func NewEngine(
	registry *Registry,
	schema *catalog.Schema,
	answers *catalog.Answers,
	prof *profile.Profile,
	messages i18n.Catalog,
	lang domain.Language,
) *Engine {
	if answers == nil {
		answers = catalog.NewAnswers(nil, nil)
	}
	return &Engine{
		registry: registry,
		schema:   schema,
		answers:  answers,
		profile:  prof,
		messages: messages,
		lang:     lang,
	}
}

// issues is the per-sheet accumulator the engine threads through each step.
type issues struct {
	sheet string
	out   []domain.Issue
}

func (a *issues) add(field string, row int, kind domain.IssueKind, msg, value string) {
	iss := domain.Issue{Sheet: a.sheet, Field: field, Kind: kind, Message: msg, Value: value}
	if row >= 0 {
		r := row
		iss.Row = &r
	}
	a.out = append(a.out, iss)
}

// ValidateSheet returns the ordered issues for one data sheet. Row indexes are
// zero-based over data rows. Malformed cell content never fails the call.
func (e *Engine) ValidateSheet(t *tabular.Table) []domain.Issue {
	acc := &issues{sheet: t.Name}

	if t.Empty() {
		acc.add("", -1, domain.IssueEmptySheet, e.render(i18n.MsgEmptySheet), "")
		return acc.out
	}

	for _, f := range e.schema.Fields() {
		if !t.Has(f.Name) {
			continue
		}
		e.validateField(acc, t, f)
	}

	e.checkDuplicates(acc, t)
	return acc.out
}

func (e *Engine) validateField(acc *issues, t *tabular.Table, f domain.FieldSpec) {
	cells := t.Column(f.Name)
	gated := e.conditionalRows(t, f.Name, cells)

	allBlank := true
	for _, c := range cells {
		if !c.IsBlank() {
			allBlank = false
			break
		}
	}

	if allBlank {
		for row := range cells {
			if rule, ok := gated[row]; ok {
				e.addConditional(acc, row, rule)
			}
		}
		acc.add(f.Name, -1, domain.IssueMissingColumn, e.render(i18n.MsgCompletelyEmpty, f.Name), "")
		return
	}

	var checks []Validator
	for _, v := range e.registry.All() {
		if v.Applies(f, e.answers) {
			checks = append(checks, v)
		}
	}

	for row, c := range cells {
		if c.IsBlank() {
			if rule, ok := gated[row]; ok {
				e.addConditional(acc, row, rule)
			} else {
				acc.add(f.Name, row, domain.IssueMissingValue, e.render(i18n.MsgMissingRequired), "")
			}
			continue
		}
		for _, v := range checks {
			res := v.Validate(f.Name, c, e.answers)
			if res.Passed {
				continue
			}
			acc.add(f.Name, row, v.Kind(), e.render(res.Message, res.Args...), c.String())
		}
	}
}

// conditionalRows returns the blank rows of field whose companion value equals
// a rule's trigger, keyed by row. The first matching rule wins.
func (e *Engine) conditionalRows(t *tabular.Table, field string, cells []tabular.Cell) map[int]profile.ConditionalRule {
	if e.profile == nil {
		return nil
	}
	rules := e.profile.RulesFor(t.Name, field)
	if len(rules) == 0 {
		return nil
	}

	gated := make(map[int]profile.ConditionalRule)
	for row, c := range cells {
		if !c.IsBlank() {
			continue
		}
		for _, r := range rules {
			if t.Cell(row, r.Companion).Trimmed() == r.Trigger {
				gated[row] = r
				break
			}
		}
	}
	return gated
}

func (e *Engine) addConditional(acc *issues, row int, r profile.ConditionalRule) {
	acc.add(r.Field, row, domain.IssueConditionalRule, e.render(i18n.MsgConditional, r.Field, r.Companion, r.Trigger), "")
}

// checkDuplicates emits a single sheet-level issue when two or more rows share
// the composite key built from the candidate identifier columns present in t.
// Fewer than two present candidates disables the check.
func (e *Engine) checkDuplicates(acc *issues, t *tabular.Table) {
	if e.profile == nil {
		return
	}
	var present []string
	for _, c := range e.profile.DuplicateCandidates {
		if t.Has(c) {
			present = append(present, c)
		}
	}
	if len(present) < 2 {
		return
	}

	seen := make(map[string]bool, t.Len())
	reported := make(map[string]bool)
	var dups []string
	parts := make([]string, len(present))
	for row := range t.Rows {
		for i, col := range present {
			parts[i] = t.Cell(row, col).Trimmed()
		}
		key := strings.Join(parts, e.profile.KeySeparator)
		if !seen[key] {
			seen[key] = true
			continue
		}
		if !reported[key] {
			reported[key] = true
			dups = append(dups, key)
		}
	}
	if len(dups) == 0 {
		return
	}

	combo := strings.Join(present, ", ")
	acc.out = append(acc.out, domain.Issue{
		Sheet:   t.Name,
		Field:   combo,
		Kind:    domain.IssueDuplicateCombination,
		Message: e.render(i18n.MsgDuplicateCombo, combo),
		Values:  dups,
	})
}

func (e *Engine) render(key i18n.Key, args ...any) string {
	return e.messages.Render(key, e.lang, args...)
}
