// Package i18n holds the localized message templates attached to issues.
// Language only selects the template; it never changes validation logic.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"surveydq/internal/domain"
)

// Key identifies a message template.
type Key string

const (
	MsgEmptySheet      Key = "empty_sheet"
	MsgCompletelyEmpty Key = "completely_empty"
	MsgMissingRequired Key = "missing_required"
	MsgExpectedDate    Key = "expected_date"
	MsgExpectedNumeric Key = "expected_numeric"
	MsgInvalidValue    Key = "invalid_value"
	MsgAlphaNumeric    Key = "alpha_numeric" // reserved: no rule emits it yet
	MsgDuplicateCombo  Key = "duplicate_combo"
	MsgConditional     Key = "conditional"
	MsgDuplicateIDs    Key = "duplicate_ids"
	MsgReportTitle     Key = "report_title"
	MsgNoIssues        Key = "no_issues"
)

// Catalog maps a template key to its text per language. Templates use
// explicit-index fmt verbs so translations may reorder arguments.
type Catalog map[Key]map[domain.Language]string

// Default returns the built-in English/French catalog.
func Default() Catalog {
	return Catalog{
		MsgEmptySheet: {
			domain.LanguageEN: "Sheet is present but contains no data",
			domain.LanguageFR: "La feuille est présente mais ne contient aucune donnée",
		},
		MsgCompletelyEmpty: {
			domain.LanguageEN: `The variable "%[1]s" is completely empty.`,
			domain.LanguageFR: `La variable "%[1]s" est complètement vide.`,
		},
		MsgMissingRequired: {
			domain.LanguageEN: "Field is required but missing",
			domain.LanguageFR: "Champ requis mais manquant",
		},
		MsgExpectedDate: {
			domain.LanguageEN: "Expected format is DD-MM-YYYY",
			domain.LanguageFR: "Format attendu : JJ-MM-AAAA",
		},
		MsgExpectedNumeric: {
			domain.LanguageEN: "Expected a numeric value",
			domain.LanguageFR: "Une valeur numérique était attendue",
		},
		MsgInvalidValue: {
			domain.LanguageEN: "'%[1]s' not in allowed values",
			domain.LanguageFR: "'%[1]s' ne fait pas partie des valeurs autorisées",
		},
		MsgAlphaNumeric: {
			domain.LanguageEN: "Value must be alphanumeric, not digits only",
			domain.LanguageFR: "La valeur doit être alphanumérique, pas uniquement des chiffres",
		},
		MsgDuplicateCombo: {
			domain.LanguageEN: "Duplicate entries found based on combination of: %[1]s",
			domain.LanguageFR: "Doublons détectés selon la combinaison : %[1]s",
		},
		MsgConditional: {
			domain.LanguageEN: "%[2]s is %[3]s, %[1]s must have a value",
			domain.LanguageFR: "%[2]s est %[3]s, %[1]s doit contenir une valeur",
		},
		MsgDuplicateIDs: {
			domain.LanguageEN: "Duplicate IDs found: %[1]s",
			domain.LanguageFR: "Identifiants en double : %[1]s",
		},
		MsgReportTitle: {
			domain.LanguageEN: "Data Quality Report",
			domain.LanguageFR: "Rapport de qualité des données",
		},
		MsgNoIssues: {
			domain.LanguageEN: "No validation issues found!",
			domain.LanguageFR: "Aucun problème de validation trouvé !",
		},
	}
}

// Render formats the template for key in lang, falling back to English.
func (c Catalog) Render(key Key, lang domain.Language, args ...any) string {
	tmpls, ok := c[key]
	if !ok {
		return string(key)
	}
	tmpl, ok := tmpls[lang]
	if !ok {
		tmpl = tmpls[domain.LanguageEN]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.French})

// ParseLanguage accepts "EN", "fr", "fr-CI", "en_GB" and similar, and returns the
// display language it selects.
func ParseLanguage(s string) (domain.Language, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case string(domain.LanguageEN):
		return domain.LanguageEN, nil
	case string(domain.LanguageFR):
		return domain.LanguageFR, nil
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: unknown language %q", domain.ErrInvalidRunParams, s)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", fmt.Errorf("%w: unsupported language %q", domain.ErrInvalidRunParams, s)
	}
	if idx == 1 {
		return domain.LanguageFR, nil
	}
	return domain.LanguageEN, nil
}
