// Package report collapses raw issues into review groups and renders them for
// reviewers as an xlsx workbook or a CSV listing.
package report

import (
	"fmt"
	"slices"
	"strings"

	"surveydq/internal/domain"
	"surveydq/internal/i18n"
)

// MissingColumnCount is the count reported for whole-column gaps so they are
// never mistaken for a handful of missing cells.
const MissingColumnCount = 999_999

type groupKey struct {
	sheet string
	field string
	kind  domain.IssueKind
}

// Aggregate groups issues by (sheet, field, kind) in first-seen order.
// The example of a group is its first message, except for duplicate
// combinations whose example lists every distinct offending key, sorted.
// An empty input yields an empty, non-nil result.
func Aggregate(issues []domain.Issue, messages i18n.Catalog, lang domain.Language) []domain.IssueGroup {
	groups := make([]domain.IssueGroup, 0)
	index := make(map[groupKey]int)
	dupIDs := make(map[groupKey][]string)

	for _, iss := range issues {
		k := groupKey{sheet: iss.Sheet, field: iss.Field, kind: iss.Kind}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, domain.IssueGroup{
				Sheet:   iss.Sheet,
				Field:   iss.Field,
				Kind:    iss.Kind,
				Example: iss.Message,
			})
		}
		groups[i].Count++
		if iss.Kind == domain.IssueDuplicateCombination {
			dupIDs[k] = append(dupIDs[k], iss.Values...)
		}
	}

	for k, ids := range dupIDs {
		slices.Sort(ids)
		ids = slices.Compact(ids)
		groups[index[k]].Example = messages.Render(i18n.MsgDuplicateIDs, lang, strings.Join(ids, ", "))
	}
	for i := range groups {
		if groups[i].Kind == domain.IssueMissingColumn {
			groups[i].Count = MissingColumnCount
		}
	}
	return groups
}

// SheetGroups is the set of groups belonging to one sheet.
type SheetGroups struct {
	Sheet  string              `json:"sheet"`
	Groups []domain.IssueGroup `json:"groups"`
}

// BySheet partitions groups per sheet, keeping sheets and groups in input order.
func BySheet(groups []domain.IssueGroup) []SheetGroups {
	var out []SheetGroups
	index := make(map[string]int)
	for _, g := range groups {
		i, ok := index[g.Sheet]
		if !ok {
			i = len(out)
			index[g.Sheet] = i
			out = append(out, SheetGroups{Sheet: g.Sheet})
		}
		out[i].Groups = append(out[i].Groups, g)
	}
	return out
}

// SummaryLine renders a group as "[kind] field: example (Total: n)".
func SummaryLine(g domain.IssueGroup) string {
	return fmt.Sprintf("[%s] %s: %s (Total: %d)", g.Kind.Label(), g.Field, g.Example, g.Count)
}
