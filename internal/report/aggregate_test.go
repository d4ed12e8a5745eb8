package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveydq/internal/domain"
	"surveydq/internal/i18n"
	"surveydq/internal/report"
)

func row(i int) *int { return &i }

func TestAggregate_EmptyInput(t *testing.T) {
	groups := report.Aggregate(nil, i18n.Default(), domain.LanguageEN)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestAggregate_CountsAndFirstExample(t *testing.T) {
	var issues []domain.Issue
	for i, v := range []string{"a", "b", "c", "d", "e"} {
		issues = append(issues, domain.Issue{
			Sheet: "P", Field: "Gender", Row: row(i), Kind: domain.IssueInvalidValue,
			Message: "'" + v + "' not in allowed values", Value: v,
		})
	}

	groups := report.Aggregate(issues, i18n.Default(), domain.LanguageEN)

	require.Len(t, groups, 1)
	assert.Equal(t, 5, groups[0].Count)
	assert.Equal(t, "'a' not in allowed values", groups[0].Example)
	assert.Equal(t, domain.IssueInvalidValue, groups[0].Kind)
}

func TestAggregate_GroupsBySheetFieldKindInFirstSeenOrder(t *testing.T) {
	issues := []domain.Issue{
		{Sheet: "D", Field: "Age", Row: row(0), Kind: domain.IssueTypeMismatch, Message: "m1"},
		{Sheet: "P", Field: "Age", Row: row(0), Kind: domain.IssueTypeMismatch, Message: "m2"},
		{Sheet: "D", Field: "Age", Row: row(1), Kind: domain.IssueMissingValue, Message: "m3"},
		{Sheet: "D", Field: "Age", Row: row(2), Kind: domain.IssueTypeMismatch, Message: "m4"},
	}

	groups := report.Aggregate(issues, i18n.Default(), domain.LanguageEN)

	require.Len(t, groups, 3)
	assert.Equal(t, domain.IssueGroup{Sheet: "D", Field: "Age", Kind: domain.IssueTypeMismatch, Count: 2, Example: "m1"}, groups[0])
	assert.Equal(t, "P", groups[1].Sheet)
	assert.Equal(t, domain.IssueMissingValue, groups[2].Kind)
}

func TestAggregate_DuplicateExampleListsDistinctSortedIDs(t *testing.T) {
	dup := func(ids ...string) domain.Issue {
		return domain.Issue{Sheet: "E_Chd", Field: "ChldID, FarmerID", Kind: domain.IssueDuplicateCombination,
			Message: "Duplicate entries found based on combination of: ChldID, FarmerID", Values: ids}
	}
	issues := []domain.Issue{dup("A1"), dup("A2"), dup("A1")}

	groups := report.Aggregate(issues, i18n.Default(), domain.LanguageEN)

	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].Count)
	assert.Equal(t, "Duplicate IDs found: A1, A2", groups[0].Example)

	fr := report.Aggregate(issues, i18n.Default(), domain.LanguageFR)
	assert.Equal(t, "Identifiants en double : A1, A2", fr[0].Example)
}

func TestAggregate_MissingColumnSentinel(t *testing.T) {
	issues := []domain.Issue{
		{Sheet: "P", Field: "Region", Kind: domain.IssueMissingColumn, Message: "empty"},
		{Sheet: "P", Field: "Age", Row: row(3), Kind: domain.IssueMissingValue, Message: "missing"},
	}

	groups := report.Aggregate(issues, i18n.Default(), domain.LanguageEN)

	require.Len(t, groups, 2)
	assert.Equal(t, report.MissingColumnCount, groups[0].Count)
	assert.Equal(t, 1, groups[1].Count)
}

func TestBySheet(t *testing.T) {
	groups := []domain.IssueGroup{
		{Sheet: "D", Field: "a"},
		{Sheet: "P", Field: "b"},
		{Sheet: "D", Field: "c"},
	}

	out := report.BySheet(groups)

	require.Len(t, out, 2)
	assert.Equal(t, "D", out[0].Sheet)
	assert.Len(t, out[0].Groups, 2)
	assert.Equal(t, "P", out[1].Sheet)
}

func TestSummaryLine(t *testing.T) {
	g := domain.IssueGroup{Sheet: "P", Field: "Gender", Kind: domain.IssueInvalidValue, Count: 4, Example: "'x' not in allowed values"}
	assert.Equal(t, "[Invalid Value] Gender: 'x' not in allowed values (Total: 4)", report.SummaryLine(g))
}
