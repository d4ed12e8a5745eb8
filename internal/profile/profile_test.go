package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveydq/internal/domain"
	"surveydq/internal/profile"
)

func TestDefault_IsValid(t *testing.T) {
	p := profile.Default()
	require.NoError(t, p.Validate())
	assert.True(t, p.SupportsCountry(domain.CountryGhana))
	assert.True(t, p.SupportsCountry(domain.CountryIvoryCoast))
	assert.False(t, p.SupportsCountry("KEN"))
	assert.True(t, p.SupportsLanguage(domain.LanguageFR))
}

func TestRulesFor(t *testing.T) {
	p := profile.Default()

	rules := p.RulesFor("D", "ReNoAvble")
	require.Len(t, rules, 1)
	assert.Equal(t, "ChldAvble", rules[0].Companion)
	assert.Equal(t, "0", rules[0].Trigger)

	assert.Empty(t, p.RulesFor("P", "ReNoAvble"))
}

func TestParse_OverlaysDefault(t *testing.T) {
	p, err := profile.Parse([]byte(`
name: pilot
sheets: [P, D]
duplicate_candidates: [FarmerID, VisitType]
conditional_rules:
  - sheet: P
    field: Reason
    companion: Present
    trigger: "no"
`))
	require.NoError(t, err)

	assert.Equal(t, "pilot", p.Name)
	assert.Equal(t, []string{"P", "D"}, p.Sheets)
	assert.Equal(t, []string{"FarmerID", "VisitType"}, p.DuplicateCandidates)
	require.Len(t, p.ConditionalRules, 1)
	// Untouched keys keep their defaults.
	assert.Equal(t, "description", p.SchemaSheet)
	assert.Equal(t, "|", p.KeySeparator)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed yaml", yaml: "sheets: [P"},
		{name: "no sheets", yaml: "sheets: []"},
		{name: "duplicate sheets", yaml: "sheets: [P, P]"},
		{name: "unknown language", yaml: "languages: [EN, DE]"},
		{name: "rule companion equals field", yaml: "conditional_rules: [{sheet: P, field: A, companion: A, trigger: '0'}]"},
		{name: "field in both strategies", yaml: "row_only_fields: [VisitType]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := profile.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, domain.ErrProfile)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\n"), 0o600))

	p, err := profile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", p.Name)

	_, err = profile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
