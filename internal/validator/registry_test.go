package validator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"surveydq/internal/catalog"
	"surveydq/internal/domain"
	"surveydq/internal/tabular"
	"surveydq/internal/validator"
)

func TestRegistry_OrderAndReplace(t *testing.T) {
	r := validator.NewRegistry()
	r.Register(validator.MembershipValidator())
	r.Register(validator.DateValidator())
	r.Register(validator.MembershipValidator())

	all := r.All()
	assert.Len(t, all, 2)
	assert.Equal(t, "catalog.membership", all[0].RuleKey())
	assert.Equal(t, "type.date", all[1].RuleKey())
	assert.NotNil(t, r.Get("type.date"))
	assert.Nil(t, r.Get("missing"))
}

func TestDefaultRegistry(t *testing.T) {
	var got []domain.IssueKind
	for _, v := range validator.DefaultRegistry().All() {
		got = append(got, v.Kind())
	}
	assert.Equal(t, []domain.IssueKind{
		domain.IssueDateFormat, domain.IssueTypeMismatch, domain.IssueInvalidValue,
	}, got)
}

func TestApplies(t *testing.T) {
	a := catalog.NewAnswers([]string{"Consent"}, map[string][]string{"Consent": {"Yes"}})

	assert.True(t, validator.DateValidator().Applies(domain.FieldSpec{Name: "D", Type: domain.FieldDate}, a))
	assert.False(t, validator.DateValidator().Applies(domain.FieldSpec{Name: "D", Type: domain.FieldText}, a))
	assert.True(t, validator.NumericValidator().Applies(domain.FieldSpec{Name: "N", Type: domain.FieldNumeric}, a))
	assert.True(t, validator.MembershipValidator().Applies(domain.FieldSpec{Name: "Consent"}, a))
	assert.False(t, validator.MembershipValidator().Applies(domain.FieldSpec{Name: "Other"}, a))
	assert.False(t, validator.MembershipValidator().Applies(domain.FieldSpec{Name: "Consent"}, nil))
}

func TestIsDate(t *testing.T) {
	assert.True(t, validator.IsDate(tabular.TextCell("15-03-2024")))
	assert.True(t, validator.IsDate(tabular.TextCell(" 01-12-2023 ")))
	assert.True(t, validator.IsDate(tabular.TextCell("5-3-2024")))
	assert.True(t, validator.IsDate(tabular.TextCell("15-3-2024")))
	assert.False(t, validator.IsDate(tabular.TextCell("31-2-2024")))
	assert.True(t, validator.IsDate(tabular.DateCell(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))))
	assert.False(t, validator.IsDate(tabular.TextCell("31-02-2024")))
	assert.False(t, validator.IsDate(tabular.TextCell("15/03/2024")))
	assert.False(t, validator.IsDate(tabular.NumberCell(45366)))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, validator.IsNumeric(tabular.TextCell("5")))
	assert.True(t, validator.IsNumeric(tabular.TextCell("-1.25")))
	assert.True(t, validator.IsNumeric(tabular.NumberCell(3)))
	assert.False(t, validator.IsNumeric(tabular.TextCell("5 kg")))
	assert.False(t, validator.IsNumeric(tabular.DateCell(time.Now())))
}
