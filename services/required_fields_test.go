package services

import (
	"testing"

	"github.com/LovationAdmin/quote-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredFields(t *testing.T) {
	assert.Empty(t, RequiredFields(nil))

	assert.Equal(t, []models.FormField{models.FieldZip}, RequiredFields([]models.ProductLine{models.ProductMedicareAdvantage}))

	got := RequiredFields([]models.ProductLine{models.ProductDental, models.ProductCancer})
	assert.Equal(t, []models.FormField{
		models.FieldZip,
		models.FieldState,
		models.FieldGender,
		models.FieldAge,
		models.FieldTobacco,
		models.FieldBenefitAmount,
		models.FieldFamilyType,
		models.FieldCarcinomaInSitu,
		models.FieldPremiumMode,
		models.FieldCoveredMembers,
	}, got)

	reversed := RequiredFields([]models.ProductLine{models.ProductCancer, models.ProductDental})
	assert.Equal(t, got, reversed, "selection order does not matter")
}

func TestRequiredFields_EveryProductHasRules(t *testing.T) {
	for _, p := range models.ProductLines {
		assert.NotEmpty(t, RequiredFields([]models.ProductLine{p}), p)
	}
}

func TestMissingFields(t *testing.T) {
	assert.Equal(t,
		[]models.FormField{models.FieldZip, models.FieldDesiredFaceValue, models.FieldUnderwritingType},
		MissingFields(models.ProductFinalExpense, models.FormInput{}))

	assert.Equal(t,
		[]models.FormField{models.FieldUnderwritingType},
		MissingFields(models.ProductFinalExpense, models.FormInput{"zip": "30301", "desiredRate": 40.0}))

	assert.Empty(t, MissingFields(models.ProductMedicareAdvantage, models.FormInput{"zip": "30301"}))
}

func TestParseFieldRules(t *testing.T) {
	rules, err := ParseFieldRules([]byte(`
defaults: [age]
products:
  dental:
    required: [zip, age]
`))
	require.NoError(t, err)
	assert.Equal(t, []models.FormField{models.FieldZip}, rules.MissingFields(models.ProductDental, models.FormInput{}))

	_, err = ParseFieldRules([]byte("products:\n  pet:\n    required: [zip]\n"))
	assert.ErrorContains(t, err, "unknown product")

	_, err = ParseFieldRules([]byte("products:\n  dental:\n    required: [shoeSize]\n"))
	assert.ErrorContains(t, err, "unknown field")

	_, err = ParseFieldRules([]byte("products: ["))
	assert.Error(t, err)
}
