package services

import (
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/LovationAdmin/quote-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAge(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{-5.0, MinAge},
		{0.0, MinAge},
		{17.9, MinAge},
		{18.0, 18},
		{42.0, 42},
		{"42", 42},
		{"42.9", 42},
		{99.0, 99},
		{150.0, MaxAge},
		{"abc", DefaultAge},
		{"", DefaultAge},
		{nil, DefaultAge},
		{math.NaN(), DefaultAge},
		{math.Inf(1), MaxAge},
	}
	for _, tt := range tests {
		got := NormalizeAge(tt.in)
		assert.Equal(t, tt.want, got, "NormalizeAge(%v)", tt.in)
		assert.GreaterOrEqual(t, got, MinAge)
		assert.LessOrEqual(t, got, MaxAge)
	}
}

func TestNormalizeGender(t *testing.T) {
	for in, want := range map[any]string{
		"F":      GenderFemale,
		"female": GenderFemale,
		"W":      GenderFemale,
		"M":      GenderMale,
		"male":   GenderMale,
		"x":      GenderMale,
		"":       GenderMale,
		1.0:      GenderMale,
	} {
		assert.Equal(t, want, NormalizeGender(in), "NormalizeGender(%v)", in)
	}
	assert.Equal(t, GenderMale, NormalizeGender(nil))
}

func TestNormalizeTobacco(t *testing.T) {
	assert.True(t, NormalizeTobacco(true))
	assert.True(t, NormalizeTobacco("Yes"))
	assert.True(t, NormalizeTobacco(1.0))
	assert.False(t, NormalizeTobacco("no"))
	assert.False(t, NormalizeTobacco(0.0))
	assert.False(t, NormalizeTobacco(nil))
}

func TestNormalizeZip(t *testing.T) {
	assert.Equal(t, "75001", NormalizeZip("75001"))
	assert.Equal(t, "75001", NormalizeZip("75001-1234"))
	assert.Equal(t, "02134", NormalizeZip(" 02134 "))
	assert.Equal(t, "", NormalizeZip("1234"))
	assert.Equal(t, "", NormalizeZip(nil))
}

func TestNormalizeState(t *testing.T) {
	assert.Equal(t, "TX", NormalizeState("tx"))
	assert.Equal(t, "", NormalizeState("Texas"))
	assert.Equal(t, "", NormalizeState("T1"))
}

func TestNormalizePremiumMode(t *testing.T) {
	assert.Equal(t, "annual", NormalizePremiumMode("yearly"))
	assert.Equal(t, "semi_annual", NormalizePremiumMode("semi-annual"))
	assert.Equal(t, "quarter", NormalizePremiumMode("quarterly"))
	assert.Equal(t, DefaultPremiumMode, NormalizePremiumMode(""))
	assert.Equal(t, DefaultPremiumMode, NormalizePremiumMode(nil))
}

func TestBuildSearchParams_Defaults(t *testing.T) {
	params, err := BuildSearchParams(models.ProductMedigap, models.FormInput{
		"zip":   "75001-4444",
		"plans": []any{"g", " n ", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, models.SearchParams{
		Product: models.ProductMedigap,
		Zip:     "75001",
		Age:     DefaultAge,
		Gender:  GenderMale,
		Plans:   []string{"G", "N"},
	}, params)
}

func TestBuildSearchParams_Cancer(t *testing.T) {
	params, err := BuildSearchParams(models.ProductCancer, models.FormInput{
		"state":           "fl",
		"age":             "150",
		"gender":          "female",
		"tobacco":         "yes",
		"familyType":      "individual",
		"carcinomaInSitu": 1.0,
		"benefitAmount":   "10000",
	})
	require.NoError(t, err)

	assert.Equal(t, "FL", params.State)
	assert.Equal(t, MaxAge, params.Age)
	assert.Equal(t, GenderFemale, params.Gender)
	assert.True(t, params.Tobacco)
	assert.Equal(t, 10000, params.BenefitAmount)
	assert.Equal(t, 1, params.CarcinomaInSitu)
	assert.Equal(t, DefaultPremiumMode, params.PremiumMode)
}

func TestBuildSearchParams_FinalExpenseRateAlternative(t *testing.T) {
	params, err := BuildSearchParams(models.ProductFinalExpense, models.FormInput{
		"zip":              "30301",
		"desiredRate":      "49.999",
		"underwritingType": "Guaranteed",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, params.DesiredFaceValue)
	assert.Equal(t, 50.0, params.DesiredRate)
	assert.Equal(t, "Guaranteed", params.UnderwritingType)
}

func TestBuildSearchParams_MissingFields(t *testing.T) {
	_, err := BuildSearchParams(models.ProductDental, models.FormInput{"zip": "123", "coveredMembers": "  "})

	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, models.ProductDental, missing.Product)
	assert.Equal(t, []models.FormField{models.FieldZip, models.FieldCoveredMembers}, missing.Fields)
	assert.Contains(t, err.Error(), "zip, coveredMembers")
}

func TestBuildSearchParams_UnknownProduct(t *testing.T) {
	_, err := BuildSearchParams("pet", models.FormInput{})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestQueryValues(t *testing.T) {
	tests := []struct {
		name   string
		params models.SearchParams
		want   url.Values
	}{
		{
			name: "medigap repeats plans",
			params: models.SearchParams{
				Product: models.ProductMedigap, Zip: "75001", Age: 65, Gender: "F", Tobacco: true,
				Plans: []string{"G", "N"},
			},
			want: url.Values{
				"zip5": {"75001"}, "age": {"65"}, "gender": {"F"}, "tobacco": {"1"},
				"plan": {"G", "N"},
			},
		},
		{
			name:   "medicare advantage sends location only",
			params: models.SearchParams{Product: models.ProductMedicareAdvantage, Zip: "75001", Age: 70, Gender: "M"},
			want:   url.Values{"zip5": {"75001"}},
		},
		{
			name: "final expense",
			params: models.SearchParams{
				Product: models.ProductFinalExpense, Zip: "30301", Age: 70, Gender: "M",
				DesiredFaceValue: 10000, UnderwritingType: "Level",
			},
			want: url.Values{
				"zip5": {"30301"}, "age": {"70"}, "gender": {"M"}, "tobacco": {"0"},
				"desired_face_value": {"10000"}, "underwriting_type": {"Level"},
			},
		},
		{
			name: "cancer",
			params: models.SearchParams{
				Product: models.ProductCancer, State: "FL", Age: 50, Gender: "F",
				BenefitAmount: 10000, FamilyType: "individual", PremiumMode: "month",
			},
			want: url.Values{
				"state": {"FL"}, "age": {"50"}, "gender": {"F"}, "tobacco": {"0"},
				"benefit_amount": {"10000"}, "family_type": {"individual"},
				"carcinoma_in_situ": {"0"}, "premium_mode": {"month"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QueryValues(tt.params))
		})
	}
}
