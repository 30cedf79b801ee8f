package services

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/LovationAdmin/quote-api/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	body, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return body
}

func rawQuote(t *testing.T, js string) models.RawQuote {
	t.Helper()
	var raw models.RawQuote
	require.NoError(t, json.Unmarshal([]byte(js), &raw))
	return raw
}

func TestOptimizeResponse_DentalScenario(t *testing.T) {
	body := loadFixture(t, "dental_quotes.json")

	optimized, err := OptimizeResponse(models.ProductDental, body)
	require.NoError(t, err)
	require.Len(t, optimized.Quotes, 3)

	groups := GroupQuotesByPlan(optimized.Quotes)
	assert.Equal(t, []string{"PPO Choice", "Basic Dental"}, groups.Keys)
	assert.Len(t, groups.Groups["PPO Choice"], 2)
	assert.Len(t, groups.Groups["Basic Dental"], 1)

	sorted := SortQuotesByPremium(optimized.Quotes)
	premiums := make([]float64, len(sorted))
	for i, q := range sorted {
		premiums[i] = q.MonthlyPremium
	}
	assert.Equal(t, []float64{15, 25, 35}, premiums)

	assert.Equal(t, []float64{500, 1000, 2000}, DistinctAnnualMaximums(optimized.Quotes))

	stats := optimized.Stats
	assert.Equal(t, 3, stats.OriginalCount)
	assert.Equal(t, 3, stats.OptimizedCount)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, len(body), stats.OriginalBytes)
	assert.Positive(t, stats.OptimizedBytes)
}

func TestExtractDentalQuote(t *testing.T) {
	body := loadFixture(t, "dental_quotes.json")
	raws, err := DecodeRawQuotes(body)
	require.NoError(t, err)

	q, err := ExtractDentalQuote(raws[0])
	require.NoError(t, err)

	want := models.NormalizedQuote{
		ID:              "a-ppo-1000",
		Product:         models.ProductDental,
		CompanyName:     "Company A",
		CompanyFullName: "Company A Life Insurance Company",
		PlanName:        "PPO Choice",
		PlanType:        "PPO",
		MonthlyPremium:  25,
		AnnualMaximum:   1000,
		AmbestRating:    "A+",
		AmbestOutlook:   "Stable",
		StarRating:      4.5,
		State:           "TX",
		Discounts:       []string{"Household"},
		Benefits: []models.UnifiedBenefit{
			{
				Name:           "PPO Choice",
				Type:           models.BenefitMain,
				Included:       true,
				IsMainBenefit:  true,
				BenefitOptions: []models.BenefitOption{{Amount: "1000", Rate: 25, Quantifier: "Annual Maximum"}},
				Notes:          "Preventive covered at 100%",
			},
			{
				Name:           "Vision",
				Type:           models.BenefitRider,
				BenefitOptions: []models.BenefitOption{{Amount: "150", Rate: 4.5}},
			},
		},
		PlanBenefits: []models.PlanBenefit{},
		BenefitNotes: "No waiting period on preventive",
	}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("ExtractDentalQuote mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractDentalQuote_FallsBackToFirstBasePlan(t *testing.T) {
	raw := rawQuote(t, `{
		"company_base": {"name": "Delta"},
		"base_plans": [
			{"name": "Low", "included": false, "benefits": [{"amount": "750", "rate": 19.5}]},
			{"name": "High", "included": false, "benefits": [{"amount": "1500", "rate": 29.5}]}
		]
	}`)

	q, err := ExtractDentalQuote(raw)
	require.NoError(t, err)
	assert.Equal(t, "Low", q.PlanName)
	assert.Equal(t, 19.5, q.MonthlyPremium)
	assert.Equal(t, 750.0, q.AnnualMaximum)
	assert.NotEmpty(t, q.ID, "missing key gets a derived ID")

	again, err := ExtractDentalQuote(raw)
	require.NoError(t, err)
	assert.Equal(t, q.ID, again.ID, "derived IDs are deterministic")
}

func TestExtractDentalQuote_NoBenefit(t *testing.T) {
	for name, js := range map[string]string{
		"no base plans":     `{"key": "x1", "company_base": {"name": "Delta"}, "riders": [{"name": "Vision"}]}`,
		"base plan no rate": `{"key": "x2", "company_base": {"name": "Delta"}, "base_plans": [{"name": "Empty", "benefits": []}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractDentalQuote(rawQuote(t, js))
			var noBenefit *NoBenefitFoundError
			require.True(t, errors.As(err, &noBenefit))
			assert.Equal(t, models.ProductDental, noBenefit.Product)
			assert.Equal(t, "Delta", noBenefit.Company)
		})
	}
}

func TestOptimizeQuotes_SkipsUnpricedDental(t *testing.T) {
	raws := []models.RawQuote{
		rawQuote(t, `{"key": "ok", "base_plans": [{"name": "P", "included": true, "benefits": [{"amount": "1000", "rate": 20}]}]}`),
		rawQuote(t, `{"key": "bad"}`),
	}

	optimized, err := OptimizeQuotes(models.ProductDental, raws)
	require.NoError(t, err)
	require.Len(t, optimized.Quotes, 1)
	assert.Equal(t, "ok", optimized.Quotes[0].ID)
	assert.Equal(t, 2, optimized.Stats.OriginalCount)
	assert.Equal(t, 1, optimized.Stats.OptimizedCount)
	assert.Equal(t, 1, optimized.Stats.Skipped)
}

func TestOptimizeQuotes_UnknownProduct(t *testing.T) {
	_, err := OptimizeQuotes("pet", nil)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = ExtractQuote("pet", models.RawQuote{})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestExtractHospitalIndemnityQuote(t *testing.T) {
	raw := rawQuote(t, `{
		"key": "hi-1",
		"company_base": {"name": "Aflac", "ambest_rating": "A+"},
		"base_plans": [{"name": "Hospital Confinement", "included": true,
			"benefits": [{"amount": "$250", "rate": 18.75, "quantifier": "per day"}]}],
		"riders": [{"name": "Ambulance", "benefits": [{"amount": "200", "rate": 1.25}]}]
	}`)

	q, err := ExtractHospitalIndemnityQuote(raw)
	require.NoError(t, err)
	assert.Equal(t, "Hospital Confinement", q.PlanName)
	assert.Equal(t, 18.75, q.MonthlyPremium)
	assert.Equal(t, 250.0, q.BenefitAmount)
	assert.Len(t, q.Benefits, 2)
	assert.Equal(t, models.BenefitRider, q.Benefits[1].Type)
}

func TestExtractHospitalIndemnityQuote_NoMainBenefitDefaultsToZero(t *testing.T) {
	q, err := ExtractHospitalIndemnityQuote(rawQuote(t, `{"key": "hi-2", "plan_name": "Bare"}`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.MonthlyPremium)
	assert.Equal(t, "Bare", q.PlanName)
	assert.Empty(t, q.Benefits)
	assert.NotNil(t, q.Benefits)
	assert.NotNil(t, q.Discounts)
}

func TestExtractFinalExpenseQuote(t *testing.T) {
	q, err := ExtractFinalExpenseQuote(rawQuote(t, `{
		"key": "fe-1",
		"company_base": {"name": "Mutual of Omaha", "ambest_rating": "A+"},
		"plan_name": "Living Promise",
		"face_value": "10,000",
		"monthly_rate": 42.1,
		"underwriting_type": "Level"
	}`))
	require.NoError(t, err)
	assert.Equal(t, 42.1, q.MonthlyPremium)
	assert.Equal(t, 10000.0, q.FaceValue)
	assert.Equal(t, "Level", q.UnderwritingType)
	assert.Equal(t, 4.5, q.StarRating)
}

func TestOptimizeResponse_NonFinitePremiumDefaultsToZero(t *testing.T) {
	body := []byte(`[
		{"key": "fe-nan", "plan_name": "Broken", "monthly_rate": "NaN", "face_value": "Infinity"},
		{"key": "fe-ok", "plan_name": "Living Promise", "monthly_rate": 10}
	]`)

	optimized, err := OptimizeResponse(models.ProductFinalExpense, body)
	require.NoError(t, err)
	require.Len(t, optimized.Quotes, 2)

	assert.Equal(t, 0.0, optimized.Quotes[0].MonthlyPremium)
	assert.Equal(t, 0.0, optimized.Quotes[0].FaceValue)
	assert.Equal(t, 10.0, optimized.Quotes[1].MonthlyPremium)
	assert.Positive(t, optimized.Stats.OptimizedBytes)
}

func TestExtractCancerQuote_AnnualPremium(t *testing.T) {
	q, err := ExtractCancerQuote(rawQuote(t, `{
		"key": "c-1",
		"company_name": "Cigna",
		"plan_name": "Cancer Treatment",
		"premium": 300,
		"premium_mode": "annual",
		"benefit_amount": 25000,
		"family_type": "individual"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Cigna", q.CompanyName)
	assert.Equal(t, "Cigna", q.CompanyFullName)
	assert.Equal(t, 25.0, q.MonthlyPremium)
	assert.Equal(t, 25000.0, q.BenefitAmount)
	assert.Equal(t, "individual", q.PlanType)
}

func TestExtractMedigapQuote(t *testing.T) {
	q, err := ExtractMedigapQuote(rawQuote(t, `{
		"key": "ms-1",
		"plan": "g",
		"rate": {"month": 12345},
		"company_base": {"name": "Humana", "ambest_rating": "A-"},
		"location_base": {"state": "FL"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Plan G", q.PlanName)
	assert.Equal(t, "G", q.PlanType)
	assert.Equal(t, 123.45, q.MonthlyPremium)
	assert.Equal(t, "FL", q.State)
	assert.Equal(t, 4.0, q.StarRating)
}

func TestExtractMedicareAdvantageQuote(t *testing.T) {
	q, err := ExtractMedicareAdvantageQuote(rawQuote(t, `{
		"key": "ma-1",
		"plan_name": "Humana Gold Plus (HMO)",
		"plan_type": "HMO",
		"monthly_premium": "0",
		"annual_deductible": "$250",
		"overall_star_rating": 4.5,
		"organization_name": "Humana",
		"benefits": [
			{"benefit_type": "Dental", "full_description": "<b>In-Network:</b> $0 copay",
			 "summary_description": {"in_network": "$0 copay", "out_network": ""}},
			{"benefit_type": "Hearing", "full_description": "Not covered"},
			{"benefit_type": "Vision", "full_description": "Contact plan for details"}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Humana", q.CompanyName)
	assert.Equal(t, 0.0, q.MonthlyPremium)
	assert.Equal(t, 250.0, q.Deductible)
	assert.Equal(t, 4.5, q.StarRating)
	require.Len(t, q.PlanBenefits, 3)
	assert.Equal(t, models.PlanBenefit{
		BenefitType: "Dental",
		Description: "In-Network: $0 copay",
		InNetwork:   "$0 copay",
		Status:      models.CoverageCovered,
	}, q.PlanBenefits[0])
	assert.Equal(t, models.CoverageNotCovered, FindBenefitStatus(q.PlanBenefits, "Hearing"))
	assert.Equal(t, models.CoverageUnclear, FindBenefitStatus(q.PlanBenefits, "Vision"))
	assert.Equal(t, models.CoverageNotFound, FindBenefitStatus(q.PlanBenefits, "Fitness"))
}

func TestExtractMedicareAdvantageQuote_EmptySummaryMatchesClassifier(t *testing.T) {
	q, err := ExtractMedicareAdvantageQuote(rawQuote(t, `{
		"key": "ma-2",
		"plan_name": "Basic (HMO)",
		"benefits": [
			{"benefit_type": "Hearing", "full_description": "Not covered", "summary_description": {}}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, q.PlanBenefits, 1)

	var desc BenefitDescription
	require.NoError(t, json.Unmarshal([]byte(`{"full_description":"Not covered","summary_description":{}}`), &desc))
	assert.Equal(t, ClassifyBenefitStatus(desc), q.PlanBenefits[0].Status)
	assert.Equal(t, models.CoverageCovered, q.PlanBenefits[0].Status)
	assert.Empty(t, q.PlanBenefits[0].InNetwork)
}

func TestExtractors_ToleratePartialRecords(t *testing.T) {
	for _, product := range []models.ProductLine{
		models.ProductHospitalIndemnity,
		models.ProductFinalExpense,
		models.ProductCancer,
		models.ProductMedicareAdvantage,
		models.ProductMedigap,
	} {
		t.Run(string(product), func(t *testing.T) {
			for _, raw := range []models.RawQuote{nil, {}, {"company_base": "oops", "benefits": 3, "rate": "n/a"}} {
				q, err := ExtractQuote(product, raw)
				require.NoError(t, err)
				assert.Equal(t, product, q.Product)
				assert.NotEmpty(t, q.ID)
				assert.NotNil(t, q.Benefits)
				assert.NotNil(t, q.PlanBenefits)
				assert.NotNil(t, q.Discounts)
			}
		})
	}
}

func TestDecodeRawQuotes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"key": "a"}, {"key": "b"}]`, 2},
		{"quotes wrapper", `{"quotes": [{"key": "a"}]}`, 1},
		{"plans wrapper", `{"plans": [{"key": "a"}, {"key": "b"}, {"key": "c"}]}`, 3},
		{"null", `null`, 0},
		{"unknown wrapper", `{"data": []}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws, err := DecodeRawQuotes([]byte(tt.body))
			require.NoError(t, err)
			assert.NotNil(t, raws)
			assert.Len(t, raws, tt.want)
		})
	}

	_, err := DecodeRawQuotes([]byte(`not json`))
	assert.Error(t, err)
}

func TestCompressionRatio(t *testing.T) {
	assert.Equal(t, 75.0, compressionRatio(1000, 250))
	assert.Equal(t, 33.3, compressionRatio(3, 2))
	assert.Equal(t, 0.0, compressionRatio(0, 10))
}
