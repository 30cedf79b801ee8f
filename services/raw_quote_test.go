package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawRecordLookup(t *testing.T) {
	r := rawRecord{
		"company_base": map[string]any{"name": "Aetna"},
		"planName":     "Gold",
		"empty":        nil,
		"monthly_rate": "$1,234.50",
		"included":     "yes",
	}

	assert.Equal(t, "Aetna", r.str("company_base.name"))
	assert.Equal(t, "Gold", r.str("plan_name"), "camelCase fallback")
	assert.Equal(t, "", r.str("empty", "missing"))
	assert.Equal(t, "Gold", r.str("missing", "plan_name"), "first alias that resolves wins")
	assert.Equal(t, 1234.5, r.num("monthly_rate"))
	assert.True(t, r.boolean("included"))
	_, ok := r.lookup("company_base.name.deeper")
	assert.False(t, ok)

	var nilRecord rawRecord
	assert.Equal(t, "", nilRecord.str("anything"))
	assert.Nil(t, nilRecord.records("list"))
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{25.5, 25.5, true},
		{7, 7, true},
		{"1000", 1000, true},
		{"$2,000", 2000, true},
		{"20%", 20, true},
		{"  ", 0, false},
		{"n/a", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-Infinity", 0, false},
		{json.Number("NaN"), 0, false},
	}
	for _, tt := range tests {
		got, ok := toFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestMonthlyPremium(t *testing.T) {
	tests := []struct {
		name string
		r    rawRecord
		want float64
	}{
		{"monthly dollars", rawRecord{"monthly_premium": 31.2}, 31.2},
		{"rate object in cents", rawRecord{"rate": map[string]any{"month": 10523.0}}, 105.23},
		{"rate object annual cents", rawRecord{"rate": map[string]any{"annual": 120000.0}}, 100},
		{"month_rate cents", rawRecord{"monthRate": 999.0}, 9.99},
		{"quarterly premium", rawRecord{"premium": 90.0, "premium_mode": "quarterly"}, 30},
		{"semi annual premium", rawRecord{"premium": 100.0, "mode": "semi_annual"}, 16.67},
		{"plain premium", rawRecord{"premium": "45"}, 45},
		{"absent", rawRecord{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, monthlyPremium(tt.r))
		})
	}
}

func TestCamelCase(t *testing.T) {
	assert.Equal(t, "companyBase", camelCase("company_base"))
	assert.Equal(t, "ambestRating", camelCase("ambest_rating"))
	assert.Equal(t, "name", camelCase("name"))
	assert.Equal(t, "semiAnnual", camelCase("semi__annual"))
}

func TestExtractCompany(t *testing.T) {
	info := extractCompany(rawRecord{"carrier_name": "Acme", "am_best_rating": "A"})
	assert.Equal(t, companyInfo{Name: "Acme", FullName: "Acme", AMBest: "A"}, info)
}
