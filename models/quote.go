package models

import "time"

// ============================================================================
// PRODUCT LINES
// ============================================================================

// ProductLine identifies one of the insurance products quoted through CSG.
type ProductLine string

const (
	ProductMedigap           ProductLine = "medicare-supplement"
	ProductMedicareAdvantage ProductLine = "medicare-advantage"
	ProductDental            ProductLine = "dental"
	ProductHospitalIndemnity ProductLine = "hospital-indemnity"
	ProductFinalExpense      ProductLine = "final-expense"
	ProductCancer            ProductLine = "cancer"
)

// ProductLines lists every supported product in display order.
var ProductLines = []ProductLine{
	ProductMedigap,
	ProductMedicareAdvantage,
	ProductDental,
	ProductHospitalIndemnity,
	ProductFinalExpense,
	ProductCancer,
}

// Valid reports whether p is a known product line.
func (p ProductLine) Valid() bool {
	for _, known := range ProductLines {
		if p == known {
			return true
		}
	}
	return false
}

// ============================================================================
// RAW & NORMALIZED QUOTES
// ============================================================================

// RawQuote is one untyped record as returned by the CSG API.
type RawQuote map[string]any

// BenefitOption is a priced variant of a benefit (e.g. $1000 annual maximum at $25/mo).
type BenefitOption struct {
	Amount     string  `json:"amount"`
	Rate       float64 `json:"rate"`
	Quantifier string  `json:"quantifier,omitempty"`
}

// BenefitType tags a UnifiedBenefit as coming from base_plans or riders.
type BenefitType string

const (
	BenefitMain  BenefitType = "main"
	BenefitRider BenefitType = "rider"
)

// UnifiedBenefit merges base plans and riders into one ordered list.
type UnifiedBenefit struct {
	Name           string          `json:"name"`
	Type           BenefitType     `json:"type"`
	Included       bool            `json:"included"`
	IsMainBenefit  bool            `json:"isMainBenefit"`
	BenefitOptions []BenefitOption `json:"benefitOptions"`
	Notes          string          `json:"notes"`
}

// CoverageStatus is the advisory label produced by the benefit classifier.
type CoverageStatus string

const (
	CoverageCovered    CoverageStatus = "covered"
	CoverageNotCovered CoverageStatus = "not-covered"
	CoverageUnclear    CoverageStatus = "unclear"
	CoverageNotFound   CoverageStatus = "not-found"
)

// PlanBenefit is a Medicare Advantage benefit row with its coverage label.
type PlanBenefit struct {
	BenefitType  string         `json:"benefitType"`
	Description  string         `json:"description"`
	InNetwork    string         `json:"inNetwork,omitempty"`
	OutOfNetwork string         `json:"outOfNetwork,omitempty"`
	Status       CoverageStatus `json:"status"`
}

// NormalizedQuote is the flat, defaulted view of a RawQuote. It is never
// mutated after extraction.
type NormalizedQuote struct {
	ID               string           `json:"id"`
	Product          ProductLine      `json:"product"`
	CompanyName      string           `json:"companyName"`
	CompanyFullName  string           `json:"companyFullName"`
	PlanName         string           `json:"planName"`
	PlanType         string           `json:"planType"`
	MonthlyPremium   float64          `json:"monthlyPremium"`
	AnnualMaximum    float64          `json:"annualMaximum"`
	BenefitAmount    float64          `json:"benefitAmount"`
	FaceValue        float64          `json:"faceValue"`
	Deductible       float64          `json:"deductible"`
	AmbestRating     string           `json:"ambestRating"`
	AmbestOutlook    string           `json:"ambestOutlook"`
	StarRating       float64          `json:"starRating"`
	State            string           `json:"state"`
	UnderwritingType string           `json:"underwritingType"`
	Discounts        []string         `json:"discounts"`
	Benefits         []UnifiedBenefit `json:"benefits"`
	PlanBenefits     []PlanBenefit    `json:"planBenefits"`
	BenefitNotes     string           `json:"benefitNotes"`
	LimitationNotes  string           `json:"limitationNotes"`
}

// CarrierSummary aggregates the quotes of one carrier display name.
type CarrierSummary struct {
	Name  string  `json:"name"`
	Logo  string  `json:"logo"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// OptimizationStats reports how much the normalization shrank the payload.
// Diagnostic only.
type OptimizationStats struct {
	OriginalCount    int     `json:"originalCount"`
	OptimizedCount   int     `json:"optimizedCount"`
	Skipped          int     `json:"skipped"`
	OriginalBytes    int     `json:"originalBytes"`
	OptimizedBytes   int     `json:"optimizedBytes"`
	CompressionRatio float64 `json:"compressionRatio"`
}

// QuoteCacheEntry is the cached value for one SearchParams key.
type QuoteCacheEntry struct {
	Key       string            `json:"key"`
	Product   ProductLine       `json:"product"`
	Quotes    []NormalizedQuote `json:"quotes"`
	Stats     OptimizationStats `json:"stats"`
	CreatedAt time.Time         `json:"createdAt"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// QuoteResult is what the quote endpoints return.
type QuoteResult struct {
	Product   ProductLine                  `json:"product"`
	Quotes    []NormalizedQuote            `json:"quotes"`
	Groups    map[string][]NormalizedQuote `json:"groups,omitempty"`
	GroupKeys []string                     `json:"groupKeys,omitempty"`
	Carriers  []CarrierSummary             `json:"carriers"`
	Stats     OptimizationStats            `json:"stats"`
	Cached    bool                         `json:"cached"`
	FetchedAt time.Time                    `json:"fetchedAt"`
}
