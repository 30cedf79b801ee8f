package services

import (
	"github.com/LovationAdmin/quote-api/models"
)

// ExtractHospitalIndemnityQuote normalizes a CSG hospital indemnity quote.
// Riders are optional on this line, so a quote without a priced main
// benefit gets a zero premium instead of an error.
func ExtractHospitalIndemnityQuote(raw models.RawQuote) (models.NormalizedQuote, error) {
	r := asRecord(raw)
	company := extractCompany(r)
	benefits := unifyBenefits(r)

	var premium, benefitAmount float64
	planName := r.str("plan_name", "name")
	if main, ok := mainBenefit(benefits); ok {
		if len(main.BenefitOptions) > 0 {
			option := main.BenefitOptions[0]
			premium = option.Rate
			benefitAmount, _ = toFloat(option.Amount)
		}
		if planName == "" {
			planName = main.Name
		}
	}
	if premium == 0 {
		premium = monthlyPremium(r)
	}

	return models.NormalizedQuote{
		ID:              quoteID(r, models.ProductHospitalIndemnity, company.Name, planName, premium),
		Product:         models.ProductHospitalIndemnity,
		CompanyName:     company.Name,
		CompanyFullName: company.FullName,
		PlanName:        planName,
		MonthlyPremium:  premium,
		BenefitAmount:   benefitAmount,
		AmbestRating:    company.AMBest,
		AmbestOutlook:   company.Outlook,
		StarRating:      AMBestToStars(company.AMBest),
		State:           r.str("state", "location_base.state"),
		Discounts:       r.strs("discounts"),
		Benefits:        benefits,
		PlanBenefits:    []models.PlanBenefit{},
		BenefitNotes:    PlainText(r.str("benefit_notes")),
		LimitationNotes: PlainText(r.str("limitation_notes")),
	}, nil
}
