package services

import (
	"github.com/LovationAdmin/quote-api/models"
)

// unifyBenefits flattens base_plans and riders into one list, base plans
// first, each keeping its upstream order.
func unifyBenefits(r rawRecord) []models.UnifiedBenefit {
	basePlans := r.records("base_plans")
	riders := r.records("riders")

	out := make([]models.UnifiedBenefit, 0, len(basePlans)+len(riders))
	for _, bp := range basePlans {
		out = append(out, toUnifiedBenefit(bp, models.BenefitMain))
	}
	for _, rider := range riders {
		out = append(out, toUnifiedBenefit(rider, models.BenefitRider))
	}
	return out
}

func toUnifiedBenefit(r rawRecord, kind models.BenefitType) models.UnifiedBenefit {
	raw := r.records("benefits", "benefit_options")
	options := make([]models.BenefitOption, 0, len(raw))
	for _, opt := range raw {
		options = append(options, models.BenefitOption{
			Amount:     opt.str("amount"),
			Rate:       opt.num("rate"),
			Quantifier: opt.str("quantifier"),
		})
	}
	return models.UnifiedBenefit{
		Name:           r.str("name"),
		Type:           kind,
		Included:       r.boolean("included"),
		IsMainBenefit:  kind == models.BenefitMain,
		BenefitOptions: options,
		Notes:          PlainText(r.str("notes", "note", "benefit_notes")),
	}
}

// mainBenefit picks the first included main benefit, falling back to the
// first main benefit.
func mainBenefit(benefits []models.UnifiedBenefit) (models.UnifiedBenefit, bool) {
	first := -1
	for i, b := range benefits {
		if !b.IsMainBenefit {
			continue
		}
		if b.Included {
			return b, true
		}
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return models.UnifiedBenefit{}, false
	}
	return benefits[first], true
}

// ExtractDentalQuote normalizes a CSG dental quote. The premium and annual
// maximum come from the first option of the main base plan; a quote without
// one is rejected with *NoBenefitFoundError.
func ExtractDentalQuote(raw models.RawQuote) (models.NormalizedQuote, error) {
	r := asRecord(raw)
	company := extractCompany(r)
	benefits := unifyBenefits(r)

	main, ok := mainBenefit(benefits)
	if !ok || len(main.BenefitOptions) == 0 {
		return models.NormalizedQuote{}, &NoBenefitFoundError{
			Product: models.ProductDental,
			QuoteID: r.str("key", "id"),
			Company: company.Name,
		}
	}
	option := main.BenefitOptions[0]
	annualMax, _ := toFloat(option.Amount)

	planName := r.str("plan_name", "name")
	if planName == "" {
		planName = main.Name
	}

	return models.NormalizedQuote{
		ID:              quoteID(r, models.ProductDental, company.Name, planName, option.Rate),
		Product:         models.ProductDental,
		CompanyName:     company.Name,
		CompanyFullName: company.FullName,
		PlanName:        planName,
		PlanType:        r.str("plan_type", "network_type"),
		MonthlyPremium:  option.Rate,
		AnnualMaximum:   annualMax,
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
