package services

import (
	"strings"

	"github.com/LovationAdmin/quote-api/models"
)

// ExtractFinalExpenseQuote normalizes a final-expense life quote.
func ExtractFinalExpenseQuote(raw models.RawQuote) (models.NormalizedQuote, error) {
	r := asRecord(raw)
	company := extractCompany(r)
	premium := monthlyPremium(r)
	planName := r.str("plan_name", "product_name", "name")

	return models.NormalizedQuote{
		ID:               quoteID(r, models.ProductFinalExpense, company.Name, planName, premium),
		Product:          models.ProductFinalExpense,
		CompanyName:      company.Name,
		CompanyFullName:  company.FullName,
		PlanName:         planName,
		PlanType:         r.str("plan_type", "product_type"),
		MonthlyPremium:   premium,
		FaceValue:        r.num("face_value", "face_amount", "benefit_amount"),
		AmbestRating:     company.AMBest,
		AmbestOutlook:    company.Outlook,
		StarRating:       AMBestToStars(company.AMBest),
		State:            r.str("state", "location_base.state"),
		UnderwritingType: r.str("underwriting_type", "underwriting"),
		Discounts:        r.strs("discounts"),
		Benefits:         unifyBenefits(r),
		PlanBenefits:     []models.PlanBenefit{},
		BenefitNotes:     PlainText(r.str("benefit_notes")),
		LimitationNotes:  PlainText(r.str("limitation_notes")),
	}, nil
}

// ExtractCancerQuote normalizes a cancer insurance quote.
func ExtractCancerQuote(raw models.RawQuote) (models.NormalizedQuote, error) {
	r := asRecord(raw)
	company := extractCompany(r)
	premium := monthlyPremium(r)
	planName := r.str("plan_name", "name")

	return models.NormalizedQuote{
		ID:              quoteID(r, models.ProductCancer, company.Name, planName, premium),
		Product:         models.ProductCancer,
		CompanyName:     company.Name,
		CompanyFullName: company.FullName,
		PlanName:        planName,
		PlanType:        r.str("family_type"),
		MonthlyPremium:  premium,
		BenefitAmount:   r.num("benefit_amount", "lump_sum"),
		AmbestRating:    company.AMBest,
		AmbestOutlook:   company.Outlook,
		StarRating:      AMBestToStars(company.AMBest),
		State:           r.str("state", "location_base.state"),
		Discounts:       r.strs("discounts"),
		Benefits:        unifyBenefits(r),
		PlanBenefits:    []models.PlanBenefit{},
		BenefitNotes:    PlainText(r.str("benefit_notes")),
		LimitationNotes: PlainText(r.str("limitation_notes")),
	}, nil
}

// ExtractMedigapQuote normalizes a Medicare supplement quote. CSG returns
// the plan letter ("G") and a rate object in cents.
func ExtractMedigapQuote(raw models.RawQuote) (models.NormalizedQuote, error) {
	r := asRecord(raw)
	company := extractCompany(r)
	premium := monthlyPremium(r)

	letter := strings.ToUpper(r.str("plan", "plan_letter"))
	planName := r.str("plan_name")
	if planName == "" && letter != "" {
		planName = "Plan " + letter
	}

	return models.NormalizedQuote{
		ID:              quoteID(r, models.ProductMedigap, company.Name, planName, premium),
		Product:         models.ProductMedigap,
		CompanyName:     company.Name,
		CompanyFullName: company.FullName,
		PlanName:        planName,
		PlanType:        letter,
		MonthlyPremium:  premium,
		AmbestRating:    company.AMBest,
		AmbestOutlook:   company.Outlook,
		StarRating:      AMBestToStars(company.AMBest),
		State:           r.str("location_base.state", "state"),
		Discounts:       r.strs("discounts"),
		Benefits:        []models.UnifiedBenefit{},
		PlanBenefits:    []models.PlanBenefit{},
		BenefitNotes:    PlainText(r.str("benefit_notes")),
		LimitationNotes: PlainText(r.str("limitation_notes")),
	}, nil
}

// ExtractMedicareAdvantageQuote normalizes a Medicare Advantage plan and
// labels each of its benefits with a coverage status. StarRating carries the
// CMS overall rating here, not the AM Best grade.
func ExtractMedicareAdvantageQuote(raw models.RawQuote) (models.NormalizedQuote, error) {
	r := asRecord(raw)
	company := extractCompany(r)
	premium := monthlyPremium(r)
	planName := r.str("plan_name", "name")

	rawBenefits := r.records("benefits")
	planBenefits := make([]models.PlanBenefit, 0, len(rawBenefits))
	for _, b := range rawBenefits {
		desc := BenefitDescription{FullDescription: b.str("full_description", "description")}
		if s := b.record("summary_description"); s != nil {
			desc.Summary = &NetworkSummary{
				InNetwork:    s.str("in_network"),
				OutOfNetwork: s.str("out_network"),
			}
		}
		pb := models.PlanBenefit{
			BenefitType: b.str("benefit_type", "name"),
			Description: PlainText(desc.FullDescription),
			Status:      ClassifyBenefitStatus(desc),
		}
		if desc.Summary != nil {
			pb.InNetwork = PlainText(desc.Summary.InNetwork)
			pb.OutOfNetwork = PlainText(desc.Summary.OutOfNetwork)
		}
		planBenefits = append(planBenefits, pb)
	}

	return models.NormalizedQuote{
		ID:              quoteID(r, models.ProductMedicareAdvantage, company.Name, planName, premium),
		Product:         models.ProductMedicareAdvantage,
		CompanyName:     company.Name,
		CompanyFullName: company.FullName,
		PlanName:        planName,
		PlanType:        r.str("plan_type"),
		MonthlyPremium:  premium,
		Deductible:      r.num("annual_deductible", "deductible"),
		AmbestRating:    company.AMBest,
		AmbestOutlook:   company.Outlook,
		StarRating:      r.num("overall_star_rating", "star_rating"),
		State:           r.str("state", "location_base.state"),
		Discounts:       []string{},
		Benefits:        []models.UnifiedBenefit{},
		PlanBenefits:    planBenefits,
		BenefitNotes:    PlainText(r.str("benefit_notes")),
		LimitationNotes: PlainText(r.str("limitation_notes")),
	}, nil
}
