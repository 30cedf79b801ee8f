package services

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/LovationAdmin/quote-api/models"
)

// QuoteGroups maps a group name to its quotes. Keys holds the group names in
// first-seen order; members keep their input order.
type QuoteGroups struct {
	Keys   []string                            `json:"keys"`
	Groups map[string][]models.NormalizedQuote `json:"groups"`
}

// GroupQuotes partitions quotes by key. The input is not modified.
func GroupQuotes(quotes []models.NormalizedQuote, key func(models.NormalizedQuote) string) QuoteGroups {
	groups := QuoteGroups{
		Keys:   []string{},
		Groups: map[string][]models.NormalizedQuote{},
	}
	for _, q := range quotes {
		k := key(q)
		if _, seen := groups.Groups[k]; !seen {
			groups.Keys = append(groups.Keys, k)
		}
		groups.Groups[k] = append(groups.Groups[k], q)
	}
	return groups
}

// GroupQuotesByPlan groups quotes by plan name.
func GroupQuotesByPlan(quotes []models.NormalizedQuote) QuoteGroups {
	return GroupQuotes(quotes, func(q models.NormalizedQuote) string { return q.PlanName })
}

// GroupQuotesByCompany groups quotes by carrier display name.
func GroupQuotesByCompany(quotes []models.NormalizedQuote) QuoteGroups {
	return GroupQuotes(quotes, func(q models.NormalizedQuote) string { return q.CompanyName })
}

// SortQuotesByPremium returns a copy sorted by monthly premium, ascending.
// Equal premiums keep their relative order.
func SortQuotesByPremium(quotes []models.NormalizedQuote) []models.NormalizedQuote {
	sorted := slices.Clone(quotes)
	if sorted == nil {
		sorted = []models.NormalizedQuote{}
	}
	slices.SortStableFunc(sorted, func(a, b models.NormalizedQuote) int {
		return cmp.Compare(a.MonthlyPremium, b.MonthlyPremium)
	})
	return sorted
}

// QuoteField selects a numeric field for range filtering.
type QuoteField string

const (
	FieldMonthlyPremium QuoteField = "monthlyPremium"
	FieldAnnualMaximum  QuoteField = "annualMaximum"
	FieldBenefitAmount  QuoteField = "benefitAmount"
	FieldFaceValue      QuoteField = "faceValue"
)

// Amount reads the selected field. ok is false for unknown fields.
func (f QuoteField) Amount(q models.NormalizedQuote) (float64, bool) {
	switch f {
	case FieldMonthlyPremium:
		return q.MonthlyPremium, true
	case FieldAnnualMaximum:
		return q.AnnualMaximum, true
	case FieldBenefitAmount:
		return q.BenefitAmount, true
	case FieldFaceValue:
		return q.FaceValue, true
	}
	return 0, false
}

// FilterQuotesByRange keeps the quotes whose field lies in [lo, hi].
func FilterQuotesByRange(quotes []models.NormalizedQuote, field QuoteField, lo, hi float64) []models.NormalizedQuote {
	out := make([]models.NormalizedQuote, 0, len(quotes))
	for _, q := range quotes {
		v, ok := field.Amount(q)
		if ok && v >= lo && v <= hi {
			out = append(out, q)
		}
	}
	return out
}

// DistinctValues returns the sorted set of values produced by pick.
func DistinctValues[T cmp.Ordered](quotes []models.NormalizedQuote, pick func(models.NormalizedQuote) T) []T {
	seen := make(map[T]struct{}, len(quotes))
	out := make([]T, 0, len(quotes))
	for _, q := range quotes {
		v := pick(q)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// DistinctPlanNames lists the plan names offered, sorted.
func DistinctPlanNames(quotes []models.NormalizedQuote) []string {
	return DistinctValues(quotes, func(q models.NormalizedQuote) string { return q.PlanName })
}

// DistinctAnnualMaximums lists the annual maximum tiers offered, ascending.
func DistinctAnnualMaximums(quotes []models.NormalizedQuote) []float64 {
	return DistinctValues(quotes, func(q models.NormalizedQuote) float64 { return q.AnnualMaximum })
}

// SummarizeCarriers aggregates premiums per carrier in first-seen order.
// logo may be nil.
func SummarizeCarriers(quotes []models.NormalizedQuote, logo func(name string) string) []models.CarrierSummary {
	byCompany := GroupQuotesByCompany(quotes)
	out := make([]models.CarrierSummary, 0, len(byCompany.Keys))
	for _, name := range byCompany.Keys {
		members := byCompany.Groups[name]
		summary := models.CarrierSummary{
			Name:  name,
			Min:   members[0].MonthlyPremium,
			Max:   members[0].MonthlyPremium,
			Count: len(members),
		}
		for _, q := range members[1:] {
			summary.Min = min(summary.Min, q.MonthlyPremium)
			summary.Max = max(summary.Max, q.MonthlyPremium)
		}
		if logo != nil {
			summary.Logo = logo(name)
		}
		out = append(out, summary)
	}
	return out
}

// ============================================================================
// RESULT VIEWS
// ============================================================================

// ErrInvalidView is returned for unknown sort, group or filter options.
var ErrInvalidView = errors.New("invalid quote view")

// QuoteView selects how a QuoteResult is presented. Zero values leave the
// result untouched.
type QuoteView struct {
	Sort  string     // "premium"
	Group string     // "plan" or "company"
	Field QuoteField // range filter field, monthlyPremium by default
	Min   *float64
	Max   *float64
}

// Validate reports an ErrInvalidView for unknown options, non-finite bounds
// or min greater than max. It does not touch any quotes.
func (v QuoteView) Validate() error {
	if v.Min != nil || v.Max != nil {
		if _, ok := v.rangeField().Amount(models.NormalizedQuote{}); !ok {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidView, v.Field)
		}
		for _, b := range []*float64{v.Min, v.Max} {
			if b != nil && (math.IsNaN(*b) || math.IsInf(*b, 0)) {
				return fmt.Errorf("%w: range bounds must be finite", ErrInvalidView)
			}
		}
		if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
			return fmt.Errorf("%w: min %.2f is greater than max %.2f", ErrInvalidView, *v.Min, *v.Max)
		}
	}

	switch v.Sort {
	case "", "premium":
	default:
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidView, v.Sort)
	}

	switch v.Group {
	case "", "plan", "company":
	default:
		return fmt.Errorf("%w: unknown group %q", ErrInvalidView, v.Group)
	}
	return nil
}

func (v QuoteView) rangeField() QuoteField {
	if v.Field == "" {
		return FieldMonthlyPremium
	}
	return v.Field
}

// ApplyView filters, sorts and groups result.Quotes in that order. Carrier
// summaries are recomputed for the remaining quotes, keeping known logos.
func ApplyView(result *models.QuoteResult, v QuoteView) error {
	if err := v.Validate(); err != nil {
		return err
	}
	quotes := result.Quotes

	if v.Min != nil || v.Max != nil {
		lo, hi := math.Inf(-1), math.Inf(1)
		if v.Min != nil {
			lo = *v.Min
		}
		if v.Max != nil {
			hi = *v.Max
		}
		quotes = FilterQuotesByRange(quotes, v.rangeField(), lo, hi)
	}

	if v.Sort == "premium" {
		quotes = SortQuotesByPremium(quotes)
	}

	var groups QuoteGroups
	switch v.Group {
	case "plan":
		groups = GroupQuotesByPlan(quotes)
	case "company":
		groups = GroupQuotesByCompany(quotes)
	}

	logos := make(map[string]string, len(result.Carriers))
	for _, c := range result.Carriers {
		logos[c.Name] = c.Logo
	}

	result.Quotes = quotes
	result.Carriers = SummarizeCarriers(quotes, func(name string) string { return logos[name] })
	if v.Group != "" {
		result.Groups = groups.Groups
		result.GroupKeys = groups.Keys
	}
	return nil
}
