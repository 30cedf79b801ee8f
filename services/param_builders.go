package services

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/LovationAdmin/quote-api/models"
)

const (
	MinAge     = 18
	MaxAge     = 99
	DefaultAge = 65

	GenderMale   = "M"
	GenderFemale = "F"

	DefaultPremiumMode = "month"
)

// MissingFieldsError is returned when a form lacks fields a product line
// cannot be quoted without.
type MissingFieldsError struct {
	Product models.ProductLine
	Fields  []models.FormField
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required fields for %s: %s", e.Product, strings.Join(names, ", "))
}

// ============================================================================
// FIELD NORMALIZATION
// ============================================================================

// NormalizeAge clamps an age to [MinAge, MaxAge]. Values that are not numbers
// default to DefaultAge.
func NormalizeAge(v any) int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return DefaultAge
	}
	switch {
	case f < MinAge:
		return MinAge
	case f > MaxAge:
		return MaxAge
	}
	return int(math.Trunc(f))
}

// NormalizeGender maps free-form input to M or F, defaulting to M.
func NormalizeGender(v any) string {
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "female", "woman", "w":
		return GenderFemale
	}
	return GenderMale
}

// NormalizeTobacco reads the tobacco flag from a checkbox, a "yes"/"no"
// select or a numeric flag. Anything else means non-smoker.
func NormalizeTobacco(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "smoker", "tobacco":
			return true
		}
	}
	return false
}

// NormalizeZip keeps the first five digits of a ZIP or ZIP+4 code. It
// returns "" when fewer than five digits are present.
func NormalizeZip(v any) string {
	var digits strings.Builder
	for _, r := range toString(v) {
		if r == '-' && digits.Len() >= 5 {
			break
		}
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	zip := digits.String()
	if len(zip) < 5 {
		return ""
	}
	return zip[:5]
}

// NormalizeState upper-cases a two-letter state code. Anything else is "".
func NormalizeState(v any) string {
	s := strings.ToUpper(strings.TrimSpace(toString(v)))
	if len(s) != 2 || !unicode.IsLetter(rune(s[0])) || !unicode.IsLetter(rune(s[1])) {
		return ""
	}
	return s
}

// NormalizePremiumMode maps billing-mode spellings to CSG's mode names.
func NormalizePremiumMode(v any) string {
	switch modeDivisor(toString(v)) {
	case 12:
		return "annual"
	case 6:
		return "semi_annual"
	case 3:
		return "quarter"
	}
	return DefaultPremiumMode
}

func formInt(form models.FormInput, field models.FormField) int {
	f, _ := toFloat(form[string(field)])
	return int(math.Round(f))
}

func formString(form models.FormInput, field models.FormField) string {
	return strings.TrimSpace(toString(form[string(field)]))
}

func hasFormValue(form models.FormInput, field models.FormField) bool {
	v, ok := form[string(field)]
	if !ok || v == nil {
		return false
	}
	switch field {
	case models.FieldZip:
		return NormalizeZip(v) != ""
	case models.FieldState:
		return NormalizeState(v) != ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	}
	return true
}

func formPlans(form models.FormInput) []string {
	var plans []string
	switch v := form["plans"].(type) {
	case []any:
		for _, p := range v {
			if s := strings.ToUpper(strings.TrimSpace(toString(p))); s != "" {
				plans = append(plans, s)
			}
		}
	case []string:
		for _, p := range v {
			if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
				plans = append(plans, s)
			}
		}
	case string:
		for _, p := range strings.Split(v, ",") {
			if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
				plans = append(plans, s)
			}
		}
	}
	return plans
}

// ============================================================================
// PARAM BUILDERS
// ============================================================================

// BuildSearchParams turns the site form into the strict parameters of one
// product line. Defaults are applied to age, gender, tobacco and premium
// mode; any other required field left empty yields *MissingFieldsError.
func BuildSearchParams(product models.ProductLine, form models.FormInput) (models.SearchParams, error) {
	if !product.Valid() {
		return models.SearchParams{}, fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}
	if missing := MissingFields(product, form); len(missing) > 0 {
		return models.SearchParams{}, &MissingFieldsError{Product: product, Fields: missing}
	}

	params := models.SearchParams{
		Product: product,
		Zip:     NormalizeZip(form[string(models.FieldZip)]),
		State:   NormalizeState(form[string(models.FieldState)]),
		Age:     DefaultAge,
		Gender:  NormalizeGender(form[string(models.FieldGender)]),
		Tobacco: NormalizeTobacco(form[string(models.FieldTobacco)]),
	}
	if v, ok := form[string(models.FieldAge)]; ok {
		params.Age = NormalizeAge(v)
	}

	switch product {
	case models.ProductMedigap:
		params.Plans = formPlans(form)
	case models.ProductDental, models.ProductHospitalIndemnity:
		params.CoveredMembers = formString(form, models.FieldCoveredMembers)
	case models.ProductFinalExpense:
		params.DesiredFaceValue = formInt(form, models.FieldDesiredFaceValue)
		if rate, ok := toFloat(form[string(models.FieldDesiredRate)]); ok {
			params.DesiredRate = math.Round(rate*100) / 100
		}
		params.UnderwritingType = formString(form, models.FieldUnderwritingType)
	case models.ProductCancer:
		params.BenefitAmount = formInt(form, models.FieldBenefitAmount)
		params.FamilyType = formString(form, models.FieldFamilyType)
		params.CarcinomaInSitu = formInt(form, models.FieldCarcinomaInSitu)
		params.PremiumMode = NormalizePremiumMode(form[string(models.FieldPremiumMode)])
	}
	return params, nil
}

// QueryValues renders params as CSG query parameters for its product line.
func QueryValues(p models.SearchParams) url.Values {
	q := url.Values{}
	if p.Zip != "" {
		q.Set("zip5", p.Zip)
	}
	if p.State != "" {
		q.Set("state", p.State)
	}

	if p.Product != models.ProductMedicareAdvantage {
		q.Set("age", strconv.Itoa(p.Age))
		q.Set("gender", p.Gender)
		q.Set("tobacco", boolFlag(p.Tobacco))
	}

	switch p.Product {
	case models.ProductMedigap:
		for _, plan := range p.Plans {
			q.Add("plan", plan)
		}
	case models.ProductDental, models.ProductHospitalIndemnity:
		if p.CoveredMembers != "" {
			q.Set("covered_members", p.CoveredMembers)
		}
	case models.ProductFinalExpense:
		if p.DesiredFaceValue > 0 {
			q.Set("desired_face_value", strconv.Itoa(p.DesiredFaceValue))
		}
		if p.DesiredRate > 0 {
			q.Set("desired_rate", strconv.FormatFloat(p.DesiredRate, 'f', 2, 64))
		}
		if p.UnderwritingType != "" {
			q.Set("underwriting_type", p.UnderwritingType)
		}
	case models.ProductCancer:
		q.Set("benefit_amount", strconv.Itoa(p.BenefitAmount))
		q.Set("family_type", p.FamilyType)
		q.Set("carcinoma_in_situ", strconv.Itoa(p.CarcinomaInSitu))
		q.Set("premium_mode", p.PremiumMode)
	}
	return q
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
