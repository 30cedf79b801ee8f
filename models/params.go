package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// FormField names one of the quote form inputs.
type FormField string

const (
	FieldZip              FormField = "zip"
	FieldState            FormField = "state"
	FieldGender           FormField = "gender"
	FieldAge              FormField = "age"
	FieldTobacco          FormField = "tobacco"
	FieldBenefitAmount    FormField = "benefitAmount"
	FieldFamilyType       FormField = "familyType"
	FieldCarcinomaInSitu  FormField = "carcinomaInSitu"
	FieldPremiumMode      FormField = "premiumMode"
	FieldCoveredMembers   FormField = "coveredMembers"
	FieldDesiredFaceValue FormField = "desiredFaceValue"
	FieldDesiredRate      FormField = "desiredRate"
	FieldUnderwritingType FormField = "underwritingType"
)

// FormFields is the fixed field order used when reporting required fields.
var FormFields = []FormField{
	FieldZip,
	FieldState,
	FieldGender,
	FieldAge,
	FieldTobacco,
	FieldBenefitAmount,
	FieldFamilyType,
	FieldCarcinomaInSitu,
	FieldPremiumMode,
	FieldCoveredMembers,
	FieldDesiredFaceValue,
	FieldDesiredRate,
	FieldUnderwritingType,
}

// FormInput is the loosely-typed form object posted by the site.
type FormInput map[string]any

// SearchParams is the strict request for one product line. It doubles as the
// quote cache key.
type SearchParams struct {
	Product          ProductLine `json:"product"`
	Zip              string      `json:"zip,omitempty"`
	State            string      `json:"state,omitempty"`
	Age              int         `json:"age"`
	Gender           string      `json:"gender"`
	Tobacco          bool        `json:"tobacco"`
	Plans            []string    `json:"plans,omitempty"`
	BenefitAmount    int         `json:"benefitAmount,omitempty"`
	FamilyType       string      `json:"familyType,omitempty"`
	CarcinomaInSitu  int         `json:"carcinomaInSitu,omitempty"`
	PremiumMode      string      `json:"premiumMode,omitempty"`
	CoveredMembers   string      `json:"coveredMembers,omitempty"`
	DesiredFaceValue int         `json:"desiredFaceValue,omitempty"`
	DesiredRate      float64     `json:"desiredRate,omitempty"`
	UnderwritingType string      `json:"underwritingType,omitempty"`
}

// CacheKey renders every field that affects the upstream response. Two
// params share a key only when all of those fields are equal; plan selection
// is compared as a set.
func (p SearchParams) CacheKey() string {
	plans := slices.Clone(p.Plans)
	for i := range plans {
		plans[i] = strings.ToUpper(strings.TrimSpace(plans[i]))
	}
	slices.Sort(plans)

	return fmt.Sprintf("%s|zip=%s|state=%s|age=%d|gender=%s|tobacco=%t|plans=%s|benefit=%d|family=%s|cis=%d|mode=%s|members=%s|face=%d|rate=%.2f|uw=%s",
		p.Product,
		p.Zip,
		strings.ToUpper(p.State),
		p.Age,
		p.Gender,
		p.Tobacco,
		strings.Join(plans, ","),
		p.BenefitAmount,
		p.FamilyType,
		p.CarcinomaInSitu,
		p.PremiumMode,
		p.CoveredMembers,
		p.DesiredFaceValue,
		p.DesiredRate,
		p.UnderwritingType,
	)
}

// ============================================================================
// VISITOR SESSIONS
// ============================================================================

// VisitorState is the transient per-visitor document.
type VisitorState struct {
	Categories []ProductLine  `json:"categories"`
	Form       FormInput      `json:"form"`
	LastSearch []SearchParams `json:"lastSearch,omitempty"`
	Email      string         `json:"email,omitempty"`
}

// VisitorSession wraps the state with its storage metadata.
type VisitorSession struct {
	ID        string       `json:"id"`
	State     VisitorState `json:"state"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// CreateSessionResponse is returned when a visitor session is opened.
type CreateSessionResponse struct {
	Session VisitorSession `json:"session"`
	Token   string         `json:"token"`
}

// UpdateSessionRequest replaces the visitor state fields that are present.
type UpdateSessionRequest struct {
	Categories []ProductLine `json:"categories"`
	Form       FormInput     `json:"form"`
	Email      *string       `json:"email"`
}

// QuoteRequest asks for quotes on several product lines with one form.
type QuoteRequest struct {
	Categories []ProductLine `json:"categories" binding:"required"`
	Form       FormInput     `json:"form"`
}
