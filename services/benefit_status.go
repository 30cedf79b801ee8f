package services

import (
	"regexp"
	"strings"

	"github.com/LovationAdmin/quote-api/models"

	"github.com/PuerkitoBio/goquery"
)

// NetworkSummary is the structured in/out-of-network text CSG attaches to
// some Medicare Advantage benefits. A non-nil summary means the object was
// present in the payload, even if its strings are empty.
type NetworkSummary struct {
	InNetwork    string `json:"in_network"`
	OutOfNetwork string `json:"out_network"`
}

// BenefitDescription is the classifier input for one benefit.
type BenefitDescription struct {
	FullDescription string          `json:"full_description"`
	Summary         *NetworkSummary `json:"summary_description,omitempty"`
}

var (
	moneyPattern   = regexp.MustCompile(`\$\s?\d[\d,]*(\.\d+)?`)
	percentPattern = regexp.MustCompile(`\d+(\.\d+)?\s?%`)

	strongNegativePattern = regexp.MustCompile(`\b(not covered|no coverage|not included|does not cover|doesn't cover|is excluded|excluded|not a covered benefit|not available|no benefit|not offered)\b`)
	weakPattern           = regexp.MustCompile(`\b(contact (the )?plan|call (the )?plan|may apply|may vary|varies|see plan|limitations? apply|restrictions? apply|prior authorization|referral)\b`)
	positiveWordPattern   = regexp.MustCompile(`\b(covered|included|copay|copayment|coinsurance|allowance|unlimited)\b`)
	whitespacePattern     = regexp.MustCompile(`\s+`)
)

// Reasons reported alongside a coverage status.
const (
	ReasonStructuredSummary = "structured-summary"
	ReasonAmount            = "amount"
	ReasonConflicting       = "conflicting-signals"
	ReasonNegative          = "negative-phrase"
	ReasonVague             = "vague-phrase"
	ReasonPositiveNoAmount  = "positive-without-amount"
	ReasonNoSignal          = "no-signal"
)

// ClassifyBenefitStatus labels a benefit as covered, not-covered or unclear.
// The result is a display hint, not a coverage determination.
func ClassifyBenefitStatus(desc BenefitDescription) models.CoverageStatus {
	status, _ := ExplainBenefitStatus(desc)
	return status
}

// ExplainBenefitStatus is ClassifyBenefitStatus plus the rule that decided it.
//
// Precedence:
//  1. structured network summary present -> covered
//  2. money/percent amount and no strong negative -> covered
//  3. positive and strong negative signals together -> unclear
//  4. strong negative alone -> not-covered; vague or no signal -> unclear
func ExplainBenefitStatus(desc BenefitDescription) (models.CoverageStatus, string) {
	if desc.Summary != nil {
		return models.CoverageCovered, ReasonStructuredSummary
	}

	text := strings.ToLower(PlainText(desc.FullDescription))
	hasAmount := moneyPattern.MatchString(text) || percentPattern.MatchString(text)
	hasNegative := strongNegativePattern.MatchString(text)

	if hasAmount && !hasNegative {
		return models.CoverageCovered, ReasonAmount
	}

	// "not covered" must not count as a positive "covered".
	withoutNegatives := strongNegativePattern.ReplaceAllString(text, " ")
	hasPositive := hasAmount || positiveWordPattern.MatchString(withoutNegatives)

	switch {
	case hasPositive && hasNegative:
		return models.CoverageUnclear, ReasonConflicting
	case hasNegative:
		return models.CoverageNotCovered, ReasonNegative
	case weakPattern.MatchString(text):
		return models.CoverageUnclear, ReasonVague
	case hasPositive:
		return models.CoverageUnclear, ReasonPositiveNoAmount
	default:
		return models.CoverageUnclear, ReasonNoSignal
	}
}

// FindBenefitStatus returns the status of the first benefit of the given
// type, or not-found when the plan has no such benefit.
func FindBenefitStatus(benefits []models.PlanBenefit, benefitType string) models.CoverageStatus {
	want := strings.ToLower(strings.TrimSpace(benefitType))
	for _, b := range benefits {
		if strings.ToLower(strings.TrimSpace(b.BenefitType)) == want {
			return b.Status
		}
	}
	return models.CoverageNotFound
}

// PlainText strips HTML tags and collapses whitespace.
func PlainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(html, " "))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(html, " "))
	}

	var parts []string
	var collect func(*goquery.Selection)
	collect = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "#text":
				if t := strings.TrimSpace(node.Text()); t != "" {
					parts = append(parts, t)
				}
			case "script", "style":
			default:
				collect(node)
			}
		})
	}
	collect(doc.Find("body"))

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(strings.Join(parts, " "), " "))
}
