package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/utils"

	"github.com/kr/text"
	"github.com/resend/resend-go/v3"
)

// ErrEmailNotConfigured is returned when RESEND_API_KEY or EMAIL_FROM is unset.
var ErrEmailNotConfigured = errors.New("email delivery is not configured")

// summaryQuoteLimit caps how many quotes a summary email lists per product.
const summaryQuoteLimit = 5

type EmailService struct {
	client      *resend.Client
	fromEmail   string
	fromName    string
	frontendURL string
}

func NewEmailService(apiKey, fromEmail, fromName, frontendURL string) *EmailService {
	s := &EmailService{
		fromEmail:   fromEmail,
		fromName:    fromName,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
	if s.fromName == "" {
		s.fromName = "Quote Desk"
	}
	if apiKey != "" {
		s.client = resend.NewClient(apiKey)
	}
	return s
}

// Configured reports whether emails can be sent.
func (s *EmailService) Configured() bool {
	return s != nil && s.client != nil && s.fromEmail != ""
}

// QuoteSummary is a rendered quote summary email.
type QuoteSummary struct {
	Subject string
	HTML    string
	Text    string
}

// BuildQuoteSummary renders the cheapest quotes of each result.
func (s *EmailService) BuildQuoteSummary(results []models.QuoteResult) QuoteSummary {
	var htmlBody, textBody strings.Builder
	total := 0

	htmlBody.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	htmlBody.WriteString(`<h1 style="color: #2c3e50;">Your insurance quotes</h1>`)

	for _, result := range results {
		quotes := SortQuotesByPremium(result.Quotes)
		if len(quotes) > summaryQuoteLimit {
			quotes = quotes[:summaryQuoteLimit]
		}
		total += len(result.Quotes)

		title := productTitle(result.Product)
		fmt.Fprintf(&htmlBody, `<h2>%s</h2>`, html.EscapeString(title))
		fmt.Fprintf(&textBody, "%s\n%s\n", title, strings.Repeat("=", len(title)))

		if len(quotes) == 0 {
			htmlBody.WriteString(`<p>No quotes were available for your area.</p>`)
			textBody.WriteString("No quotes were available for your area.\n\n")
			continue
		}

		htmlBody.WriteString(`<table style="width: 100%; border-collapse: collapse;">`)
		for _, q := range quotes {
			fmt.Fprintf(&htmlBody,
				`<tr><td style="padding: 6px; border-bottom: 1px solid #eee;"><strong>%s</strong><br>%s</td><td style="padding: 6px; text-align: right;">$%.2f/mo</td></tr>`,
				html.EscapeString(q.CompanyName), html.EscapeString(q.PlanName), q.MonthlyPremium)

			line := fmt.Sprintf("%s, %s: $%.2f/mo", q.CompanyName, q.PlanName, q.MonthlyPremium)
			if grade := ClassifyAMBest(q.AmbestRating); grade.Rating != "" {
				line += fmt.Sprintf(" (AM Best %s, %s)", grade.Rating, grade.Label)
			}
			textBody.WriteString(text.Indent(text.Wrap(line, 68), "  "))
			textBody.WriteString("\n")
		}
		htmlBody.WriteString(`</table>`)
		textBody.WriteString("\n")
	}

	if s.frontendURL != "" {
		fmt.Fprintf(&htmlBody, `<p><a href="%s/quotes">See every plan</a></p>`, html.EscapeString(s.frontendURL))
		fmt.Fprintf(&textBody, "See every plan: %s/quotes\n", s.frontendURL)
	}
	disclaimer := "Premiums are estimates returned by the carriers for the information you entered and may change at application."
	fmt.Fprintf(&htmlBody, `<p style="color: #999; font-size: 12px;">%s</p></div>`, disclaimer)
	textBody.WriteString("\n" + text.Wrap(disclaimer, 70) + "\n")

	return QuoteSummary{
		Subject: fmt.Sprintf("Your %d insurance quotes", total),
		HTML:    htmlBody.String(),
		Text:    textBody.String(),
	}
}

// SendQuoteSummary emails the summary of results to one visitor.
func (s *EmailService) SendQuoteSummary(ctx context.Context, to string, results []models.QuoteResult) error {
	if !s.Configured() {
		return ErrEmailNotConfigured
	}

	summary := s.BuildQuoteSummary(results)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{to},
		Subject: summary.Subject,
		Html:    summary.HTML,
		Text:    summary.Text,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("email: resend send: %w", err)
	}

	utils.SafeInfo("[Email] Quote summary sent to %s [id=%s]", to, sent.Id)
	return nil
}

func productTitle(p models.ProductLine) string {
	switch p {
	case models.ProductMedigap:
		return "Medicare Supplement"
	case models.ProductMedicareAdvantage:
		return "Medicare Advantage"
	case models.ProductDental:
		return "Dental"
	case models.ProductHospitalIndemnity:
		return "Hospital Indemnity"
	case models.ProductFinalExpense:
		return "Final Expense"
	case models.ProductCancer:
		return "Cancer"
	}
	return string(p)
}
