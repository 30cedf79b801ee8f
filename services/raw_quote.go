package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/LovationAdmin/quote-api/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// rawRecord is the only way the optimizers read CSG payloads. Every lookup
// tries the snake_case key, then its camelCase spelling, and falls back to a
// zero value instead of failing.
type rawRecord map[string]any

func asRecord(v any) rawRecord {
	switch m := v.(type) {
	case map[string]any:
		return rawRecord(m)
	case rawRecord:
		return m
	case models.RawQuote:
		return rawRecord(m)
	}
	return nil
}

// lookup walks a dotted path ("company_base.name"). The first alias that
// resolves to a non-nil value wins.
func (r rawRecord) lookup(paths ...string) (any, bool) {
	for _, path := range paths {
		if v, ok := r.walk(strings.Split(path, ".")); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r rawRecord) walk(segments []string) (any, bool) {
	if r == nil || len(segments) == 0 {
		return nil, false
	}
	head := segments[0]
	v, ok := r[head]
	if !ok || v == nil {
		v, ok = r[camelCase(head)]
	}
	if !ok {
		return nil, false
	}
	if len(segments) == 1 {
		return v, true
	}
	return asRecord(v).walk(segments[1:])
}

func (r rawRecord) str(paths ...string) string {
	v, ok := r.lookup(paths...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(toString(v))
}

func (r rawRecord) num(paths ...string) float64 {
	n, _ := r.numOK(paths...)
	return n
}

func (r rawRecord) numOK(paths ...string) (float64, bool) {
	for _, path := range paths {
		v, ok := r.lookup(path)
		if !ok {
			continue
		}
		if n, ok := toFloat(v); ok {
			return n, true
		}
	}
	return 0, false
}

func (r rawRecord) boolean(paths ...string) bool {
	v, ok := r.lookup(paths...)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true
		}
	case float64:
		return b != 0
	}
	return false
}

func (r rawRecord) record(paths ...string) rawRecord {
	v, ok := r.lookup(paths...)
	if !ok {
		return nil
	}
	return asRecord(v)
}

func (r rawRecord) records(paths ...string) []rawRecord {
	v, ok := r.lookup(paths...)
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]rawRecord, 0, len(list))
	for _, item := range list {
		if rec := asRecord(item); rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

func (r rawRecord) strs(paths ...string) []string {
	v, ok := r.lookup(paths...)
	if !ok {
		return []string{}
	}
	list, ok := v.([]any)
	if !ok {
		if s := strings.TrimSpace(toString(v)); s != "" {
			return []string{s}
		}
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		var s string
		if rec := asRecord(item); rec != nil {
			s = rec.str("name", "type", "description")
		} else {
			s = strings.TrimSpace(toString(item))
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ============================================================================
// SCALAR CONVERSION
// ============================================================================

func camelCase(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// toFloat accepts numbers and numeric strings such as "$1,000.00" or "20%".
// NaN and infinities count as unparseable.
func toFloat(v any) (float64, bool) {
	f, ok := parseNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(strings.TrimSpace(n))
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ============================================================================
// PREMIUMS
// ============================================================================

// modeDivisor converts a billing mode to the number of monthly payments it covers.
func modeDivisor(mode string) int64 {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "annual", "annually", "year", "yearly":
		return 12
	case "semi_annual", "semi-annual", "semiannual", "semi_annually":
		return 6
	case "quarter", "quarterly":
		return 3
	default:
		return 1
	}
}

// toMonthly converts an amount billed per mode to a monthly amount in dollars.
func toMonthly(amount float64, mode string) float64 {
	monthly := decimal.NewFromFloat(amount).Div(decimal.NewFromInt(modeDivisor(mode))).Round(2)
	f, _ := monthly.Float64()
	return f
}

func centsToDollars(cents float64) float64 {
	f, _ := decimal.NewFromFloat(cents).Div(decimal.NewFromInt(100)).Round(2).Float64()
	return f
}

// ratePremium reads CSG's rate object ({"month": 10523, "annual": ...}),
// which is expressed in cents.
func ratePremium(rate rawRecord) (float64, bool) {
	if rate == nil {
		return 0, false
	}
	if month, ok := rate.numOK("month", "monthly"); ok {
		return centsToDollars(month), true
	}
	for _, mode := range []string{"quarter", "semi_annual", "annual"} {
		if v, ok := rate.numOK(mode); ok {
			return toMonthly(centsToDollars(v), mode), true
		}
	}
	return 0, false
}

// monthlyPremium tries every premium spelling CSG uses across product lines.
// Dollar fields win over cent fields; absent premiums yield 0.
func monthlyPremium(r rawRecord) float64 {
	if p, ok := r.numOK("monthly_premium", "monthly_rate", "premium_monthly"); ok {
		return p
	}
	if rate := r.record("rate"); rate != nil {
		if p, ok := ratePremium(rate); ok {
			return p
		}
	}
	if cents, ok := r.numOK("month_rate"); ok {
		return centsToDollars(cents)
	}
	if p, ok := r.numOK("premium", "rate"); ok {
		return toMonthly(p, r.str("premium_mode", "mode"))
	}
	return 0
}

// ============================================================================
// COMPANY & IDENTITY
// ============================================================================

type companyInfo struct {
	Name     string
	FullName string
	AMBest   string
	Outlook  string
}

func extractCompany(r rawRecord) companyInfo {
	base := r.record("company_base", "company")
	info := companyInfo{
		Name:     base.str("name"),
		FullName: base.str("name_full", "full_name"),
		AMBest:   base.str("ambest_rating"),
		Outlook:  base.str("ambest_outlook"),
	}
	if info.Name == "" {
		info.Name = r.str("company_name", "organization_name", "carrier_name", "carrier")
	}
	if info.FullName == "" {
		info.FullName = info.Name
	}
	if info.AMBest == "" {
		info.AMBest = r.str("ambest_rating", "am_best_rating")
	}
	return info
}

var quoteNamespace = uuid.MustParse("6f1c9a2e-7b3d-5e48-9a61-2c0d4e8b7f35")

// quoteID keeps the upstream key when present; otherwise it derives a
// name-based UUID so the same raw record always gets the same ID.
func quoteID(r rawRecord, product models.ProductLine, company, plan string, premium float64) string {
	if id := r.str("key", "id", "plan_key", "plan_id"); id != "" {
		return id
	}
	seed := fmt.Sprintf("%s|%s|%s|%.2f", product, company, plan, premium)
	return uuid.NewSHA1(quoteNamespace, []byte(seed)).String()
}
