package services

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/LovationAdmin/quote-api/models"

	"gopkg.in/yaml.v3"
)

//go:embed required_fields.yaml
var requiredFieldsYAML []byte

type productFieldRule struct {
	Required     []models.FormField                      `yaml:"required"`
	Alternatives map[models.FormField][]models.FormField `yaml:"alternatives"`
}

// FieldRules is the per-product required-field table.
type FieldRules struct {
	Defaults []models.FormField                      `yaml:"defaults"`
	Products map[models.ProductLine]productFieldRule `yaml:"products"`
}

var defaultFieldRules = mustParseFieldRules(requiredFieldsYAML)

// ParseFieldRules decodes a rule table and checks that it only names known
// products and fields.
func ParseFieldRules(data []byte) (*FieldRules, error) {
	var rules FieldRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse field rules: %w", err)
	}
	for product, rule := range rules.Products {
		if !product.Valid() {
			return nil, fmt.Errorf("field rules: unknown product %q", product)
		}
		for _, f := range rule.Required {
			if !slices.Contains(models.FormFields, f) {
				return nil, fmt.Errorf("field rules: %s: unknown field %q", product, f)
			}
		}
		for f, alts := range rule.Alternatives {
			for _, alt := range append([]models.FormField{f}, alts...) {
				if !slices.Contains(models.FormFields, alt) {
					return nil, fmt.Errorf("field rules: %s: unknown field %q", product, alt)
				}
			}
		}
	}
	return &rules, nil
}

func mustParseFieldRules(data []byte) *FieldRules {
	rules, err := ParseFieldRules(data)
	if err != nil {
		panic(err)
	}
	return rules
}

// RequiredFields returns the union of the fields the selected products need,
// in form order. It depends on the selection only.
func (fr *FieldRules) RequiredFields(products []models.ProductLine) []models.FormField {
	needed := map[models.FormField]bool{}
	for _, p := range products {
		for _, f := range fr.Products[p].Required {
			needed[f] = true
		}
	}
	out := make([]models.FormField, 0, len(needed))
	for _, f := range models.FormFields {
		if needed[f] {
			out = append(out, f)
		}
	}
	return out
}

// MissingFields lists the required fields of product that form leaves
// empty. Defaulted fields are never missing.
func (fr *FieldRules) MissingFields(product models.ProductLine, form models.FormInput) []models.FormField {
	rule := fr.Products[product]
	missing := []models.FormField{}
	for _, f := range fr.RequiredFields([]models.ProductLine{product}) {
		if slices.Contains(fr.Defaults, f) || hasFormValue(form, f) {
			continue
		}
		satisfied := false
		for _, alt := range rule.Alternatives[f] {
			if hasFormValue(form, alt) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			missing = append(missing, f)
		}
	}
	return missing
}

// RequiredFields computes the required form fields for the current category
// selection with the built-in rule table.
func RequiredFields(products []models.ProductLine) []models.FormField {
	return defaultFieldRules.RequiredFields(products)
}

// MissingFields reports the empty required fields of one product with the
// built-in rule table.
func MissingFields(product models.ProductLine, form models.FormInput) []models.FormField {
	return defaultFieldRules.MissingFields(product, form)
}
