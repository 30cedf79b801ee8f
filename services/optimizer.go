package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/utils"
)

// ErrUnknownProduct is returned for product lines without an extractor.
var ErrUnknownProduct = errors.New("unknown product line")

// NoBenefitFoundError means a quote had no benefit to price it from, on a
// product line where the premium cannot be defaulted.
type NoBenefitFoundError struct {
	Product models.ProductLine
	QuoteID string
	Company string
}

func (e *NoBenefitFoundError) Error() string {
	return fmt.Sprintf("no benefit found for %s quote %q (%s)", e.Product, e.QuoteID, e.Company)
}

// Extractor turns one raw quote into its normalized form.
type Extractor func(raw models.RawQuote) (models.NormalizedQuote, error)

var extractors = map[models.ProductLine]Extractor{
	models.ProductDental:            ExtractDentalQuote,
	models.ProductHospitalIndemnity: ExtractHospitalIndemnityQuote,
	models.ProductFinalExpense:      ExtractFinalExpenseQuote,
	models.ProductCancer:            ExtractCancerQuote,
	models.ProductMedicareAdvantage: ExtractMedicareAdvantageQuote,
	models.ProductMedigap:           ExtractMedigapQuote,
}

// ExtractQuote dispatches to the product line's extractor.
func ExtractQuote(product models.ProductLine, raw models.RawQuote) (models.NormalizedQuote, error) {
	extract, ok := extractors[product]
	if !ok {
		return models.NormalizedQuote{}, fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}
	return extract(raw)
}

// OptimizedQuotes is the output of a batch normalization.
type OptimizedQuotes struct {
	Quotes []models.NormalizedQuote
	Stats  models.OptimizationStats
}

// OptimizeQuotes normalizes a batch. Quotes that cannot be priced are
// skipped and counted; any other extraction error aborts the batch.
func OptimizeQuotes(product models.ProductLine, raws []models.RawQuote) (*OptimizedQuotes, error) {
	if _, ok := extractors[product]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}

	quotes := make([]models.NormalizedQuote, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		q, err := ExtractQuote(product, raw)
		if err != nil {
			var noBenefit *NoBenefitFoundError
			if errors.As(err, &noBenefit) {
				utils.SafeWarn("[Optimizer] skipping quote: %v", err)
				skipped++
				continue
			}
			return nil, err
		}
		quotes = append(quotes, q)
	}

	return &OptimizedQuotes{
		Quotes: quotes,
		Stats: models.OptimizationStats{
			OriginalCount:  len(raws),
			OptimizedCount: len(quotes),
			Skipped:        skipped,
		},
	}, nil
}

// OptimizeResponse decodes a CSG response body and normalizes it, filling in
// the byte-size statistics.
func OptimizeResponse(product models.ProductLine, body []byte) (*OptimizedQuotes, error) {
	raws, err := DecodeRawQuotes(body)
	if err != nil {
		return nil, err
	}

	optimized, err := OptimizeQuotes(product, raws)
	if err != nil {
		return nil, err
	}

	compact, err := json.Marshal(optimized.Quotes)
	if err != nil {
		return nil, fmt.Errorf("failed to measure optimized quotes: %w", err)
	}
	optimized.Stats.OriginalBytes = len(body)
	optimized.Stats.OptimizedBytes = len(compact)
	optimized.Stats.CompressionRatio = compressionRatio(len(body), len(compact))

	return optimized, nil
}

// compressionRatio is the percentage of bytes saved by normalization,
// rounded to one decimal.
func compressionRatio(original, optimized int) float64 {
	if original <= 0 {
		return 0
	}
	saved := (1 - float64(optimized)/float64(original)) * 100
	return math.Round(saved*10) / 10
}

// DecodeRawQuotes accepts either a top-level array or an object wrapping the
// array under "quotes", "plans" or "results".
func DecodeRawQuotes(body []byte) ([]models.RawQuote, error) {
	var list []models.RawQuote
	if err := json.Unmarshal(body, &list); err == nil {
		if list == nil {
			list = []models.RawQuote{}
		}
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode quotes: %w", err)
	}
	for _, key := range []string{"quotes", "plans", "results"} {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
		if list == nil {
			list = []models.RawQuote{}
		}
		return list, nil
	}
	return []models.RawQuote{}, nil
}
