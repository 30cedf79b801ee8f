package services

import (
	"context"
	"strings"

	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/utils"
)

// CompanyFetcher lists the carriers of a product line.
type CompanyFetcher interface {
	FetchCompanies(ctx context.Context, product models.ProductLine) ([]Company, error)
}

// CarrierDirectory resolves carrier logos. Company lists are cached per
// product line in the TTLCache it is given.
type CarrierDirectory struct {
	fetcher CompanyFetcher
	cache   *TTLCache[models.ProductLine, map[string]Company]
}

func NewCarrierDirectory(fetcher CompanyFetcher, cache *TTLCache[models.ProductLine, map[string]Company]) *CarrierDirectory {
	return &CarrierDirectory{fetcher: fetcher, cache: cache}
}

func companyKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Companies returns the carriers of product indexed by lower-cased name.
// A failed lookup is logged and yields an empty, uncached directory.
func (d *CarrierDirectory) Companies(ctx context.Context, product models.ProductLine) map[string]Company {
	if byName, ok := d.cache.Get(product); ok {
		return byName
	}

	companies, err := d.fetcher.FetchCompanies(ctx, product)
	if err != nil {
		utils.SafeWarn("[Carriers] ⚠️  Failed to load %s companies: %v", product, err)
		return map[string]Company{}
	}

	byName := make(map[string]Company, len(companies)*2)
	for _, c := range companies {
		if c.Name != "" {
			byName[companyKey(c.Name)] = c
		}
		if c.FullName != "" {
			if _, taken := byName[companyKey(c.FullName)]; !taken {
				byName[companyKey(c.FullName)] = c
			}
		}
	}
	d.cache.Set(product, byName)
	return byName
}

// LogoFunc returns a lookup usable with SummarizeCarriers.
func (d *CarrierDirectory) LogoFunc(ctx context.Context, product models.ProductLine) func(name string) string {
	byName := d.Companies(ctx, product)
	return func(name string) string {
		return byName[companyKey(name)].Logo
	}
}
