package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/utils"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// QUOTE SERVICE
// Cache lookup by search params, CSG fetch on miss, normalization
// ============================================================================

// DefaultQuoteCacheTTL applies when no TTL is configured.
const DefaultQuoteCacheTTL = 6 * time.Hour

// maxConcurrentFetches bounds parallel CSG calls for one visitor search.
const maxConcurrentFetches = 3

// QuoteFetcher returns the raw CSG body for a search.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, params models.SearchParams) ([]byte, error)
}

type QuoteService struct {
	fetcher  QuoteFetcher
	cache    QuoteCache
	carriers *CarrierDirectory
	ttl      time.Duration
	now      func() time.Time
}

// NewQuoteService wires the service. carriers may be nil, in which case
// carrier summaries carry no logo.
func NewQuoteService(fetcher QuoteFetcher, cache QuoteCache, carriers *CarrierDirectory, ttl time.Duration) *QuoteService {
	if ttl <= 0 {
		ttl = DefaultQuoteCacheTTL
	}
	return &QuoteService{
		fetcher:  fetcher,
		cache:    cache,
		carriers: carriers,
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetQuotes returns the normalized quotes for params, from the cache when a
// live entry exists. Only successful normalizations are cached.
func (s *QuoteService) GetQuotes(ctx context.Context, params models.SearchParams) (*models.QuoteResult, error) {
	key := params.CacheKey()

	entry, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		utils.LogQuoteRequest(string(params.Product), key, true, len(entry.Quotes))
		return s.result(ctx, entry, true), nil
	case !errors.Is(err, ErrCacheMiss):
		utils.SafeWarn("[QuoteService] ⚠️  Cache read failed, treating as miss: %v", err)
	}

	body, err := s.fetcher.FetchQuotes(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s quotes: %w", params.Product, err)
	}

	optimized, err := OptimizeResponse(params.Product, body)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s quotes: %w", params.Product, err)
	}

	now := s.now()
	entry = &models.QuoteCacheEntry{
		Key:       key,
		Product:   params.Product,
		Quotes:    optimized.Quotes,
		Stats:     optimized.Stats,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.cache.Set(ctx, entry); err != nil {
		utils.SafeWarn("[QuoteService] ⚠️  Failed to save to cache: %v", err)
	}

	utils.LogQuoteRequest(string(params.Product), key, false, len(entry.Quotes))
	return s.result(ctx, entry, false), nil
}

// GetQuotesForProducts runs one GetQuotes per params concurrently. Results
// keep the order of searches; the first failure cancels the rest.
func (s *QuoteService) GetQuotesForProducts(ctx context.Context, searches []models.SearchParams) ([]models.QuoteResult, error) {
	results := make([]models.QuoteResult, len(searches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, params := range searches {
		g.Go(func() error {
			result, err := s.GetQuotes(gctx, params)
			if err != nil {
				return err
			}
			results[i] = *result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// PurgeCache drops every cached quote batch.
func (s *QuoteService) PurgeCache(ctx context.Context) error {
	return s.cache.Purge(ctx)
}

// CleanExpiredCache removes expired cache entries.
func (s *QuoteService) CleanExpiredCache(ctx context.Context) error {
	rows, err := s.cache.CleanExpired(ctx)
	if err != nil {
		return err
	}
	utils.SafeInfo("[QuoteService] 🧹 Cleaned %d expired cache entries", rows)
	return nil
}

func (s *QuoteService) result(ctx context.Context, entry *models.QuoteCacheEntry, cached bool) *models.QuoteResult {
	var logo func(string) string
	if s.carriers != nil {
		logo = s.carriers.LogoFunc(ctx, entry.Product)
	}
	quotes := entry.Quotes
	if quotes == nil {
		quotes = []models.NormalizedQuote{}
	}
	return &models.QuoteResult{
		Product:   entry.Product,
		Quotes:    quotes,
		Carriers:  SummarizeCarriers(quotes, logo),
		Stats:     entry.Stats,
		Cached:    cached,
		FetchedAt: entry.CreatedAt,
	}
}
