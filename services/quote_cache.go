package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/utils"
)

// ============================================================================
// QUOTE CACHE
// Normalized quotes keyed by SearchParams.CacheKey()
// ============================================================================

// QuoteCache stores normalized quote batches. Entries are written whole and
// never modified, so concurrent writers for one key simply overwrite each
// other.
type QuoteCache interface {
	Get(ctx context.Context, key string) (*models.QuoteCacheEntry, error)
	Set(ctx context.Context, entry *models.QuoteCacheEntry) error
	Purge(ctx context.Context) error
	CleanExpired(ctx context.Context) (int64, error)
}

// ErrCacheMiss is returned by Get when no live entry exists.
var ErrCacheMiss = errors.New("quote cache miss")

// ----------------------------------------------------------------------------
// In-memory
// ----------------------------------------------------------------------------

// MemoryQuoteCache keeps entries in process. Used when no database is
// configured, and in tests.
type MemoryQuoteCache struct {
	entries *TTLCache[string, *models.QuoteCacheEntry]
}

func NewMemoryQuoteCache(now func() time.Time) *MemoryQuoteCache {
	return &MemoryQuoteCache{entries: NewTTLCache[string, *models.QuoteCacheEntry](0, now)}
}

func (m *MemoryQuoteCache) Get(_ context.Context, key string) (*models.QuoteCacheEntry, error) {
	entry, ok := m.entries.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return entry, nil
}

func (m *MemoryQuoteCache) Set(_ context.Context, entry *models.QuoteCacheEntry) error {
	m.entries.SetUntil(entry.Key, entry, entry.ExpiresAt)
	return nil
}

func (m *MemoryQuoteCache) Purge(_ context.Context) error {
	m.entries.Purge()
	return nil
}

func (m *MemoryQuoteCache) CleanExpired(_ context.Context) (int64, error) {
	return int64(m.entries.Sweep()), nil
}

// ----------------------------------------------------------------------------
// Postgres
// ----------------------------------------------------------------------------

// PostgresQuoteCache stores entries in the quote_cache table.
type PostgresQuoteCache struct {
	DB *sql.DB
}

func NewPostgresQuoteCache(db *sql.DB) *PostgresQuoteCache {
	return &PostgresQuoteCache{DB: db}
}

func (p *PostgresQuoteCache) Get(ctx context.Context, key string) (*models.QuoteCacheEntry, error) {
	query := `SELECT cache_key, product, quotes, stats, created_at, expires_at
			  FROM quote_cache
			  WHERE cache_key = $1 AND expires_at > $2`

	var entry models.QuoteCacheEntry
	var product string
	var quotesJSON, statsJSON []byte

	err := p.DB.QueryRowContext(ctx, query, key, time.Now()).Scan(
		&entry.Key, &product, &quotesJSON, &statsJSON, &entry.CreatedAt, &entry.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quote cache: %w", err)
	}

	entry.Product = models.ProductLine(product)
	if err := json.Unmarshal(quotesJSON, &entry.Quotes); err != nil {
		return nil, fmt.Errorf("failed to decode cached quotes: %w", err)
	}
	if err := json.Unmarshal(statsJSON, &entry.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode cached stats: %w", err)
	}
	return &entry, nil
}

func (p *PostgresQuoteCache) Set(ctx context.Context, entry *models.QuoteCacheEntry) error {
	quotesJSON, err := json.Marshal(entry.Quotes)
	if err != nil {
		return fmt.Errorf("failed to encode quotes: %w", err)
	}
	statsJSON, err := json.Marshal(entry.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}

	query := `INSERT INTO quote_cache (cache_key, product, quotes, stats, created_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (cache_key) DO UPDATE SET
			      product = EXCLUDED.product,
			      quotes = EXCLUDED.quotes,
			      stats = EXCLUDED.stats,
			      created_at = EXCLUDED.created_at,
			      expires_at = EXCLUDED.expires_at`

	_, err = p.DB.ExecContext(ctx, query,
		entry.Key, string(entry.Product), quotesJSON, statsJSON, entry.CreatedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to write quote cache: %w", err)
	}
	return nil
}

func (p *PostgresQuoteCache) Purge(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, `DELETE FROM quote_cache`); err != nil {
		return fmt.Errorf("failed to purge quote cache: %w", err)
	}
	utils.SafeInfo("[Cache] 🧹 Quote cache purged")
	return nil
}

func (p *PostgresQuoteCache) CleanExpired(ctx context.Context) (int64, error) {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM quote_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean quote cache: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
