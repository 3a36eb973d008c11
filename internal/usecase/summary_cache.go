package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/budgetledger/internal/domain"
)

// SummaryCache stores computed summaries. Each user has a generation
// counter that every ledger mutation bumps, so stale entries are never
// read again and simply expire. A nil *SummaryCache caches nothing.
type SummaryCache struct {
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSummaryCache creates a new SummaryCache.
func NewSummaryCache(cache Cache, ttl time.Duration, logger zerolog.Logger) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryCacheTTL
	}
	return &SummaryCache{cache: cache, ttl: ttl, logger: logger}
}

// Key returns the cache key of filter under the user's current generation.
// Resolve it before reading the ledger and store the result under that key,
// so a summary computed before an invalidation is never filed under the
// generation that replaced it. An empty key disables caching for the call.
func (c *SummaryCache) Key(ctx context.Context, filter domain.SummaryFilter) string {
	if c == nil {
		return ""
	}

	key, ok := c.key(ctx, filter)
	if !ok {
		return ""
	}
	return key
}

// Get returns a cached summary. Cache failures count as misses.
func (c *SummaryCache) Get(ctx context.Context, key string) (*domain.Summary, bool) {
	if c == nil || key == "" {
		return nil, false
	}

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Msg("summary cache read failed")
		}
		return nil, false
	}

	var summary domain.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false
	}

	return &summary, true
}

// Put stores a summary under a key obtained from Key.
func (c *SummaryCache) Put(ctx context.Context, key string, summary *domain.Summary) {
	if c == nil || key == "" {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn().Err(err).Msg("summary cache write failed")
	}
}

// Invalidate retires every cached summary of the user.
func (c *SummaryCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}

	if _, err := c.cache.Incr(ctx, generationKey(userID)); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("summary cache invalidation failed")
	}
}

func (c *SummaryCache) key(ctx context.Context, filter domain.SummaryFilter) (string, bool) {
	gen := "0"
	data, err := c.cache.Get(ctx, generationKey(filter.OwnerID))
	switch {
	case err == nil:
		gen = string(data)
	case !errors.Is(err, ErrCacheMiss):
		// Without a generation we cannot tell fresh entries from stale ones.
		return "", false
	}

	parts := []string{"summary", filter.OwnerID, gen, timeKey(filter.From), timeKey(filter.To), "-"}
	if filter.AccountID != nil {
		parts[5] = *filter.AccountID
	}

	return strings.Join(parts, ":"), true
}

func generationKey(userID string) string {
	return "summary-gen:" + userID
}

func timeKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
