// Package summary caches remote category summaries per date range and falls
// back to a locally computed breakdown when the remote side has none.
package summary

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/sales-atlas/pkg/clock"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/aggregation"
	"github.com/de-tools/sales-atlas/pkg/services/debounce"
	"github.com/rs/zerolog"
)

type Fetcher interface {
	FetchCategorySummary(ctx context.Context, start, end time.Time) (domain.CategorySummary, error)
}

// Entry is the cached outcome for one date range. Fallback entries carry no
// categories; the breakdown is derived from the current totals on read.
type Entry struct {
	Key       string
	Start     time.Time
	End       time.Time
	Summary   domain.CategorySummary
	Fallback  bool
	Err       error
	FetchedAt time.Time
}

// Key identifies a date range, e.g. "2025-06-02|2025-06-08"
func Key(start, end time.Time) string {
	return start.Format(domain.DateLayout) + "|" + end.Format(domain.DateLayout)
}

type Cache struct {
	mu         sync.Mutex
	ctx        context.Context
	fetcher    Fetcher
	clock      clock.Clock
	debouncer  *debounce.Debouncer
	entries    map[string]Entry
	latest     string
	cancel     context.CancelFunc
	generation uint64
	fetches    int
	closed     bool
}

// NewCache binds the cache to ctx; its logger is used for fetch failures
func NewCache(ctx context.Context, fetcher Fetcher, c clock.Clock, delay time.Duration) *Cache {
	if c == nil {
		c = clock.Real()
	}
	return &Cache{
		ctx:       ctx,
		fetcher:   fetcher,
		clock:     c,
		debouncer: debounce.New(c, delay),
		entries:   make(map[string]Entry),
	}
}

// Request schedules a fetch for the range. Bursts collapse into one fetch for
// the final range, and the last issued range is never fetched twice in a row.
func (c *Cache) Request(start, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	start, end = domain.TruncateDate(start), domain.TruncateDate(end)
	c.debouncer.Trigger(Key(start, end), func(key string) {
		c.fetch(key, start, end)
	})
}

func (c *Cache) fetch(key string, start, end time.Time) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.generation++
	generation := c.generation
	c.fetches++
	c.mu.Unlock()

	defer cancel()

	logger := zerolog.Ctx(c.ctx)
	summary, err := c.fetcher.FetchCategorySummary(ctx, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || generation != c.generation {
		logger.Debug().Str("range", key).Msg("discarding stale category summary")
		return
	}
	c.cancel = nil

	entry := Entry{
		Key:       key,
		Start:     start,
		End:       end,
		FetchedAt: c.clock.Now(),
	}
	switch {
	case err != nil:
		entry.Fallback = true
		entry.Err = &domain.RemoteFetchError{Op: "fetch category summary", Err: err}
		logger.Warn().Err(err).Str("range", key).Msg("category summary unavailable, using local breakdown")
		c.debouncer.Forget(key)
	case len(summary.Categories) == 0:
		entry.Fallback = true
		entry.Summary = summary
		logger.Debug().Str("range", key).Msg("category summary is empty, using local breakdown")
	default:
		entry.Summary = summary
	}
	c.entries[key] = entry
	c.latest = key
}

func (c *Cache) Get(start, end time.Time) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[Key(domain.TruncateDate(start), domain.TruncateDate(end))]
	return entry, ok
}

// Latest returns the most recently stored entry
func (c *Cache) Latest() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == "" {
		return Entry{}, false
	}
	entry, ok := c.entries[c.latest]
	return entry, ok
}

// Categories never returns an empty breakdown: remote categories when the
// range has them, the local three-category breakdown otherwise.
func (c *Cache) Categories(start, end time.Time, totals domain.WeeklyTotals) []domain.CategoryAmount {
	entry, ok := c.Get(start, end)
	if !ok || entry.Fallback || len(entry.Summary.Categories) == 0 {
		return aggregation.FallbackCategories(totals)
	}
	return append([]domain.CategoryAmount(nil), entry.Summary.Categories...)
}

// Fetches reports how many remote fetches were issued
func (c *Cache) Fetches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

// Close cancels the pending timer and any in-flight fetch. Results arriving
// afterwards are dropped. Safe to call more than once.
func (c *Cache) Close() {
	c.debouncer.Reset()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
