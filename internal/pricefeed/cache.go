package pricefeed

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type cachedQuote struct {
	price   decimal.Decimal
	fetched time.Time
}

// DefaultFetchTimeout bounds a shared upstream lookup.
const DefaultFetchTimeout = 10 * time.Second

// CachedQuoter wraps a Quoter with a TTL cache for prices.
// Concurrent lookups of the same ticker share a single upstream request that
// does not inherit any one caller's cancellation. Failures are never cached.
// Ticker validation is passed through.
type CachedQuoter struct {
	next         Quoter
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	group        singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

// NewCachedQuoter creates a cache in front of next.
func NewCachedQuoter(next Quoter, ttl time.Duration) *CachedQuoter {
	return &CachedQuoter{
		next:         next,
		ttl:          ttl,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		cache:        make(map[string]cachedQuote),
	}
}

// WithFetchTimeout overrides the deadline of a shared upstream lookup.
func (c *CachedQuoter) WithFetchTimeout(d time.Duration) *CachedQuoter {
	if d > 0 {
		c.fetchTimeout = d
	}
	return c
}

// CurrentPrice returns a cached price younger than the TTL or fetches a fresh one.
func (c *CachedQuoter) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	symbol := NormalizeTicker(ticker)

	c.mu.RLock()
	q, ok := c.cache[symbol]
	c.mu.RUnlock()
	if ok && c.now().Sub(q.fetched) < c.ttl {
		return q.price, nil
	}

	return c.fetch(ctx, symbol)
}

// Refresh fetches a fresh price for ticker regardless of the cached age.
func (c *CachedQuoter) Refresh(ctx context.Context, ticker string) error {
	_, err := c.fetch(ctx, NormalizeTicker(ticker))
	return err
}

func (c *CachedQuoter) fetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ch := c.group.DoChan(symbol, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		price, err := c.next.CurrentPrice(fetchCtx, symbol)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[symbol] = cachedQuote{price: price, fetched: c.now()}
		c.mu.Unlock()

		return price, nil
	})

	select {
	case <-ctx.Done():
		return decimal.Zero, networkError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return decimal.Zero, res.Err
		}
		return res.Val.(decimal.Decimal), nil
	}
}

// ValidateTicker delegates to the wrapped Quoter.
func (c *CachedQuoter) ValidateTicker(ctx context.Context, ticker string) (bool, error) {
	return c.next.ValidateTicker(ctx, ticker)
}
