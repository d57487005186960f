package pricefeed

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// TickerSource lists the tickers whose prices should be kept warm.
type TickerSource interface {
	GetTrackedTickers(ctx context.Context) ([]string, error)
}

// Refresher periodically re-quotes every tracked ticker into a CachedQuoter.
type Refresher struct {
	cron    *cron.Cron
	cache   *CachedQuoter
	source  TickerSource
	timeout time.Duration
}

// NewRefresher schedules a refresh of all tracked tickers on the given cron spec
// (standard five-field syntax or descriptors such as "@every 5m").
func NewRefresher(spec string, cache *CachedQuoter, source TickerSource, timeout time.Duration) (*Refresher, error) {
	r := &Refresher{
		cron:    cron.New(),
		cache:   cache,
		source:  source,
		timeout: timeout,
	}

	if _, err := r.cron.AddFunc(spec, func() { r.RefreshAll(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	return r, nil
}

// Start runs the scheduler in its own goroutine.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// RefreshAll re-quotes every tracked ticker and returns how many succeeded.
// Individual failures are logged and do not stop the run.
func (r *Refresher) RefreshAll(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tickers, err := r.source.GetTrackedTickers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("price refresh: failed to list tracked tickers")
		return 0
	}

	refreshed := 0
	for _, ticker := range tickers {
		if err := r.cache.Refresh(ctx, ticker); err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("price refresh failed")
			continue
		}
		refreshed++
	}

	log.Debug().Int("tickers", len(tickers)).Int("refreshed", refreshed).Msg("price refresh complete")
	return refreshed
}
