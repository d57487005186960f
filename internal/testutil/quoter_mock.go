package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/stock-tracker/internal/pricefeed"
)

// StubQuoter is an in-memory pricefeed.Quoter for tests.
// Tickers without a configured price are unknown to it.
type StubQuoter struct {
	mu          sync.Mutex
	prices      map[string]decimal.Decimal
	errors      map[string]error
	validateErr error
	calls       map[string]int
}

// NewStubQuoter creates a StubQuoter that knows no tickers.
func NewStubQuoter() *StubQuoter {
	return &StubQuoter{
		prices: map[string]decimal.Decimal{},
		errors: map[string]error{},
		calls:  map[string]int{},
	}
}

// WithPrice makes ticker known with the given decimal price.
func (q *StubQuoter) WithPrice(ticker, price string) *StubQuoter {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prices[ticker] = decimal.RequireFromString(price)
	return q
}

// WithError makes CurrentPrice fail for ticker.
func (q *StubQuoter) WithError(ticker string, err error) *StubQuoter {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errors[ticker] = err
	return q
}

// WithValidateError makes ValidateTicker fail for every ticker.
func (q *StubQuoter) WithValidateError(err error) *StubQuoter {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.validateErr = err
	return q
}

// Calls returns how often CurrentPrice was called for ticker.
func (q *StubQuoter) Calls(ticker string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls[ticker]
}

func (q *StubQuoter) CurrentPrice(_ context.Context, ticker string) (decimal.Decimal, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.calls[ticker]++
	if err, ok := q.errors[ticker]; ok {
		return decimal.Zero, err
	}
	price, ok := q.prices[ticker]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", pricefeed.ErrUnknownTicker, ticker)
	}
	return price, nil
}

func (q *StubQuoter) ValidateTicker(_ context.Context, ticker string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.validateErr != nil {
		return false, q.validateErr
	}
	_, ok := q.prices[ticker]
	return ok, nil
}
