// Package pricefeed retrieves current share prices from external quote services.
//
// Callers must distinguish three failure modes, matched with errors.Is:
//   - ErrNetwork: the service could not be reached or answered with a server error
//   - ErrUnknownTicker: the service does not know the ticker
//   - ErrMalformedResponse: the service answered but the payload was unusable
package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNetwork           = errors.New("price feed unreachable")
	ErrUnknownTicker     = errors.New("unknown ticker")
	ErrMalformedResponse = errors.New("malformed price feed response")
)

// Quoter is the capability the application needs from a price service.
//
// ValidateTicker returns (true, nil) for a known ticker, (false, nil) for an
// unknown one and a non-nil error when the answer is unknown.
type Quoter interface {
	CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
	ValidateTicker(ctx context.Context, ticker string) (bool, error)
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func networkError(err error) error {
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// New builds the Quoter for the named provider.
func New(provider, baseURL string, opts ...Option) (Quoter, error) {
	switch provider {
	case "", "stockprices":
		return NewStockPricesClient(baseURL, opts...), nil
	case "yahoo":
		return NewYahooClient(baseURL, opts...), nil
	default:
		return nil, fmt.Errorf("unknown price provider %q", provider)
	}
}
