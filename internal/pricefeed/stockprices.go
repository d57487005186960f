package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultStockPricesURL is the public stockprices.dev endpoint.
const DefaultStockPricesURL = "https://stockprices.dev"

// StockPricesClient fetches quotes from the stockprices.dev API.
//
// GET {base}/api/stocks/{ticker} answers 200 with a JSON quote for known
// tickers and 404 for unknown ones.
type StockPricesClient struct {
	baseURL string
	http    httpClient
}

// stockPricesQuote is the JSON payload returned by stockprices.dev.
type stockPricesQuote struct {
	Ticker string           `json:"Ticker"`
	Name   string           `json:"Name"`
	Price  *decimal.Decimal `json:"Price"`
}

// NewStockPricesClient creates a client for baseURL, or the public service when empty.
func NewStockPricesClient(baseURL string, opts ...Option) *StockPricesClient {
	if baseURL == "" {
		baseURL = DefaultStockPricesURL
	}
	return &StockPricesClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(opts),
	}
}

func (c *StockPricesClient) quoteURL(ticker string) string {
	return fmt.Sprintf("%s/api/stocks/%s", c.baseURL, url.PathEscape(NormalizeTicker(ticker)))
}

// ValidateTicker reports whether the service knows ticker.
// Any status other than 200 or 404 leaves the answer unknown and returns an error.
func (c *StockPricesClient) ValidateTicker(ctx context.Context, ticker string) (bool, error) {
	status, _, err := c.http.get(ctx, c.quoteURL(ticker))
	if err != nil {
		return false, err
	}

	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: unexpected status %d", ErrNetwork, status)
	}
}

// CurrentPrice returns the latest price for ticker.
func (c *StockPricesClient) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	status, data, err := c.http.get(ctx, c.quoteURL(ticker))
	if err != nil {
		return decimal.Zero, err
	}

	switch {
	case status == http.StatusNotFound:
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownTicker, NormalizeTicker(ticker))
	case status != http.StatusOK:
		return decimal.Zero, fmt.Errorf("%w: unexpected status %d", ErrNetwork, status)
	}

	var quote stockPricesQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return decimal.Zero, malformed("%v", err)
	}
	if quote.Price == nil {
		return decimal.Zero, malformed("missing Price for %s", NormalizeTicker(ticker))
	}
	if quote.Price.IsNegative() {
		return decimal.Zero, malformed("negative Price %s for %s", quote.Price, NormalizeTicker(ticker))
	}

	return *quote.Price, nil
}
