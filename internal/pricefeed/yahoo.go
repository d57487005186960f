package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultYahooURL is the public Yahoo Finance chart endpoint host.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooClient fetches quotes from the Yahoo Finance chart API.
type YahooClient struct {
	baseURL string
	http    httpClient
}

// yahooResponse maps the subset of the chart API response used for quotes.
//
// The structure includes:
//   - Chart.Result[].Meta: symbol metadata and the regular market price
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: close prices, used when the meta price is missing
//   - Chart.Error: optional error object from Yahoo
type yahooResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string   `json:"currency"`
				Symbol             string   `json:"symbol"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahooClient creates a client for baseURL, or the public service when empty.
func NewYahooClient(baseURL string, opts ...Option) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	c := &YahooClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(opts),
	}
	c.http.userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	return c
}

// query fetches the five-day daily chart for ticker.
// A 404 or a "Not Found" chart error is reported as ErrUnknownTicker.
func (c *YahooClient) query(ctx context.Context, ticker string) (yahooResponse, error) {
	symbol := NormalizeTicker(ticker)
	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))

	status, data, err := c.http.get(ctx, chartURL)
	if err != nil {
		return yahooResponse{}, err
	}

	var response yahooResponse
	if status == http.StatusNotFound {
		return yahooResponse{}, fmt.Errorf("%w: %s", ErrUnknownTicker, symbol)
	}
	if status != http.StatusOK {
		return yahooResponse{}, fmt.Errorf("%w: unexpected status %d", ErrNetwork, status)
	}

	if err := json.Unmarshal(data, &response); err != nil {
		return yahooResponse{}, malformed("%v", err)
	}

	if response.Chart.Error != nil {
		if response.Chart.Error.Code == "Not Found" {
			return yahooResponse{}, fmt.Errorf("%w: %s", ErrUnknownTicker, symbol)
		}
		return yahooResponse{}, malformed("yahoo error: %s", response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 {
		return yahooResponse{}, fmt.Errorf("%w: %s", ErrUnknownTicker, symbol)
	}

	return response, nil
}

// ValidateTicker reports whether Yahoo knows ticker.
func (c *YahooClient) ValidateTicker(ctx context.Context, ticker string) (bool, error) {
	_, err := c.query(ctx, ticker)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUnknownTicker):
		return false, nil
	default:
		return false, err
	}
}

// CurrentPrice returns the regular market price, falling back to the last
// non-zero daily close when the meta price is missing.
func (c *YahooClient) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	response, err := c.query(ctx, ticker)
	if err != nil {
		return decimal.Zero, err
	}

	result := response.Chart.Result[0]
	if p := result.Meta.RegularMarketPrice; p != nil && *p > 0 {
		return decimal.NewFromFloat(*p), nil
	}

	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil && *closes[i] > 0 {
				return decimal.NewFromFloat(*closes[i]), nil
			}
		}
	}

	return decimal.Zero, malformed("no price data returned for %s", NormalizeTicker(ticker))
}
