package validation

import (
	"regexp"

	"github.com/ndewijer/stock-tracker/internal/api/request"
	"github.com/ndewijer/stock-tracker/internal/pricefeed"
)

// tickerPattern matches exchange symbols such as AAPL, BRK.B, RDS-A or ^GSPC.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,14}$`)

// ValidateCreateStock checks the ticker's shape only.
// Whether the price feed knows it is checked by the stock service.
func ValidateCreateStock(req request.CreateStockRequest) error {
	ticker := pricefeed.NormalizeTicker(req.Ticker)

	switch {
	case ticker == "":
		return &Error{Fields: map[string]string{"ticker": "ticker is required"}}
	case !tickerPattern.MatchString(ticker):
		return &Error{Fields: map[string]string{"ticker": "invalid ticker: " + req.Ticker}}
	}

	return nil
}
