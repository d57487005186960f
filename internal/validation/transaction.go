package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/stock-tracker/internal/api/request"
	"github.com/ndewijer/stock-tracker/internal/ledger"
)

// ValidateCreateTransaction validates a transaction creation request.
//
// Required fields:
//   - type: buy or sell
//   - shares: must be positive
//   - pricePerShare: must not be negative
//
// Optional fields (validated if provided):
//   - timestamp: RFC 3339 or YYYY-MM-DD
//
// Whether a sell is covered by the shares held is decided by the ledger,
// not here.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	validateType(errors, req.Type)

	if req.Shares == nil {
		errors["shares"] = "shares is required"
	} else {
		validateShares(errors, *req.Shares)
	}

	if req.PricePerShare == nil {
		errors["pricePerShare"] = "pricePerShare is required"
	} else {
		validatePrice(errors, *req.PricePerShare)
	}

	if strings.TrimSpace(req.Timestamp) != "" {
		validateTimestamp(errors, req.Timestamp)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateTransaction validates a transaction update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateTransaction(req request.UpdateTransactionRequest) error {
	errors := make(map[string]string)

	if req.Type != nil {
		validateType(errors, *req.Type)
	}
	if req.Shares != nil {
		validateShares(errors, *req.Shares)
	}
	if req.PricePerShare != nil {
		validatePrice(errors, *req.PricePerShare)
	}
	if req.Timestamp != nil {
		validateTimestamp(errors, *req.Timestamp)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func validateType(errors map[string]string, value string) {
	if strings.TrimSpace(value) == "" {
		errors["type"] = "type is required"
	} else if !ledger.Kind(value).Valid() {
		errors["type"] = fmt.Sprintf("invalid type: %s", value)
	}
}

// Bounds on share and price inputs. The exponent checks run before any
// comparison because comparing decimals rescales them to a common exponent.
const (
	MaxDecimalPlaces = 18
	maxExponent      = 15
)

var maxAmount = decimal.New(1, maxExponent)

func validateAmount(errors map[string]string, field string, value decimal.Decimal) bool {
	switch exp := value.Exponent(); {
	case exp < -MaxDecimalPlaces:
		errors[field] = fmt.Sprintf("%s must have at most %d decimal places", field, MaxDecimalPlaces)
		return false
	case exp > maxExponent, value.Abs().GreaterThanOrEqual(maxAmount):
		errors[field] = fmt.Sprintf("%s must be less than %s", field, maxAmount.String())
		return false
	}
	return true
}

func validateShares(errors map[string]string, shares decimal.Decimal) {
	if !validateAmount(errors, "shares", shares) {
		return
	}
	if !shares.IsPositive() {
		errors["shares"] = "shares must be positive"
	}
}

func validatePrice(errors map[string]string, price decimal.Decimal) {
	if !validateAmount(errors, "pricePerShare", price) {
		return
	}
	if price.IsNegative() {
		errors["pricePerShare"] = "pricePerShare must not be negative"
	}
}

func validateTimestamp(errors map[string]string, value string) {
	if _, err := ParseTimestamp(value); err != nil {
		errors["timestamp"] = err.Error()
	}
}
