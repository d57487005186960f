package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInsufficientShares matches any *InsufficientSharesError via errors.Is.
var ErrInsufficientShares = errors.New("insufficient shares for sale")

// InsufficientSharesError is returned when a sell requests more shares than are
// open at the time of the sale.
type InsufficientSharesError struct {
	Timestamp time.Time
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("%s: sell of %s shares on %s exceeds %s open",
		ErrInsufficientShares, e.Requested, e.Timestamp.Format(time.RFC3339), e.Available)
}

func (e *InsufficientSharesError) Unwrap() error {
	return ErrInsufficientShares
}
