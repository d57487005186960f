// Package ledger implements FIFO cost-basis accounting for a single stock position.
// Every function recomputes from the raw transaction history; nothing is cached
// between calls, so results are always consistent with the input.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the direction of a transaction.
type Kind string

const (
	Buy  Kind = "buy"
	Sell Kind = "sell"
)

// Valid reports whether k is a known transaction kind.
func (k Kind) Valid() bool {
	return k == Buy || k == Sell
}

var hundred = decimal.NewFromInt(100)

// ErrInvalidTransaction indicates a transaction with non-positive shares,
// a negative price or an unknown kind.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Transaction is the ledger's view of a recorded buy or sell.
type Transaction struct {
	Kind          Kind
	Shares        decimal.Decimal
	PricePerShare decimal.Decimal
	Timestamp     time.Time
}

// Lot is an open batch of shares acquired at a single unit cost.
type Lot struct {
	Shares     decimal.Decimal `json:"shares"`
	UnitCost   decimal.Decimal `json:"unitCost"`
	AcquiredAt time.Time       `json:"acquiredAt"`
}

// Cost returns the cost basis of the shares remaining in the lot.
func (l Lot) Cost() decimal.Decimal {
	return l.Shares.Mul(l.UnitCost)
}

// Summary holds every derived figure for a position at a given price.
// GainPercent is nil when TotalInvested is zero.
type Summary struct {
	Lots           []Lot
	SharesOwned    decimal.Decimal
	TotalInvested  decimal.Decimal
	AverageCost    decimal.Decimal
	CurrentPrice   decimal.Decimal
	CurrentValue   decimal.Decimal
	UnrealizedGain decimal.Decimal
	GainPercent    *decimal.Decimal
	RealizedGain   decimal.Decimal
}

// chronological returns a copy of txs stable-sorted by timestamp, so that
// transactions sharing a timestamp keep their insertion order.
func chronological(txs []Transaction) []Transaction {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

func validate(tx Transaction) error {
	if !tx.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, tx.Kind)
	}
	if !tx.Shares.IsPositive() {
		return fmt.Errorf("%w: shares must be positive, got %s", ErrInvalidTransaction, tx.Shares)
	}
	if tx.PricePerShare.IsNegative() {
		return fmt.Errorf("%w: price must not be negative, got %s", ErrInvalidTransaction, tx.PricePerShare)
	}
	return nil
}

// match walks the history once and returns the remaining FIFO queue together with
// the gain realized by sells (proceeds minus the cost of the consumed lots).
func match(txs []Transaction) ([]Lot, decimal.Decimal, error) {
	var lots []Lot
	realized := decimal.Zero

	for _, tx := range chronological(txs) {
		if err := validate(tx); err != nil {
			return nil, decimal.Zero, err
		}

		switch tx.Kind {
		case Buy:
			lots = append(lots, Lot{Shares: tx.Shares, UnitCost: tx.PricePerShare, AcquiredAt: tx.Timestamp})
		case Sell:
			available := sumShares(lots)
			if tx.Shares.GreaterThan(available) {
				return nil, decimal.Zero, &InsufficientSharesError{
					Timestamp: tx.Timestamp,
					Requested: tx.Shares,
					Available: available,
				}
			}

			need := tx.Shares
			consumedCost := decimal.Zero
			for need.IsPositive() {
				head := &lots[0]
				if head.Shares.GreaterThan(need) {
					consumedCost = consumedCost.Add(need.Mul(head.UnitCost))
					head.Shares = head.Shares.Sub(need)
					need = decimal.Zero
				} else {
					consumedCost = consumedCost.Add(head.Cost())
					need = need.Sub(head.Shares)
					lots = lots[1:]
				}
			}
			realized = realized.Add(tx.Shares.Mul(tx.PricePerShare).Sub(consumedCost))
		}
	}

	return lots, realized, nil
}

func sumShares(lots []Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Shares)
	}
	return total
}

func sumCost(lots []Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Cost())
	}
	return total
}

// OpenLots returns the lots still held after applying txs in chronological order.
// A sell that exceeds the shares open at that point returns *InsufficientSharesError.
func OpenLots(txs []Transaction) ([]Lot, error) {
	lots, _, err := match(txs)
	return lots, err
}

// Validate checks that txs can be applied without over-selling.
func Validate(txs []Transaction) error {
	_, _, err := match(txs)
	return err
}

// SharesOwned returns the number of shares currently held.
func SharesOwned(txs []Transaction) (decimal.Decimal, error) {
	lots, err := OpenLots(txs)
	if err != nil {
		return decimal.Zero, err
	}
	return sumShares(lots), nil
}

// TotalInvested returns the cost basis of the shares currently held.
// Sold lots are excluded.
func TotalInvested(txs []Transaction) (decimal.Decimal, error) {
	lots, err := OpenLots(txs)
	if err != nil {
		return decimal.Zero, err
	}
	return sumCost(lots), nil
}

// AverageCost returns the cost basis per held share, or zero when nothing is held.
func AverageCost(txs []Transaction) (decimal.Decimal, error) {
	lots, err := OpenLots(txs)
	if err != nil {
		return decimal.Zero, err
	}
	return averageCost(sumCost(lots), sumShares(lots)), nil
}

func averageCost(invested, shares decimal.Decimal) decimal.Decimal {
	if shares.IsZero() {
		return decimal.Zero
	}
	return invested.Div(shares)
}

// CurrentValue returns the market value of the held shares at price.
func CurrentValue(txs []Transaction, price decimal.Decimal) (decimal.Decimal, error) {
	shares, err := SharesOwned(txs)
	if err != nil {
		return decimal.Zero, err
	}
	return shares.Mul(price), nil
}

// UnrealizedGain returns current value minus cost basis.
func UnrealizedGain(txs []Transaction, price decimal.Decimal) (decimal.Decimal, error) {
	lots, err := OpenLots(txs)
	if err != nil {
		return decimal.Zero, err
	}
	return sumShares(lots).Mul(price).Sub(sumCost(lots)), nil
}

// GainPercent returns the unrealized gain as a percentage of the cost basis.
// ok is false when the cost basis is zero and the percentage is undefined.
func GainPercent(txs []Transaction, price decimal.Decimal) (pct decimal.Decimal, ok bool, err error) {
	lots, err := OpenLots(txs)
	if err != nil {
		return decimal.Zero, false, err
	}
	p := gainPercent(sumShares(lots).Mul(price).Sub(sumCost(lots)), sumCost(lots))
	if p == nil {
		return decimal.Zero, false, nil
	}
	return *p, true, nil
}

func gainPercent(gain, invested decimal.Decimal) *decimal.Decimal {
	if invested.IsZero() {
		return nil
	}
	p := hundred.Mul(gain).Div(invested)
	return &p
}

// Summarize computes every derived figure for the position in a single pass.
func Summarize(txs []Transaction, price decimal.Decimal) (Summary, error) {
	lots, realized, err := match(txs)
	if err != nil {
		return Summary{}, err
	}

	shares := sumShares(lots)
	invested := sumCost(lots)
	value := shares.Mul(price)
	gain := value.Sub(invested)

	if lots == nil {
		lots = []Lot{}
	}

	return Summary{
		Lots:           lots,
		SharesOwned:    shares,
		TotalInvested:  invested,
		AverageCost:    averageCost(invested, shares),
		CurrentPrice:   price,
		CurrentValue:   value,
		UnrealizedGain: gain,
		GainPercent:    gainPercent(gain, invested),
		RealizedGain:   realized,
	}, nil
}
