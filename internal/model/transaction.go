package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/stock-tracker/internal/ledger"
)

// Transaction represents a buy or sell recorded against a stock position.
// Seq is the insertion counter used to break ties between equal timestamps.
type Transaction struct {
	ID            string          `json:"id"`
	StockID       string          `json:"stockId"`
	Type          ledger.Kind     `json:"type"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	Timestamp     time.Time       `json:"timestamp"`
	Seq           int64           `json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// LedgerTransaction converts the stored transaction into the ledger's input type.
func (t Transaction) LedgerTransaction() ledger.Transaction {
	return ledger.Transaction{
		Kind:          t.Type,
		Shares:        t.Shares,
		PricePerShare: t.PricePerShare,
		Timestamp:     t.Timestamp,
	}
}

// LedgerTransactions converts a stored history, preserving its order.
func LedgerTransactions(txs []Transaction) []ledger.Transaction {
	out := make([]ledger.Transaction, len(txs))
	for i, t := range txs {
		out[i] = t.LedgerTransaction()
	}
	return out
}
