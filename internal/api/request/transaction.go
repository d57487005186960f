package request

import "github.com/shopspring/decimal"

// CreateTransactionRequest records a buy or sell. Timestamp is optional and
// defaults to the time the request is processed.
type CreateTransactionRequest struct {
	Type          string           `json:"type"`
	Shares        *decimal.Decimal `json:"shares"`
	PricePerShare *decimal.Decimal `json:"pricePerShare"`
	Timestamp     string           `json:"timestamp,omitempty"`
}

type UpdateTransactionRequest struct {
	Type          *string          `json:"type,omitempty"`
	Shares        *decimal.Decimal `json:"shares,omitempty"`
	PricePerShare *decimal.Decimal `json:"pricePerShare,omitempty"`
	Timestamp     *string          `json:"timestamp,omitempty"`
}
