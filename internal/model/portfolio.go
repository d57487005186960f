package model

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/stock-tracker/internal/ledger"
)

// StockSummary represents the valuation of one position at the current price.
// GainPercent is null when the position has no cost basis. When the price feed
// failed for this ticker, PriceError is set and the market figures are zero.
type StockSummary struct {
	Stock
	Lots           []ledger.Lot     `json:"lots,omitempty"`
	SharesOwned    decimal.Decimal  `json:"sharesOwned"`
	TotalInvested  decimal.Decimal  `json:"totalInvested"`  // Cost basis of held shares
	AverageCost    decimal.Decimal  `json:"averageCost"`    // Cost basis per held share
	CurrentPrice   decimal.Decimal  `json:"currentPrice"`   // Latest quote
	CurrentValue   decimal.Decimal  `json:"currentValue"`   // Shares * price
	UnrealizedGain decimal.Decimal  `json:"unrealizedGain"` // Value - cost basis
	GainPercent    *decimal.Decimal `json:"gainPercent"`
	RealizedGain   decimal.Decimal  `json:"realizedGain"` // Proceeds - FIFO cost of sold shares
	PriceError     string           `json:"priceError,omitempty"`
}

// PortfolioSummary aggregates every position of a user.
// Totals only include positions that could be priced.
type PortfolioSummary struct {
	Stocks              []StockSummary   `json:"stocks"`
	TotalInvested       decimal.Decimal  `json:"totalInvested"`
	TotalValue          decimal.Decimal  `json:"totalValue"`
	TotalUnrealizedGain decimal.Decimal  `json:"totalUnrealizedGain"`
	TotalRealizedGain   decimal.Decimal  `json:"totalRealizedGain"`
	GainPercent         *decimal.Decimal `json:"gainPercent"`
	Unpriced            int              `json:"unpriced"`
}
