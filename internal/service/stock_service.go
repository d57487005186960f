package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/stock-tracker/internal/apperrors"
	"github.com/ndewijer/stock-tracker/internal/ledger"
	"github.com/ndewijer/stock-tracker/internal/model"
	"github.com/ndewijer/stock-tracker/internal/pricefeed"
	"github.com/ndewijer/stock-tracker/internal/repository"
)

// StockService handles stock positions and their valuation.
type StockService struct {
	db              *sql.DB
	stockRepo       *repository.StockRepository
	transactionRepo *repository.TransactionRepository
	quoter          pricefeed.Quoter
	locks           *PositionLocks
	concurrency     int
}

// NewStockService creates a new StockService with the provided repository dependencies.
// concurrency bounds the number of simultaneous price lookups in PortfolioSummary.
func NewStockService(
	db *sql.DB,
	stockRepo *repository.StockRepository,
	transactionRepo *repository.TransactionRepository,
	quoter pricefeed.Quoter,
	locks *PositionLocks,
	concurrency int,
) *StockService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &StockService{
		db:              db,
		stockRepo:       stockRepo,
		transactionRepo: transactionRepo,
		quoter:          quoter,
		locks:           locks,
		concurrency:     concurrency,
	}
}

// AddStock starts tracking ticker for the user after confirming with the
// price feed that the ticker exists.
//
// Returns ErrUnknownTicker if the feed does not know the ticker, or
// ErrTickerValidationUnavailable if the feed could not answer.
func (s *StockService) AddStock(ctx context.Context, userID, ticker string) (model.Stock, error) {
	ticker = pricefeed.NormalizeTicker(ticker)

	ok, err := s.quoter.ValidateTicker(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("ticker validation failed")
		return model.Stock{}, fmt.Errorf("%w: %w", apperrors.ErrTickerValidationUnavailable, err)
	}
	if !ok {
		return model.Stock{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownTicker, ticker)
	}

	stock := model.Stock{
		ID:        uuid.New().String(),
		UserID:    userID,
		Ticker:    ticker,
		CreatedAt: now(),
	}

	if err := s.stockRepo.InsertStock(ctx, &stock); err != nil {
		return model.Stock{}, err
	}

	return stock, nil
}

// ListStocks returns the user's positions ordered by ticker.
func (s *StockService) ListStocks(ctx context.Context, userID string) ([]model.Stock, error) {
	return s.stockRepo.GetStocksByUser(ctx, userID)
}

// GetStock returns a stock owned by userID.
// A stock owned by another user is reported as ErrStockNotFound.
func (s *StockService) GetStock(ctx context.Context, userID, stockID string) (model.Stock, error) {
	return ownedStock(ctx, s.stockRepo, userID, stockID)
}

// DeleteStock removes a position together with its transactions.
func (s *StockService) DeleteStock(ctx context.Context, userID, stockID string) error {
	if _, err := ownedStock(ctx, s.stockRepo, userID, stockID); err != nil {
		return err
	}

	unlock := s.locks.Lock(stockID)
	defer unlock()

	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.stockRepo.WithTx(tx).DeleteStock(ctx, stockID)
	})
}

// StockSummary values one position at the current market price.
// Price feed failures are returned wrapped so callers can match the
// pricefeed sentinels with errors.Is.
func (s *StockService) StockSummary(ctx context.Context, userID, stockID string) (model.StockSummary, error) {
	stock, err := ownedStock(ctx, s.stockRepo, userID, stockID)
	if err != nil {
		return model.StockSummary{}, err
	}

	txs, err := s.transactionRepo.GetTransactionsByStock(ctx, stock.ID)
	if err != nil {
		return model.StockSummary{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveTransactions, err)
	}

	price, err := s.quoter.CurrentPrice(ctx, stock.Ticker)
	if err != nil {
		return model.StockSummary{}, fmt.Errorf("%w for %s: %w", apperrors.ErrFailedToRetrievePrice, stock.Ticker, err)
	}

	return summarize(stock, txs, price)
}

type position struct {
	stock model.Stock
	txs   []model.Transaction
}

// PortfolioSummary values every position of the user.
//
// Histories are read first, then prices are fetched concurrently with at most
// the configured number of lookups in flight. A failed lookup marks only that
// position with PriceError; totals cover the positions that could be priced.
func (s *StockService) PortfolioSummary(ctx context.Context, userID string) (model.PortfolioSummary, error) {
	stocks, err := s.stockRepo.GetStocksByUser(ctx, userID)
	if err != nil {
		return model.PortfolioSummary{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveStocks, err)
	}

	positions := make([]position, len(stocks))
	for i, stock := range stocks {
		txs, err := s.transactionRepo.GetTransactionsByStock(ctx, stock.ID)
		if err != nil {
			return model.PortfolioSummary{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveTransactions, err)
		}
		positions[i] = position{stock: stock, txs: txs}
	}

	summaries := make([]model.StockSummary, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, p := range positions {
		g.Go(func() error {
			price, err := s.quoter.CurrentPrice(gctx, p.stock.Ticker)
			if err != nil {
				log.Warn().Err(err).Str("ticker", p.stock.Ticker).Msg("price lookup failed")
				summaries[i] = unpriced(p.stock, p.txs, err)
				return nil
			}

			summary, err := summarize(p.stock, p.txs, price)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.PortfolioSummary{}, err
	}

	return aggregate(summaries), nil
}

// summarize runs the ledger over a persisted history. A history the ledger
// rejects can only come from outside the service and is reported as a data
// inconsistency.
func summarize(stock model.Stock, txs []model.Transaction, price decimal.Decimal) (model.StockSummary, error) {
	summary, err := ledger.Summarize(model.LedgerTransactions(txs), price)
	if err != nil {
		return model.StockSummary{}, fmt.Errorf("%w: stock %s: %w", apperrors.ErrDataInconsistency, stock.ID, err)
	}

	return model.StockSummary{
		Stock:          stock,
		Lots:           summary.Lots,
		SharesOwned:    summary.SharesOwned,
		TotalInvested:  summary.TotalInvested,
		AverageCost:    roundRatio(summary.AverageCost),
		CurrentPrice:   summary.CurrentPrice,
		CurrentValue:   summary.CurrentValue,
		UnrealizedGain: summary.UnrealizedGain,
		GainPercent:    roundRatioPtr(summary.GainPercent),
		RealizedGain:   summary.RealizedGain,
	}, nil
}

// unpriced reports the cost side of a position whose price is unavailable.
func unpriced(stock model.Stock, txs []model.Transaction, priceErr error) model.StockSummary {
	result := model.StockSummary{Stock: stock, PriceError: priceError(priceErr)}

	summary, err := ledger.Summarize(model.LedgerTransactions(txs), decimal.Zero)
	if err != nil {
		return result
	}

	result.Lots = summary.Lots
	result.SharesOwned = summary.SharesOwned
	result.TotalInvested = summary.TotalInvested
	result.AverageCost = roundRatio(summary.AverageCost)
	result.RealizedGain = summary.RealizedGain
	return result
}

func priceError(err error) string {
	switch {
	case errors.Is(err, pricefeed.ErrUnknownTicker):
		return "unknown ticker"
	case errors.Is(err, pricefeed.ErrMalformedResponse):
		return "malformed price response"
	default:
		return "price service unavailable"
	}
}

func aggregate(summaries []model.StockSummary) model.PortfolioSummary {
	result := model.PortfolioSummary{Stocks: summaries}

	for _, s := range summaries {
		result.TotalRealizedGain = result.TotalRealizedGain.Add(s.RealizedGain)
		if s.PriceError != "" {
			result.Unpriced++
			continue
		}
		result.TotalInvested = result.TotalInvested.Add(s.TotalInvested)
		result.TotalValue = result.TotalValue.Add(s.CurrentValue)
		result.TotalUnrealizedGain = result.TotalUnrealizedGain.Add(s.UnrealizedGain)
	}

	if result.TotalInvested.IsPositive() {
		pct := roundRatio(result.TotalUnrealizedGain.Div(result.TotalInvested).Mul(decimal.NewFromInt(100)))
		result.GainPercent = &pct
	}

	return result
}

// ownedStock loads a stock and hides stocks owned by other users.
func ownedStock(ctx context.Context, repo *repository.StockRepository, userID, stockID string) (model.Stock, error) {
	stock, err := repo.GetStock(ctx, stockID)
	if err != nil {
		return model.Stock{}, err
	}
	if stock.UserID != userID {
		return model.Stock{}, apperrors.ErrStockNotFound
	}
	return stock, nil
}
