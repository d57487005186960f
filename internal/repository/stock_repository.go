package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/stock-tracker/internal/apperrors"
	"github.com/ndewijer/stock-tracker/internal/model"
)

// StockRepository provides data access methods for the stock table.
// A stock exclusively owns its transactions: every delete here removes them explicitly.
type StockRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewStockRepository creates a new StockRepository with the provided database connection.
func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

// WithTx returns a new StockRepository scoped to the provided transaction.
func (r *StockRepository) WithTx(tx *sql.Tx) *StockRepository {
	return &StockRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *StockRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertStock stores a new stock position.
// Returns ErrDuplicateEntry if the user already tracks the ticker.
func (r *StockRepository) InsertStock(ctx context.Context, s *model.Stock) error {
	query := `
		INSERT INTO stock (id, user_id, ticker, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.Ticker,
		FormatTime(s.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ticker %s already tracked", apperrors.ErrDuplicateEntry, s.Ticker)
		}
		return fmt.Errorf("failed to insert stock: %w", err)
	}

	return nil
}

// GetStock retrieves a stock by ID.
// Returns ErrStockNotFound if no stock with the given ID exists.
func (r *StockRepository) GetStock(ctx context.Context, stockID string) (model.Stock, error) {
	query := `
		SELECT id, user_id, ticker, created_at
		FROM stock
		WHERE id = ?
	`

	var s model.Stock
	var createdAtStr string

	err := r.getQuerier().QueryRowContext(ctx, query, stockID).Scan(
		&s.ID,
		&s.UserID,
		&s.Ticker,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stock{}, apperrors.ErrStockNotFound
	}
	if err != nil {
		return model.Stock{}, fmt.Errorf("failed to query stock: %w", err)
	}

	s.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Stock{}, err
	}

	return s, nil
}

// GetStocksByUser retrieves all stocks of a user ordered by ticker.
// Returns an empty slice if the user has no stocks.
func (r *StockRepository) GetStocksByUser(ctx context.Context, userID string) ([]model.Stock, error) {
	query := `
		SELECT id, user_id, ticker, created_at
		FROM stock
		WHERE user_id = ?
		ORDER BY ticker ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock table: %w", err)
	}
	defer rows.Close()

	stocks := []model.Stock{}

	for rows.Next() {
		var s model.Stock
		var createdAtStr string

		if err := rows.Scan(&s.ID, &s.UserID, &s.Ticker, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan stock table results: %w", err)
		}

		s.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}

		stocks = append(stocks, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock table: %w", err)
	}

	return stocks, nil
}

// GetTrackedTickers returns every distinct ticker held by any user.
func (r *StockRepository) GetTrackedTickers(ctx context.Context) ([]string, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `SELECT DISTINCT ticker FROM stock ORDER BY ticker ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracked tickers: %w", err)
	}

	return tickers, nil
}

// DeleteStock removes a stock and all of its transactions.
// Must run inside a transaction (see WithTx) so the cascade is atomic.
// Returns ErrStockNotFound if no stock with the given ID exists.
func (r *StockRepository) DeleteStock(ctx context.Context, stockID string) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM stock_transaction WHERE stock_id = ?`, stockID); err != nil {
		return fmt.Errorf("failed to delete stock transactions: %w", err)
	}

	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM stock WHERE id = ?`, stockID)
	if err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrStockNotFound
	}

	return nil
}

// DeleteStocksByUser removes every stock of a user together with their transactions.
// Must run inside a transaction (see WithTx) so the cascade is atomic.
func (r *StockRepository) DeleteStocksByUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM stock_transaction
		WHERE stock_id IN (SELECT id FROM stock WHERE user_id = ?)
	`
	if _, err := r.getQuerier().ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user transactions: %w", err)
	}

	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM stock WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete user stocks: %w", err)
	}

	return nil
}
