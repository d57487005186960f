package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/stock-tracker/internal/apperrors"
	"github.com/ndewijer/stock-tracker/internal/model"
)

// TransactionRepository provides data access methods for the stock_transaction table.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const transactionColumns = `seq, id, stock_id, type, shares, price_per_share, timestamp, created_at`

// scanTransaction reads a row selected with transactionColumns.
func scanTransaction(scan func(dest ...any) error) (model.Transaction, error) {
	var t model.Transaction
	var timestampStr, createdAtStr string

	err := scan(
		&t.Seq,
		&t.ID,
		&t.StockID,
		&t.Type,
		&t.Shares,
		&t.PricePerShare,
		&timestampStr,
		&createdAtStr,
	)
	if err != nil {
		return model.Transaction{}, err
	}

	t.Timestamp, err = ParseTime(timestampStr)
	if err != nil {
		return model.Transaction{}, err
	}

	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// GetTransactionsByStock retrieves the full history of a stock in chronological order.
// Transactions sharing a timestamp are returned in insertion order.
// Returns an empty slice if the stock has no transactions.
func (r *TransactionRepository) GetTransactionsByStock(ctx context.Context, stockID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM stock_transaction
		WHERE stock_id = ?
		ORDER BY timestamp ASC, seq ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a single transaction by its ID.
// Returns ErrTransactionNotFound if no transaction with the given ID exists.
func (r *TransactionRepository) GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM stock_transaction
		WHERE id = ?
	`

	t, err := scanTransaction(r.getQuerier().QueryRowContext(ctx, query, transactionID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to query transaction: %w", err)
	}

	return t, nil
}

// InsertTransaction stores a new transaction and sets its Seq.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO stock_transaction (id, stock_id, type, shares, price_per_share, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.StockID,
		string(t.Type),
		t.Shares.String(),
		t.PricePerShare.String(),
		FormatTime(t.Timestamp),
		FormatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction sequence: %w", err)
	}
	t.Seq = seq

	return nil
}

// UpdateTransaction overwrites the mutable fields of an existing transaction.
// The insertion sequence is kept so tie-breaking stays stable.
// Returns ErrTransactionNotFound if no transaction with the given ID exists.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	query := `
		UPDATE stock_transaction
		SET type = ?, shares = ?, price_per_share = ?, timestamp = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		string(t.Type),
		t.Shares.String(),
		t.PricePerShare.String(),
		FormatTime(t.Timestamp),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return nil
}

// DeleteTransaction removes a transaction by its ID.
// Returns ErrTransactionNotFound if no transaction with the given ID exists.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM stock_transaction WHERE id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return nil
}
