package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/stock-tracker/internal/api/request"
	"github.com/ndewijer/stock-tracker/internal/apperrors"
	"github.com/ndewijer/stock-tracker/internal/ledger"
	"github.com/ndewijer/stock-tracker/internal/model"
	"github.com/ndewijer/stock-tracker/internal/repository"
	"github.com/ndewijer/stock-tracker/internal/validation"
)

// TransactionService records buys and sells against a stock position.
//
// Every write holds the position lock and runs in a database transaction that
// re-reads the full history, applies the change and replays the result
// through the ledger. A change that would make any sell exceed the shares
// held at that point is rejected with a *ledger.InsufficientSharesError and
// nothing is persisted.
type TransactionService struct {
	db              *sql.DB
	stockRepo       *repository.StockRepository
	transactionRepo *repository.TransactionRepository
	locks           *PositionLocks
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	db *sql.DB,
	stockRepo *repository.StockRepository,
	transactionRepo *repository.TransactionRepository,
	locks *PositionLocks,
) *TransactionService {
	return &TransactionService{
		db:              db,
		stockRepo:       stockRepo,
		transactionRepo: transactionRepo,
		locks:           locks,
	}
}

// ListTransactions returns the stock's history in chronological order.
func (s *TransactionService) ListTransactions(ctx context.Context, userID, stockID string) ([]model.Transaction, error) {
	if _, err := ownedStock(ctx, s.stockRepo, userID, stockID); err != nil {
		return nil, err
	}
	return s.transactionRepo.GetTransactionsByStock(ctx, stockID)
}

// GetTransaction returns a single transaction whose stock is owned by userID.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, transactionID string) (model.Transaction, error) {
	t, err := s.transactionRepo.GetTransaction(ctx, transactionID)
	if err != nil {
		return model.Transaction{}, err
	}
	if _, err := ownedStock(ctx, s.stockRepo, userID, t.StockID); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// RecordTransaction appends a buy or sell to the stock's history.
// The request must already have passed validation.ValidateCreateTransaction.
func (s *TransactionService) RecordTransaction(
	ctx context.Context,
	userID, stockID string,
	req request.CreateTransactionRequest,
) (model.Transaction, error) {
	timestamp := now()
	if strings.TrimSpace(req.Timestamp) != "" {
		parsed, err := validation.ParseTimestamp(req.Timestamp)
		if err != nil {
			return model.Transaction{}, err
		}
		timestamp = parsed
	}

	t := model.Transaction{
		ID:            uuid.New().String(),
		StockID:       stockID,
		Type:          ledger.Kind(req.Type),
		Shares:        *req.Shares,
		PricePerShare: *req.PricePerShare,
		Timestamp:     timestamp,
		CreatedAt:     now(),
	}

	unlock := s.locks.Lock(stockID)
	defer unlock()

	err := repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		stockRepo := s.stockRepo.WithTx(tx)
		transactionRepo := s.transactionRepo.WithTx(tx)

		if _, err := ownedStock(ctx, stockRepo, userID, stockID); err != nil {
			return err
		}

		history, err := transactionRepo.GetTransactionsByStock(ctx, stockID)
		if err != nil {
			return err
		}

		if err := ledger.Validate(model.LedgerTransactions(append(history, t))); err != nil {
			return err
		}

		return transactionRepo.InsertTransaction(ctx, &t)
	})
	if err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// UpdateTransaction changes the fields present in req.
// The transaction keeps its insertion sequence, so its position among
// transactions with an equal timestamp does not change.
func (s *TransactionService) UpdateTransaction(
	ctx context.Context,
	userID, transactionID string,
	req request.UpdateTransactionRequest,
) (model.Transaction, error) {
	stockID, err := s.stockOf(ctx, userID, transactionID)
	if err != nil {
		return model.Transaction{}, err
	}

	unlock := s.locks.Lock(stockID)
	defer unlock()

	var updated model.Transaction

	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		transactionRepo := s.transactionRepo.WithTx(tx)

		history, err := transactionRepo.GetTransactionsByStock(ctx, stockID)
		if err != nil {
			return err
		}

		found := false
		for i := range history {
			if history[i].ID != transactionID {
				continue
			}
			if err := applyUpdate(&history[i], req); err != nil {
				return err
			}
			updated = history[i]
			found = true
			break
		}
		if !found {
			return apperrors.ErrTransactionNotFound
		}

		if err := ledger.Validate(model.LedgerTransactions(inStoredOrder(history))); err != nil {
			return err
		}

		return transactionRepo.UpdateTransaction(ctx, updated)
	})
	if err != nil {
		return model.Transaction{}, err
	}

	return updated, nil
}

// DeleteTransaction removes a transaction. Deleting a buy whose shares were
// later sold is rejected the same way as an over-sell.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	stockID, err := s.stockOf(ctx, userID, transactionID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(stockID)
	defer unlock()

	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		transactionRepo := s.transactionRepo.WithTx(tx)

		history, err := transactionRepo.GetTransactionsByStock(ctx, stockID)
		if err != nil {
			return err
		}

		remaining := make([]model.Transaction, 0, len(history))
		for _, t := range history {
			if t.ID != transactionID {
				remaining = append(remaining, t)
			}
		}
		if len(remaining) == len(history) {
			return apperrors.ErrTransactionNotFound
		}

		if err := ledger.Validate(model.LedgerTransactions(remaining)); err != nil {
			return err
		}

		return transactionRepo.DeleteTransaction(ctx, transactionID)
	})
}

// stockOf returns the stock a transaction belongs to, checking ownership.
func (s *TransactionService) stockOf(ctx context.Context, userID, transactionID string) (string, error) {
	t, err := s.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		return "", err
	}
	return t.StockID, nil
}

func applyUpdate(t *model.Transaction, req request.UpdateTransactionRequest) error {
	if req.Type != nil {
		t.Type = ledger.Kind(*req.Type)
	}
	if req.Shares != nil {
		t.Shares = *req.Shares
	}
	if req.PricePerShare != nil {
		t.PricePerShare = *req.PricePerShare
	}
	if req.Timestamp != nil {
		parsed, err := validation.ParseTimestamp(*req.Timestamp)
		if err != nil {
			return err
		}
		t.Timestamp = parsed
	}
	return nil
}

// inStoredOrder sorts a history the way the repository returns it:
// by timestamp, then by insertion sequence.
func inStoredOrder(history []model.Transaction) []model.Transaction {
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].Timestamp.Equal(history[j].Timestamp) {
			return history[i].Timestamp.Before(history[j].Timestamp)
		}
		return history[i].Seq < history[j].Seq
	})
	return history
}
