package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ndewijer/stock-tracker/internal/pricefeed"
	"github.com/ndewijer/stock-tracker/internal/repository"
	"github.com/ndewijer/stock-tracker/internal/service"
)

// TestSessionTTL is the session lifetime used by NewTestUserService.
const TestSessionTTL = time.Hour

// NewTestSessionManager returns a SessionManager with a freshly generated key.
func NewTestSessionManager(t *testing.T) *service.SessionManager {
	t.Helper()

	sessions, err := service.NewSessionManager("", TestSessionTTL)
	if err != nil {
		t.Fatalf("Failed to create session manager: %v", err)
	}
	return sessions
}

func NewTestUserService(t *testing.T, db *sql.DB) *service.UserService {
	t.Helper()

	return service.NewUserService(
		db,
		repository.NewUserRepository(db),
		repository.NewStockRepository(db),
		NewTestSessionManager(t),
	).WithPasswordCost(bcrypt.MinCost)
}

// NewTestStockService builds a StockService over quoter. A nil quoter gets an
// empty StubQuoter.
func NewTestStockService(t *testing.T, db *sql.DB, quoter pricefeed.Quoter) *service.StockService {
	t.Helper()

	if quoter == nil {
		quoter = NewStubQuoter()
	}

	return service.NewStockService(
		db,
		repository.NewStockRepository(db),
		repository.NewTransactionRepository(db),
		quoter,
		service.NewPositionLocks(),
		4,
	)
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		db,
		repository.NewStockRepository(db),
		repository.NewTransactionRepository(db),
		service.NewPositionLocks(),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{"price_cache": true})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeTicker generates a stock ticker symbol for testing.
//
// Example usage:
//
//	ticker := testutil.MakeTicker("AA")
//	// Returns: "AA1A2B"
func MakeTicker(base string) string {
	if base == "" {
		base = "T"
	}
	return base + randomAlphanumeric(4)
}

// MakeUsername generates a unique username for testing.
//
// Example usage:
//
//	name := testutil.MakeUsername("alice")
//	// Returns: "alice_abc123"
func MakeUsername(base string) string {
	if base == "" {
		base = "user"
	}
	return base + "_" + randomAlphanumeric(6)
}

// Dec parses a decimal string, panicking on malformed input.
func Dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// DecPtr returns a pointer to the parsed decimal, for optional request fields.
func DecPtr(value string) *decimal.Decimal {
	d := Dec(value)
	return &d
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
