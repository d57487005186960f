package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ndewijer/stock-tracker/internal/ledger"
	"github.com/ndewijer/stock-tracker/internal/model"
	"github.com/ndewijer/stock-tracker/internal/repository"
)

// DefaultPassword is the plain-text password of users created by UserBuilder.
const DefaultPassword = "correct-horse"

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	user := testutil.NewUser().Build(t, db)
//
//	user := testutil.NewUser().
//	    WithUsername("alice").
//	    WithPassword("s3cret-pass").
//	    Build(t, db)
type UserBuilder struct {
	ID       string
	Username string
	Email    string
	Password string
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	name := MakeUsername("user")
	return &UserBuilder{
		ID:       MakeID(),
		Username: name,
		Email:    name + "@example.com",
		Password: DefaultPassword,
	}
}

// WithID sets a custom ID.
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.ID = id
	return b
}

// WithUsername sets a custom username.
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.Username = username
	return b
}

// WithEmail sets a custom email.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.Email = email
	return b
}

// WithPassword sets the plain-text password that gets hashed on Build.
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.Password = password
	return b
}

// Build inserts the user into the database and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(b.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	user := model.User{
		ID:           b.ID,
		Username:     b.Username,
		Email:        b.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO "user" (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query, user.ID, user.Username, user.Email, user.PasswordHash, repository.FormatTime(user.CreatedAt))
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// StockBuilder provides a fluent interface for creating test stock positions.
//
// Example usage:
//
//	stock := testutil.NewStock(user.ID).WithTicker("AAPL").Build(t, db)
type StockBuilder struct {
	ID     string
	UserID string
	Ticker string
}

// NewStock creates a StockBuilder for the given user with a random ticker.
func NewStock(userID string) *StockBuilder {
	return &StockBuilder{
		ID:     MakeID(),
		UserID: userID,
		Ticker: MakeTicker("T"),
	}
}

// WithID sets a custom ID.
func (b *StockBuilder) WithID(id string) *StockBuilder {
	b.ID = id
	return b
}

// WithTicker sets a custom ticker.
func (b *StockBuilder) WithTicker(ticker string) *StockBuilder {
	b.Ticker = ticker
	return b
}

// Build inserts the stock into the database and returns it.
func (b *StockBuilder) Build(t *testing.T, db *sql.DB) model.Stock {
	t.Helper()

	stock := model.Stock{
		ID:        b.ID,
		UserID:    b.UserID,
		Ticker:    b.Ticker,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO stock (id, user_id, ticker, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, stock.ID, stock.UserID, stock.Ticker, repository.FormatTime(stock.CreatedAt))
	if err != nil {
		t.Fatalf("Failed to create test stock: %v", err)
	}

	return stock
}

// TransactionBuilder provides a fluent interface for creating test transactions.
// Build writes the row directly, bypassing ledger validation, so tests can
// also set up histories the service would reject.
//
// Example usage:
//
//	testutil.NewTransaction(stock.ID).
//	    WithShares("10").
//	    WithPrice("100").
//	    WithDate("2024-01-02").
//	    Build(t, db)
//
//	testutil.NewTransaction(stock.ID).Sell().WithShares("4").Build(t, db)
type TransactionBuilder struct {
	ID            string
	StockID       string
	Type          ledger.Kind
	Shares        decimal.Decimal
	PricePerShare decimal.Decimal
	Timestamp     time.Time
}

// NewTransaction creates a buy of 10 shares at 100 dated 2024-01-02.
func NewTransaction(stockID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:            MakeID(),
		StockID:       stockID,
		Type:          ledger.Buy,
		Shares:        decimal.NewFromInt(10),
		PricePerShare: decimal.NewFromInt(100),
		Timestamp:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// Sell turns the transaction into a sell.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = ledger.Sell
	return b
}

// WithShares sets the share count from a decimal string.
func (b *TransactionBuilder) WithShares(shares string) *TransactionBuilder {
	b.Shares = decimal.RequireFromString(shares)
	return b
}

// WithPrice sets the price per share from a decimal string.
func (b *TransactionBuilder) WithPrice(price string) *TransactionBuilder {
	b.PricePerShare = decimal.RequireFromString(price)
	return b
}

// WithDate sets the timestamp to midnight UTC of a YYYY-MM-DD date.
func (b *TransactionBuilder) WithDate(date string) *TransactionBuilder {
	ts, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic("testutil: invalid date " + date)
	}
	b.Timestamp = ts
	return b
}

// WithTimestamp sets a custom timestamp.
func (b *TransactionBuilder) WithTimestamp(ts time.Time) *TransactionBuilder {
	b.Timestamp = ts.UTC()
	return b
}

// Build inserts the transaction into the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	tx := model.Transaction{
		ID:            b.ID,
		StockID:       b.StockID,
		Type:          b.Type,
		Shares:        b.Shares,
		PricePerShare: b.PricePerShare,
		Timestamp:     b.Timestamp,
		CreatedAt:     time.Now().UTC(),
	}

	query := `
		INSERT INTO stock_transaction (id, stock_id, type, shares, price_per_share, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		tx.ID,
		tx.StockID,
		string(tx.Type),
		tx.Shares.String(),
		tx.PricePerShare.String(),
		repository.FormatTime(tx.Timestamp),
		repository.FormatTime(tx.CreatedAt),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	tx.Seq, err = result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read transaction sequence: %v", err)
	}

	return tx
}
