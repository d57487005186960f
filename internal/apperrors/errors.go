package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that a user with the given ID or username does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrStockNotFound indicates that a stock position with the given ID does not exist
	// or is not owned by the requesting user.
	ErrStockNotFound = errors.New("stock not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidCredentials indicates a username/password pair that does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidSession indicates a missing, malformed or expired session token.
	ErrInvalidSession = errors.New("invalid or expired session")

	// ErrUnknownTicker indicates that the price feed does not know the ticker.
	ErrUnknownTicker = errors.New("unknown ticker")

	// ErrTickerValidationUnavailable indicates the price feed could not decide whether a ticker exists.
	ErrTickerValidationUnavailable = errors.New("ticker validation unavailable")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrieveStocks       = errors.New("failed to retrieve stocks")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToGetStockSummary      = errors.New("failed to get stock summary")
	ErrFailedToGetPortfolioSummary  = errors.New("failed to get portfolio summary")
	ErrFailedToRetrievePrice        = errors.New("failed to retrieve current price")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that stored data cannot be interpreted
	// (e.g., a persisted history that the ledger rejects).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)
