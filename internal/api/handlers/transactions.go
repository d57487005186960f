package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/stock-tracker/internal/api/request"
	"github.com/ndewijer/stock-tracker/internal/api/response"
	"github.com/ndewijer/stock-tracker/internal/apperrors"
	"github.com/ndewijer/stock-tracker/internal/service"
	"github.com/ndewijer/stock-tracker/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// StockTransactions handles GET requests for a stock's history in chronological order.
//
// Endpoint: GET /api/stock/{uuid}/transaction
// Response: 200 OK with array of Transaction
// Error: 404 Not Found if the stock does not exist or is not owned by the user
func (h *TransactionHandler) StockTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	transactions, err := h.transactionService.ListTransactions(r.Context(), userID, chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST requests recording a buy or sell.
//
// Endpoint: POST /api/stock/{uuid}/transaction
// Request Body: CreateTransactionRequest (type, shares, pricePerShare, timestamp)
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the stock does not exist or is not owned by the user
// Error: 422 Unprocessable Entity if a sell exceeds the shares held
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		respondServiceError(w, err, "failed to create transaction")
		return
	}

	transaction, err := h.transactionService.RecordTransaction(r.Context(), userID, chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to create transaction")
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with Transaction
// Error: 404 Not Found if transaction not found
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	transaction, err := h.transactionService.GetTransaction(r.Context(), userID, chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve transaction")
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// UpdateTransaction handles PUT requests to update an existing transaction.
// Only the fields present in the body change; the resulting history is replayed
// through the ledger before anything is stored.
//
// Endpoint: PUT /api/transaction/{uuid}
// Request Body: UpdateTransactionRequest (all fields optional)
// Response: 200 OK with updated Transaction
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if transaction not found
// Error: 422 Unprocessable Entity if the edit leaves a later sell uncovered
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.UpdateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateTransaction(req); err != nil {
		respondServiceError(w, err, "failed to update transaction")
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(r.Context(), userID, chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to update transaction")
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to remove a transaction.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if transaction not found
// Error: 422 Unprocessable Entity if removing a buy leaves a later sell uncovered
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(r.Context(), userID, chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, "failed to delete transaction")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
