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

// StockHandler handles HTTP requests for stock positions and portfolio valuation.
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler creates a new StockHandler with the provided service dependency.
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

// Stocks handles GET requests listing the user's positions.
//
// Endpoint: GET /api/stock
// Response: 200 OK with array of Stock, ordered by ticker
func (h *StockHandler) Stocks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	stocks, err := h.stockService.ListStocks(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveStocks.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, stocks)
}

// CreateStock handles POST requests to start tracking a ticker.
// The ticker is checked against the price feed before it is stored.
//
// Endpoint: POST /api/stock
// Request Body: CreateStockRequest (ticker)
// Response: 201 Created with Stock
// Error: 400 Bad Request if the ticker is malformed
// Error: 404 Not Found if the price feed does not know the ticker
// Error: 409 Conflict if the ticker is already tracked
// Error: 503 Service Unavailable if the price feed cannot be reached
func (h *StockHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateStockRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateStock(req); err != nil {
		respondServiceError(w, err, "failed to create stock")
		return
	}

	stock, err := h.stockService.AddStock(r.Context(), userID, req.Ticker)
	if err != nil {
		respondServiceError(w, err, "failed to create stock")
		return
	}

	response.RespondJSON(w, http.StatusCreated, stock)
}

// StockSummary handles GET requests for one position valued at the current price,
// including its open lots.
//
// Endpoint: GET /api/stock/{uuid}
// Response: 200 OK with StockSummary
// Error: 404 Not Found if the stock does not exist or is not owned by the user
// Error: 502 Bad Gateway if the price feed failed
func (h *StockHandler) StockSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.stockService.StockSummary(r.Context(), userID, chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetStockSummary.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// DeleteStock handles DELETE requests removing a position and its transactions.
//
// Endpoint: DELETE /api/stock/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the stock does not exist or is not owned by the user
func (h *StockHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.stockService.DeleteStock(r.Context(), userID, chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, err, "failed to delete stock")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// PortfolioSummary handles GET requests valuing every position of the user.
// A position whose price lookup failed carries priceError and is left out of the totals.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with PortfolioSummary
func (h *StockHandler) PortfolioSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.stockService.PortfolioSummary(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetPortfolioSummary.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
