package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/stock-tracker/internal/api/middleware"
	"github.com/ndewijer/stock-tracker/internal/api/response"
	"github.com/ndewijer/stock-tracker/internal/apperrors"
	"github.com/ndewijer/stock-tracker/internal/ledger"
	"github.com/ndewijer/stock-tracker/internal/pricefeed"
	"github.com/ndewijer/stock-tracker/internal/validation"
)

// maxBodyBytes bounds request bodies; every payload here is a few fields.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T, rejecting unknown fields and
// trailing data.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T

	if r.Body == nil {
		return req, errors.New("request body is required")
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return req, errors.New("request body must contain a single JSON object")
	}

	return req, nil
}

// currentUser returns the authenticated user ID, answering 401 when the
// route was mounted without RequireSession.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "authentication required", "")
		return "", false
	}
	return userID, true
}

// InsufficientSharesDetails is returned with 422 when a sell exceeds the
// shares held at its timestamp.
type InsufficientSharesDetails struct {
	Timestamp string `json:"timestamp"`
	Requested string `json:"requested"`
	Available string `json:"available"`
}

// respondServiceError maps service errors to HTTP statuses. Errors that match
// nothing are reported as 500 with the given message.
func respondServiceError(w http.ResponseWriter, err error, message string) {
	var validationErr *validation.Error
	var insufficient *ledger.InsufficientSharesError

	switch {
	case errors.As(err, &validationErr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", validationErr.Fields)

	case errors.As(err, &insufficient):
		response.RespondError(w, http.StatusUnprocessableEntity, ledger.ErrInsufficientShares.Error(), InsufficientSharesDetails{
			Timestamp: insufficient.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Requested: insufficient.Requested.String(),
			Available: insufficient.Available.String(),
		})

	case errors.Is(err, ledger.ErrInvalidTransaction),
		errors.Is(err, validation.ErrInvalidTimestamp),
		errors.Is(err, validation.ErrInvalidUUID):
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())

	case errors.Is(err, apperrors.ErrStockNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrStockNotFound.Error(), err.Error())

	case errors.Is(err, apperrors.ErrTransactionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())

	case errors.Is(err, apperrors.ErrUserNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrUserNotFound.Error(), err.Error())

	case errors.Is(err, apperrors.ErrDuplicateEntry):
		response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEntry.Error(), err.Error())

	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidSession):
		response.RespondError(w, http.StatusUnauthorized, err.Error(), "")

	case errors.Is(err, apperrors.ErrUnknownTicker),
		errors.Is(err, pricefeed.ErrUnknownTicker):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrUnknownTicker.Error(), err.Error())

	case errors.Is(err, apperrors.ErrTickerValidationUnavailable):
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrTickerValidationUnavailable.Error(), err.Error())

	case errors.Is(err, pricefeed.ErrNetwork),
		errors.Is(err, pricefeed.ErrMalformedResponse):
		response.RespondError(w, http.StatusBadGateway, apperrors.ErrFailedToRetrievePrice.Error(), err.Error())

	default:
		response.RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}
