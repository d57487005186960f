package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/stock-tracker/internal/api/request"
	"github.com/ndewijer/stock-tracker/internal/apperrors"
	"github.com/ndewijer/stock-tracker/internal/ledger"
	"github.com/ndewijer/stock-tracker/internal/pricefeed"
	"github.com/ndewijer/stock-tracker/internal/validation"
)

// TestParseJSON tests the parseJSON helper.
// This is an internal test because parseJSON is unexported.
func TestParseJSON(t *testing.T) {
	t.Run("decodes a valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ticker":"AAPL"}`))

		req, err := parseJSON[request.CreateStockRequest](r)
		if err != nil {
			t.Fatalf("parseJSON() returned unexpected error: %v", err)
		}
		if req.Ticker != "AAPL" {
			t.Errorf("Expected ticker AAPL, got %s", req.Ticker)
		}
	})

	t.Run("decodes decimals exactly", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"type":"buy","shares":0.1,"pricePerShare":"100.10"}`))

		req, err := parseJSON[request.CreateTransactionRequest](r)
		if err != nil {
			t.Fatalf("parseJSON() returned unexpected error: %v", err)
		}
		if !req.Shares.Equal(decimal.RequireFromString("0.1")) {
			t.Errorf("Expected shares 0.1, got %s", req.Shares)
		}
		if !req.PricePerShare.Equal(decimal.RequireFromString("100.1")) {
			t.Errorf("Expected price 100.1, got %s", req.PricePerShare)
		}
	})

	cases := map[string]string{
		"malformed JSON": `{"ticker":`,
		"unknown field":  `{"ticker":"AAPL","admin":true}`,
		"trailing data":  `{"ticker":"AAPL"}{"ticker":"MSFT"}`,
	}
	for name, body := range cases {
		t.Run("rejects "+name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

			if _, err := parseJSON[request.CreateStockRequest](r); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// TestRespondServiceError tests the mapping of service errors to HTTP statuses.
func TestRespondServiceError(t *testing.T) {
	insufficient := &ledger.InsufficientSharesError{
		Timestamp: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Requested: decimal.NewFromInt(15),
		Available: decimal.NewFromInt(10),
	}

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &validation.Error{Fields: map[string]string{"shares": "shares must be positive"}}, http.StatusBadRequest},
		{"invalid transaction", fmt.Errorf("%w: zero shares", ledger.ErrInvalidTransaction), http.StatusBadRequest},
		{"insufficient shares", fmt.Errorf("record: %w", insufficient), http.StatusUnprocessableEntity},
		{"stock not found", apperrors.ErrStockNotFound, http.StatusNotFound},
		{"transaction not found", apperrors.ErrTransactionNotFound, http.StatusNotFound},
		{"duplicate", fmt.Errorf("%w: ticker AAPL", apperrors.ErrDuplicateEntry), http.StatusConflict},
		{"bad credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown ticker", fmt.Errorf("%w: ZZZZ", apperrors.ErrUnknownTicker), http.StatusNotFound},
		{"feed unknown ticker", fmt.Errorf("%w: ZZZZ", pricefeed.ErrUnknownTicker), http.StatusNotFound},
		{"validation unavailable", fmt.Errorf("%w: %w", apperrors.ErrTickerValidationUnavailable, pricefeed.ErrNetwork), http.StatusServiceUnavailable},
		{"feed network", fmt.Errorf("price: %w", pricefeed.ErrNetwork), http.StatusBadGateway},
		{"feed malformed", fmt.Errorf("price: %w", pricefeed.ErrMalformedResponse), http.StatusBadGateway},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			respondServiceError(w, tc.err, "operation failed")

			if w.Code != tc.status {
				t.Errorf("Expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}

	t.Run("insufficient shares carries requested and available", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondServiceError(w, insufficient, "operation failed")

		var body struct {
			Error   string                    `json:"error"`
			Details InsufficientSharesDetails `json:"details"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body.Details.Requested != "15" || body.Details.Available != "10" {
			t.Errorf("Unexpected details: %+v", body.Details)
		}
		if body.Details.Timestamp != "2024-02-01T00:00:00Z" {
			t.Errorf("Expected timestamp 2024-02-01T00:00:00Z, got %s", body.Details.Timestamp)
		}
	})
}
