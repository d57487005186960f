package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/stock-tracker/internal/model"
	"github.com/ndewijer/stock-tracker/internal/testutil"
)

type transactionFixture struct {
	handler *TransactionHandler
	db      *sql.DB
	user    model.User
	stock   model.Stock
}

func setupTransactionHandler(t *testing.T) transactionFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	user := testutil.NewUser().Build(t, db)
	return transactionFixture{
		handler: NewTransactionHandler(testutil.NewTestTransactionService(t, db)),
		db:      db,
		user:    user,
		stock:   testutil.NewStock(user.ID).Build(t, db),
	}
}

func TestTransactionHandler_StockTransactions(t *testing.T) {
	t.Run("returns empty array when no transactions exist", func(t *testing.T) {
		f := setupTransactionHandler(t)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/stock/"+f.stock.ID+"/transaction", map[string]string{"uuid": f.stock.ID})
		w := httptest.NewRecorder()

		f.handler.StockTransactions(w, testutil.AsUser(req, f.user.ID))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var transactions []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&transactions)

		if transactions == nil || len(transactions) != 0 {
			t.Errorf("Expected empty array, got %v", transactions)
		}
	})

	t.Run("returns history in chronological order", func(t *testing.T) {
		f := setupTransactionHandler(t)
		late := testutil.NewTransaction(f.stock.ID).WithDate("2024-03-01").Build(t, f.db)
		early := testutil.NewTransaction(f.stock.ID).WithDate("2024-01-01").Build(t, f.db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/stock/"+f.stock.ID+"/transaction", map[string]string{"uuid": f.stock.ID})
		w := httptest.NewRecorder()

		f.handler.StockTransactions(w, testutil.AsUser(req, f.user.ID))

		var transactions []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&transactions)

		if len(transactions) != 2 {
			t.Fatalf("Expected 2 transactions, got %d", len(transactions))
		}
		if transactions[0].ID != early.ID || transactions[1].ID != late.ID {
			t.Errorf("Expected chronological order, got %s then %s", transactions[0].ID, transactions[1].ID)
		}
	})

	t.Run("returns 404 for another user's stock", func(t *testing.T) {
		f := setupTransactionHandler(t)
		other := testutil.NewUser().Build(t, f.db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/stock/"+f.stock.ID+"/transaction", map[string]string{"uuid": f.stock.ID})
		w := httptest.NewRecorder()

		f.handler.StockTransactions(w, testutil.AsUser(req, other.ID))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	post := func(t *testing.T, f transactionFixture, body any) *httptest.ResponseRecorder {
		t.Helper()
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/stock/"+f.stock.ID+"/transaction", body, map[string]string{"uuid": f.stock.ID})
		w := httptest.NewRecorder()
		f.handler.CreateTransaction(w, testutil.AsUser(req, f.user.ID))
		return w
	}

	t.Run("records a buy", func(t *testing.T) {
		f := setupTransactionHandler(t)

		w := post(t, f, map[string]any{
			"type":          "buy",
			"shares":        "10",
			"pricePerShare": "100.50",
			"timestamp":     "2024-01-02",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var transaction model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&transaction)

		if !transaction.PricePerShare.Equal(testutil.Dec("100.5")) {
			t.Errorf("Expected price 100.5, got %s", transaction.PricePerShare)
		}
		if transaction.StockID != f.stock.ID {
			t.Errorf("Expected stock %s, got %s", f.stock.ID, transaction.StockID)
		}
		testutil.AssertRowCount(t, f.db, "stock_transaction", 1)
	})

	t.Run("returns 422 with details for an over-sell", func(t *testing.T) {
		f := setupTransactionHandler(t)
		testutil.NewTransaction(f.stock.ID).WithShares("10").WithDate("2024-01-01").Build(t, f.db)

		w := post(t, f, map[string]any{
			"type":          "sell",
			"shares":        "15",
			"pricePerShare": "100",
			"timestamp":     "2024-02-01",
		})

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}

		var body struct {
			Error   string                    `json:"error"`
			Details InsufficientSharesDetails `json:"details"`
		}
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)

		if body.Details.Requested != "15" || body.Details.Available != "10" {
			t.Errorf("Expected requested 15 / available 10, got %+v", body.Details)
		}
		if body.Details.Timestamp != "2024-02-01T00:00:00Z" {
			t.Errorf("Expected timestamp of the failing sell, got %s", body.Details.Timestamp)
		}
		testutil.AssertRowCount(t, f.db, "stock_transaction", 1)
	})

	cases := []struct {
		name string
		body any
	}{
		{"missing shares", map[string]any{"type": "buy", "pricePerShare": "1"}},
		{"zero shares", map[string]any{"type": "buy", "shares": "0", "pricePerShare": "1"}},
		{"negative price", map[string]any{"type": "buy", "shares": "1", "pricePerShare": "-1"}},
		{"unknown type", map[string]any{"type": "dividend", "shares": "1", "pricePerShare": "1"}},
		{"bad timestamp", map[string]any{"type": "buy", "shares": "1", "pricePerShare": "1", "timestamp": "yesterday"}},
		{"unknown field", map[string]any{"type": "buy", "shares": "1", "pricePerShare": "1", "fee": "2"}},
		{"malformed JSON", "{"},
	}
	for _, tc := range cases {
		t.Run("returns 400 for "+tc.name, func(t *testing.T) {
			f := setupTransactionHandler(t)

			w := post(t, f, tc.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
			testutil.AssertRowCount(t, f.db, "stock_transaction", 0)
		})
	}
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	f := setupTransactionHandler(t)
	transaction := testutil.NewTransaction(f.stock.ID).Build(t, f.db)

	t.Run("returns the transaction", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transaction/"+transaction.ID, map[string]string{"uuid": transaction.ID})
		w := httptest.NewRecorder()

		f.handler.GetTransaction(w, testutil.AsUser(req, f.user.ID))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown transaction", func(t *testing.T) {
		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transaction/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		f.handler.GetTransaction(w, testutil.AsUser(req, f.user.ID))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	put := func(t *testing.T, f transactionFixture, id string, body any) *httptest.ResponseRecorder {
		t.Helper()
		req := testutil.NewJSONRequest(t, http.MethodPut, "/api/transaction/"+id, body, map[string]string{"uuid": id})
		w := httptest.NewRecorder()
		f.handler.UpdateTransaction(w, testutil.AsUser(req, f.user.ID))
		return w
	}

	t.Run("updates only the given fields", func(t *testing.T) {
		f := setupTransactionHandler(t)
		transaction := testutil.NewTransaction(f.stock.ID).WithShares("10").WithPrice("100").Build(t, f.db)

		w := put(t, f, transaction.ID, map[string]any{"pricePerShare": "95"})

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var updated model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&updated)

		if !updated.PricePerShare.Equal(testutil.Dec("95")) {
			t.Errorf("Expected price 95, got %s", updated.PricePerShare)
		}
		if !updated.Shares.Equal(testutil.Dec("10")) {
			t.Errorf("Expected shares to stay 10, got %s", updated.Shares)
		}
	})

	t.Run("returns 422 when shrinking a buy uncovers a sell", func(t *testing.T) {
		f := setupTransactionHandler(t)
		transaction := testutil.NewTransaction(f.stock.ID).WithShares("10").WithDate("2024-01-01").Build(t, f.db)
		testutil.NewTransaction(f.stock.ID).Sell().WithShares("8").WithDate("2024-02-01").Build(t, f.db)

		w := put(t, f, transaction.ID, map[string]any{"shares": "5"})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for zero shares", func(t *testing.T) {
		f := setupTransactionHandler(t)
		transaction := testutil.NewTransaction(f.stock.ID).Build(t, f.db)

		w := put(t, f, transaction.ID, map[string]any{"shares": "0"})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown transaction", func(t *testing.T) {
		f := setupTransactionHandler(t)

		w := put(t, f, testutil.MakeID(), map[string]any{"shares": "1"})

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	del := func(f transactionFixture, id string) *httptest.ResponseRecorder {
		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/transaction/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()
		f.handler.DeleteTransaction(w, testutil.AsUser(req, f.user.ID))
		return w
	}

	t.Run("deletes a sell", func(t *testing.T) {
		f := setupTransactionHandler(t)
		testutil.NewTransaction(f.stock.ID).Build(t, f.db)
		sell := testutil.NewTransaction(f.stock.ID).Sell().WithShares("3").WithDate("2024-02-01").Build(t, f.db)

		w := del(f, sell.ID)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, f.db, "stock_transaction", 1)
	})

	t.Run("returns 422 when removing a buy a sell depends on", func(t *testing.T) {
		f := setupTransactionHandler(t)
		buy := testutil.NewTransaction(f.stock.ID).Build(t, f.db)
		testutil.NewTransaction(f.stock.ID).Sell().WithShares("3").WithDate("2024-02-01").Build(t, f.db)

		w := del(f, buy.ID)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, f.db, "stock_transaction", 2)
	})

	t.Run("returns 404 for unknown transaction", func(t *testing.T) {
		f := setupTransactionHandler(t)

		w := del(f, testutil.MakeID())

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}
