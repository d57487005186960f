package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/stock-tracker/internal/config"
	"github.com/ndewijer/stock-tracker/internal/model"
	"github.com/ndewijer/stock-tracker/internal/testutil"
)

type testClient struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func (c *testClient) do(method, path string, body any, out any) int {
	c.t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, c.server.URL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.server.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("Failed to decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func setupServer(t *testing.T, quoter *testutil.StubQuoter) *testClient {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}

	router := NewRouter(
		testutil.NewTestSystemService(t, db),
		testutil.NewTestUserService(t, db),
		testutil.NewTestStockService(t, db, quoter),
		testutil.NewTestTransactionService(t, db),
		cfg,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testClient{t: t, server: server}
}

func TestRouter_PositionLifecycle(t *testing.T) {
	client := setupServer(t, testutil.NewStubQuoter().WithPrice("ACME", "150"))

	register := map[string]string{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
	}
	if status := client.do(http.MethodPost, "/api/auth/register", register, nil); status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", status)
	}

	if status := client.do(http.MethodGet, "/api/portfolio", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("portfolio without session: expected 401, got %d", status)
	}

	var session model.Session
	login := map[string]string{"username": "alice", "password": "password123"}
	if status := client.do(http.MethodPost, "/api/auth/login", login, &session); status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", status)
	}
	client.token = session.Token

	var stock model.Stock
	if status := client.do(http.MethodPost, "/api/stock", map[string]string{"ticker": "acme"}, &stock); status != http.StatusCreated {
		t.Fatalf("add stock: expected 201, got %d", status)
	}

	txPath := "/api/stock/" + stock.ID + "/transaction"
	buys := []map[string]string{
		{"type": "buy", "shares": "10", "pricePerShare": "100", "timestamp": "2024-01-01"},
		{"type": "buy", "shares": "5", "pricePerShare": "110", "timestamp": "2024-01-02"},
	}
	for _, buy := range buys {
		if status := client.do(http.MethodPost, txPath, buy, nil); status != http.StatusCreated {
			t.Fatalf("buy: expected 201, got %d", status)
		}
	}

	oversell := map[string]string{"type": "sell", "shares": "16", "pricePerShare": "120", "timestamp": "2024-01-03"}
	if status := client.do(http.MethodPost, txPath, oversell, nil); status != http.StatusUnprocessableEntity {
		t.Fatalf("over-sell: expected 422, got %d", status)
	}

	sell := map[string]string{"type": "sell", "shares": "12", "pricePerShare": "120", "timestamp": "2024-01-03"}
	if status := client.do(http.MethodPost, txPath, sell, nil); status != http.StatusCreated {
		t.Fatalf("sell: expected 201, got %d", status)
	}

	var portfolio model.PortfolioSummary
	if status := client.do(http.MethodGet, "/api/portfolio", nil, &portfolio); status != http.StatusOK {
		t.Fatalf("portfolio: expected 200, got %d", status)
	}

	if len(portfolio.Stocks) != 1 {
		t.Fatalf("Expected 1 position, got %d", len(portfolio.Stocks))
	}
	if !portfolio.TotalInvested.Equal(testutil.Dec("330")) {
		t.Errorf("Expected invested 330, got %s", portfolio.TotalInvested)
	}
	if !portfolio.TotalValue.Equal(testutil.Dec("450")) {
		t.Errorf("Expected value 450, got %s", portfolio.TotalValue)
	}

	if status := client.do(http.MethodGet, "/api/stock/not-a-uuid", nil, nil); status != http.StatusBadRequest {
		t.Errorf("malformed id: expected 400, got %d", status)
	}

	if status := client.do(http.MethodDelete, "/api/stock/"+stock.ID, nil, nil); status != http.StatusNoContent {
		t.Errorf("delete stock: expected 204, got %d", status)
	}
	if status := client.do(http.MethodGet, txPath, nil, nil); status != http.StatusNotFound {
		t.Errorf("history of deleted stock: expected 404, got %d", status)
	}
}

func TestRouter_Health(t *testing.T) {
	client := setupServer(t, testutil.NewStubQuoter())

	if status := client.do(http.MethodGet, "/api/system/health", nil, nil); status != http.StatusOK {
		t.Errorf("Expected 200, got %d", status)
	}
}
