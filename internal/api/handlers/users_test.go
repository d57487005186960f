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

func TestUserHandler_Register(t *testing.T) {
	setupHandler := func(t *testing.T) (*UserHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		return NewUserHandler(testutil.NewTestUserService(t, db)), db
	}

	t.Run("creates a user without exposing the hash", func(t *testing.T) {
		handler, db := setupHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"username":        "alice",
			"email":           "alice@example.com",
			"password":        "password123",
			"confirmPassword": "password123",
		}, nil)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var body map[string]any
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)

		if body["username"] != "alice" {
			t.Errorf("Expected username alice, got %v", body["username"])
		}
		if _, ok := body["passwordHash"]; ok {
			t.Error("Expected password hash to be omitted")
		}
		testutil.AssertRowCount(t, db, `"user"`, 1)
	})

	t.Run("returns 400 for mismatched passwords", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"username":        "alice",
			"email":           "alice@example.com",
			"password":        "password123",
			"confirmPassword": "password124",
		}, nil)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 409 for a taken username", func(t *testing.T) {
		handler, db := setupHandler(t)
		testutil.NewUser().WithUsername("alice").Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"username":        "alice",
			"email":           "new@example.com",
			"password":        "password123",
			"confirmPassword": "password123",
		}, nil)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for invalid JSON", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", "{", nil)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestUserHandler_Login(t *testing.T) {
	setupHandler := func(t *testing.T) (*UserHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		return NewUserHandler(testutil.NewTestUserService(t, db)), db
	}

	t.Run("returns a session token", func(t *testing.T) {
		handler, db := setupHandler(t)
		user := testutil.NewUser().WithUsername("alice").Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "alice",
			"password": testutil.DefaultPassword,
		}, nil)
		w := httptest.NewRecorder()

		handler.Login(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var session model.Session
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&session)

		if session.Token == "" {
			t.Error("Expected token to be populated")
		}
		if session.UserID != user.ID {
			t.Errorf("Expected user %s, got %s", user.ID, session.UserID)
		}
	})

	t.Run("returns 401 for a wrong password", func(t *testing.T) {
		handler, db := setupHandler(t)
		testutil.NewUser().WithUsername("alice").Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "alice",
			"password": "nope-nope",
		}, nil)
		w := httptest.NewRecorder()

		handler.Login(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestUserHandler_DeleteAccount(t *testing.T) {
	setupHandler := func(t *testing.T) (*UserHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		return NewUserHandler(testutil.NewTestUserService(t, db)), db
	}

	t.Run("deletes the account and its positions", func(t *testing.T) {
		handler, db := setupHandler(t)
		user := testutil.NewUser().Build(t, db)
		stock := testutil.NewStock(user.ID).Build(t, db)
		testutil.NewTransaction(stock.ID).Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodDelete, "/api/account", map[string]string{
			"password": testutil.DefaultPassword,
		}, nil)
		w := httptest.NewRecorder()

		handler.DeleteAccount(w, testutil.AsUser(req, user.ID))

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, `"user"`, 0)
		testutil.AssertRowCount(t, db, "stock", 0)
		testutil.AssertRowCount(t, db, "stock_transaction", 0)
	})

	t.Run("returns 401 for a wrong password", func(t *testing.T) {
		handler, db := setupHandler(t)
		user := testutil.NewUser().Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodDelete, "/api/account", map[string]string{
			"password": "wrong-password",
		}, nil)
		w := httptest.NewRecorder()

		handler.DeleteAccount(w, testutil.AsUser(req, user.ID))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, `"user"`, 1)
	})

	t.Run("returns 401 without a session", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodDelete, "/api/account", map[string]string{"password": "x"}, nil)
		w := httptest.NewRecorder()

		handler.DeleteAccount(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})
}
