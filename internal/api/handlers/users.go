package handlers

import (
	"net/http"

	"github.com/ndewijer/stock-tracker/internal/api/request"
	"github.com/ndewijer/stock-tracker/internal/api/response"
	"github.com/ndewijer/stock-tracker/internal/service"
	"github.com/ndewijer/stock-tracker/internal/validation"
)

// UserHandler handles registration, login and account endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler with the provided service dependency.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Register handles POST requests to create an account.
//
// Endpoint: POST /api/auth/register
// Request Body: RegisterRequest (username, email, password, confirmPassword)
// Response: 201 Created with User
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the username or email is taken
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RegisterRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRegister(req); err != nil {
		respondServiceError(w, err, "failed to register")
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to register")
		return
	}

	response.RespondJSON(w, http.StatusCreated, user)
}

// Login handles POST requests to start a session.
//
// Endpoint: POST /api/auth/login
// Request Body: LoginRequest (username, password)
// Response: 200 OK with Session (token, userId, expiresAt)
// Error: 401 Unauthorized if the credentials do not match
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateLogin(req); err != nil {
		respondServiceError(w, err, "failed to log in")
		return
	}

	session, err := h.userService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "failed to log in")
		return
	}

	response.RespondJSON(w, http.StatusOK, session)
}

// Account handles GET requests for the authenticated user's profile.
//
// Endpoint: GET /api/account
// Response: 200 OK with User
func (h *UserHandler) Account(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve account")
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// DeleteAccount handles DELETE requests to remove the authenticated user and
// everything they own. The current password must be supplied.
//
// Endpoint: DELETE /api/account
// Request Body: DeleteAccountRequest (password)
// Response: 204 No Content
// Error: 401 Unauthorized if the password does not match
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.DeleteAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateDeleteAccount(req); err != nil {
		respondServiceError(w, err, "failed to delete account")
		return
	}

	if err := h.userService.DeleteAccount(r.Context(), userID, req.Password); err != nil {
		respondServiceError(w, err, "failed to delete account")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
