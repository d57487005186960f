package validation

import (
	"net/mail"
	"strings"

	"github.com/ndewijer/stock-tracker/internal/api/request"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// ValidateRegister validates a registration request.
// Username, email and both password fields are required; the passwords must match.
func ValidateRegister(req request.RegisterRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Username) == "" {
		errors["username"] = "username is required"
	}

	if strings.TrimSpace(req.Email) == "" {
		errors["email"] = "email is required"
	} else if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != strings.TrimSpace(req.Email) {
		errors["email"] = "invalid email address"
	}

	if req.Password == "" {
		errors["password"] = "password is required"
	} else if len(req.Password) < MinPasswordLength {
		errors["password"] = "password must be at least 8 characters"
	}

	if req.ConfirmPassword == "" {
		errors["confirmPassword"] = "confirmPassword is required"
	} else if req.ConfirmPassword != req.Password {
		errors["confirmPassword"] = "passwords do not match"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateLogin(req request.LoginRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Username) == "" {
		errors["username"] = "username is required"
	}
	if req.Password == "" {
		errors["password"] = "password is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateDeleteAccount(req request.DeleteAccountRequest) error {
	if req.Password == "" {
		return &Error{Fields: map[string]string{"password": "password is required"}}
	}
	return nil
}
