package request

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DeleteAccountRequest requires the current password to confirm the deletion.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}
