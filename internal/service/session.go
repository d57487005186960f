package service

import (
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/stock-tracker/internal/apperrors"
	"github.com/ndewijer/stock-tracker/internal/model"
)

// SessionManager issues and verifies fernet session tokens.
// A token carries the user ID; fernet's embedded timestamp enforces the TTL.
type SessionManager struct {
	key *fernet.Key
	ttl time.Duration
}

// NewSessionManager creates a SessionManager from a base64 fernet key.
// An empty key generates a fresh one, which invalidates sessions on restart.
func NewSessionManager(encodedKey string, ttl time.Duration) (*SessionManager, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session TTL must be positive, got %s", ttl)
	}

	var key *fernet.Key
	if encodedKey == "" {
		key = new(fernet.Key)
		if err := key.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate session key: %w", err)
		}
	} else {
		decoded, err := fernet.DecodeKey(encodedKey)
		if err != nil {
			return nil, fmt.Errorf("invalid session key: %w", err)
		}
		key = decoded
	}

	return &SessionManager{key: key, ttl: ttl}, nil
}

// Issue creates a session token for userID.
func (m *SessionManager) Issue(userID string) (model.Session, error) {
	token, err := fernet.EncryptAndSign([]byte(userID), m.key)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return model.Session{
		Token:     string(token),
		UserID:    userID,
		ExpiresAt: now().Add(m.ttl),
	}, nil
}

// Verify returns the user ID carried by token.
// Returns ErrInvalidSession for tampered, foreign or expired tokens.
func (m *SessionManager) Verify(token string) (string, error) {
	if token == "" {
		return "", apperrors.ErrInvalidSession
	}

	payload := fernet.VerifyAndDecrypt([]byte(token), m.ttl, []*fernet.Key{m.key})
	if payload == nil {
		return "", apperrors.ErrInvalidSession
	}

	return string(payload), nil
}
