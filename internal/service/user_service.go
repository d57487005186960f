package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ndewijer/stock-tracker/internal/api/request"
	"github.com/ndewijer/stock-tracker/internal/apperrors"
	"github.com/ndewijer/stock-tracker/internal/model"
	"github.com/ndewijer/stock-tracker/internal/repository"
)

// UserService handles registration, login and account deletion.
type UserService struct {
	db           *sql.DB
	userRepo     *repository.UserRepository
	stockRepo    *repository.StockRepository
	sessions     *SessionManager
	passwordCost int
}

// NewUserService creates a new UserService with the provided repository dependencies.
func NewUserService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	stockRepo *repository.StockRepository,
	sessions *SessionManager,
) *UserService {
	return &UserService{
		db:           db,
		userRepo:     userRepo,
		stockRepo:    stockRepo,
		sessions:     sessions,
		passwordCost: bcrypt.DefaultCost,
	}
}

// WithPasswordCost overrides the bcrypt cost used for new password hashes.
func (s *UserService) WithPasswordCost(cost int) *UserService {
	s.passwordCost = cost
	return s
}

// Register creates a new user with a bcrypt-hashed password.
// Returns ErrDuplicateEntry if the username or email is already taken.
func (s *UserService) Register(ctx context.Context, req request.RegisterRequest) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.passwordCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		CreatedAt:    now(),
	}

	if err := s.userRepo.InsertUser(ctx, &user); err != nil {
		return model.User{}, err
	}

	return user, nil
}

// Login checks the credentials and issues a session.
// Unknown usernames and wrong passwords both return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req request.LoginRequest) (model.Session, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return model.Session{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.Session{}, err
	}

	if err := checkPassword(user, req.Password); err != nil {
		return model.Session{}, err
	}

	return s.sessions.Issue(user.ID)
}

// Authenticate resolves a session token to the ID of an existing user.
func (s *UserService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.sessions.Verify(token)
	if err != nil {
		return "", err
	}

	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.ErrInvalidSession
		}
		return "", err
	}

	return userID, nil
}

// GetUser returns the account of userID.
// Returns ErrUserNotFound if the account no longer exists.
func (s *UserService) GetUser(ctx context.Context, userID string) (model.User, error) {
	return s.userRepo.GetUser(ctx, userID)
}

// DeleteAccount removes the user together with every stock and transaction
// they own, after confirming the password.
func (s *UserService) DeleteAccount(ctx context.Context, userID string, password string) error {
	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := checkPassword(user, password); err != nil {
		return err
	}

	return repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.stockRepo.WithTx(tx).DeleteStocksByUser(ctx, userID); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).DeleteUser(ctx, userID)
	})
}

func checkPassword(user model.User, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	return nil
}
