package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chargebook/internal/models"
	"chargebook/internal/password"
	"chargebook/internal/repository"
)

var (
	// ErrEmailInUse is returned when attempting to register duplicate email.
	ErrEmailInUse = errors.New("auth: email already registered")
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// AuthService contains registration/login logic.
type AuthService struct {
	users         UserStore
	hasher        password.Hasher
	tokenizer     *TokenService
	signupBalance decimal.Decimal
	logger        *zap.Logger
}

// NewAuthService builds AuthService. signupBalance seeds new accounts so
// they can book without a payment gateway.
func NewAuthService(users UserStore, hasher password.Hasher, tokenizer *TokenService, signupBalance decimal.Decimal, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:         users,
		hasher:        hasher,
		tokenizer:     tokenizer,
		signupBalance: signupBalance,
		logger:        logger,
	}
}

// Signup registers a new user account.
func (s *AuthService) Signup(ctx context.Context, email, plainPassword, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("auth: email required")
	}
	if plainPassword == "" {
		return nil, errors.New("auth: password required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         models.RoleUser,
		Balance:      s.signupBalance,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login authenticates a user and produces a JWT.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// CurrentUser resolves the authenticated identity, including balance.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Token issues a JWT for an already-authenticated user (signup response).
func (s *AuthService) Token(user *models.User) (string, error) {
	return s.tokenizer.GenerateToken(user.ID, user.Role)
}
