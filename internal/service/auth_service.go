package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/market-desk/internal/auth"
	"github.com/spec-kit/market-desk/internal/config"
	"github.com/spec-kit/market-desk/internal/domain"
	"github.com/spec-kit/market-desk/internal/events"
	"github.com/spec-kit/market-desk/internal/observability"
	"github.com/spec-kit/market-desk/internal/repository"
	apperrors "github.com/spec-kit/market-desk/pkg/util"
)

const minPasswordLength = 6

// AuthService coordinates registration, login and token verification.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	bcryptCost int

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// TokenManager exposes the signer, mainly for tests that need crafted tokens.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a new account. The address is stored as submitted (trimmed)
// and must be unique ignoring case.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if !IsValidEmail(email) || utf8.RuneCountInString(password) < minPasswordLength {
		return nil, apperrors.NewValidationError("Valid email and password (min 6 chars) are required.", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("User with this email already exists.", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Data:         domain.NewUserData(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("User with this email already exists.", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuthEvent("register")
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventUserRegistered, user.ID, user.ID, events.UserRegisteredPayload{
		Email: user.Email,
		Role:  string(user.Role),
	}))
	return user, nil
}

// Login authenticates by email (case-insensitive) and password. Missing or
// malformed input is a validation error; unknown addresses and wrong passwords
// are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("Email and password are required", nil)
	}
	if !IsValidEmail(email) {
		return nil, apperrors.NewValidationError("Invalid email format", nil)
	}

	invalid := apperrors.NewUnauthorized("Invalid credentials")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInternalError(err)
		}
		// equalize timing with the wrong-password path
		_ = auth.ComparePassword(s.dummyPasswordHash(), password)
		s.metrics.RecordAuthEvent("login_failed")
		return nil, invalid
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.metrics.RecordAuthEvent("login_failed")
		return nil, invalid
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.metrics.RecordAuthEvent("login")
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// Verify resolves a bearer token to the user it was issued to. The user is
// loaded on every call, so deleting an account invalidates its tokens.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("Authentication failed: Invalid token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("User not found")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		hash, err := auth.HashPassword(hex.EncodeToString(buf), s.bcryptCost)
		if err != nil {
			s.logger.Warn("dummy hash generation failed", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
