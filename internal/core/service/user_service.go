package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/core/ports"
	"github.com/sirpyerre/library-tracker/internal/pkg/metrics"
)

// UserService implements registration and login against the user directory.
type UserService struct {
	repo      ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

// NewUserService returns a UserService. Tokens are issued only when
// jwtSecret is non-empty.
func NewUserService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Register creates a user. The id is checked for uniqueness before the username.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if in.UserID == "" || in.Username == "" || in.PhoneNumber == "" {
		return nil, domain.MissingField("Username, user ID, and phone number are required")
	}

	if err := s.ensureAbsent(ctx, s.repo.FindByID, in.UserID, domain.ErrDuplicateID); err != nil {
		return nil, err
	}
	if err := s.ensureAbsent(ctx, s.repo.FindByUsername, in.Username, domain.ErrDuplicateUsername); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:          in.UserID,
		Username:    in.Username,
		PhoneNumber: in.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	metrics.UsersRegisteredTotal.Inc()
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return s.result(user)
}

// Authenticate checks the phone number against the stored one. The comparison
// is an exact plaintext match.
func (s *UserService) Authenticate(ctx context.Context, userID, phoneNumber string) (*ports.AuthResult, error) {
	if userID == "" || phoneNumber == "" {
		return nil, domain.MissingField("User ID and phone number are required")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("not_found").Inc()
			return nil, err
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if user.PhoneNumber != phoneNumber {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		s.log.Warn().Str("user_id", userID).Msg("login rejected: phone number mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return s.result(user)
}

func (s *UserService) ensureAbsent(
	ctx context.Context,
	find func(context.Context, string) (*domain.User, error),
	key string,
	conflict error,
) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return conflict
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("register user: %w", err)
	}
}

func (s *UserService) result(user *domain.User) (*ports.AuthResult, error) {
	res := &ports.AuthResult{User: user}
	if s.jwtSecret == "" {
		return res, nil
	}
	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	res.Token = token
	return res, nil
}

func (s *UserService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
