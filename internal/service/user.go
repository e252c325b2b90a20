package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/tkarlsen/bodega/internal/auth"
	"github.com/tkarlsen/bodega/internal/domain"
	"github.com/tkarlsen/bodega/internal/events"
	"github.com/tkarlsen/bodega/internal/repository"
	"github.com/tkarlsen/bodega/internal/telemetry"
)

// UserStore is the persistence surface the user service needs.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateUser(ctx context.Context, id int64, params domain.UpdateUserParams) (domain.User, error)
}

// UserService handles accounts: signup, login, and profile management.
type UserService struct {
	store     UserStore
	tokens    *auth.TokenIssuer
	publisher events.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    zerolog.Logger
}

// NewUserService creates a user service.
func NewUserService(store UserStore, tokens *auth.TokenIssuer, publisher events.Publisher, metrics *telemetry.BusinessMetrics, logger zerolog.Logger) *UserService {
	return &UserService{
		store:     store,
		tokens:    tokens,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("service", "user").Logger(),
	}
}

// Signup registers an account and returns a signed access token.
func (s *UserService) Signup(ctx context.Context, params domain.SignupParams) (string, domain.User, error) {
	hash, err := auth.HashPassword(params.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return "", domain.User{}, domain.Errorf(domain.EINVALID, "user.signup", "Password must be at least 8 characters")
	}
	if err != nil {
		return "", domain.User{}, domain.Internal(err, "user.signup", "failed to hash password")
	}

	user, err := s.store.CreateUser(ctx, params.Name, params.Email, hash)
	if repository.IsUniqueViolation(err) {
		return "", domain.User{}, ErrEmailTaken
	}
	if err != nil {
		return "", domain.User{}, domain.Internal(err, "user.signup", "failed to create user")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", domain.User{}, domain.Internal(err, "user.signup", "failed to issue token")
	}

	s.metrics.Signups.Inc()
	s.publisher.Publish(events.SubjectUserSignedUp, events.UserSignedUp{
		UserID: user.ID,
		Email:  user.Email,
	})
	s.logger.Info().Int64("user_id", user.ID).Msg("account created")

	return token, user, nil
}

// Login verifies credentials and returns a signed access token. Wrong
// email and wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		s.metrics.LoginFailed.Inc()
		return "", domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, domain.Internal(err, "user.login", "failed to load user")
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		s.metrics.LoginFailed.Inc()
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", domain.User{}, domain.Internal(err, "user.login", "failed to issue token")
	}

	s.metrics.Logins.Inc()
	return token, user, nil
}

// Profile returns the user's account record.
func (s *UserService) Profile(ctx context.Context, userID int64) (domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.Internal(err, "user.profile", "failed to load user")
	}
	return user, nil
}

// CheckEmail reports whether an account with the email exists.
func (s *UserService) CheckEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return false, domain.Internal(err, "user.check_email", "failed to check email")
	}
	return exists, nil
}

// Update applies a partial profile update and returns the updated
// record.
func (s *UserService) Update(ctx context.Context, userID int64, params domain.UpdateUserParams) (domain.User, error) {
	user, err := s.store.UpdateUser(ctx, userID, params)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.Internal(err, "user.update", "failed to update user")
	}
	return user, nil
}
