package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/avelins/membergate/internal/core/domain"
	"github.com/avelins/membergate/internal/core/port"
	"github.com/avelins/membergate/internal/infra/logger"
	"github.com/avelins/membergate/internal/infra/security"
	"github.com/avelins/membergate/internal/repository"
)

var (
	// ErrEmailTaken indicates the email already belongs to an account.
	// Callers treat it as "already a member" and send the user to login.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken indicates the login name is already in use.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrValidation indicates malformed or missing registration input.
	ErrValidation = errors.New("invalid registration input")
)

// RegistrationInput carries the fields of the registration form. The
// plaintext password is request-scoped and never persisted.
type RegistrationInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// RegistrationService handles new account onboarding.
type RegistrationService struct {
	users     port.UserRepository
	hasher    port.PasswordHasher
	validator *security.PasswordValidator
	log       *zap.Logger
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(users port.UserRepository, hasher port.PasswordHasher, validator *security.PasswordValidator, log *zap.Logger) *RegistrationService {
	if validator == nil {
		validator = security.PermissivePasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{users: users, hasher: hasher, validator: validator, log: log}
}

// Register creates a new account. The email and username pre-checks
// are UX hints; the insert's uniqueness constraints are the
// authoritative duplicate signal, so a losing race between check and
// insert still surfaces as a duplicate rather than a half-written
// record.
func (s *RegistrationService) Register(ctx context.Context, input RegistrationInput) (domain.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return domain.User{}, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	if err := s.validator.Validate(input.Password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	_, err := s.users.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		logger.With(ctx, s.log).Info("registration rejected: email exists",
			zap.String("email", logger.MaskEmail(input.Email)))
		return domain.User{}, ErrEmailTaken
	case errors.Is(err, repository.ErrNotFound):
		// continue
	default:
		logger.With(ctx, s.log).Error("registration pre-check failed", zap.Error(err))
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}

	_, err = s.users.GetByUsername(ctx, input.Username)
	switch {
	case err == nil:
		logger.With(ctx, s.log).Info("registration rejected: username exists",
			zap.String("username", input.Username))
		return domain.User{}, ErrUsernameTaken
	case errors.Is(err, repository.ErrNotFound):
		// continue
	default:
		logger.With(ctx, s.log).Error("registration pre-check failed", zap.Error(err))
		return domain.User{}, fmt.Errorf("check username: %w", err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		logger.With(ctx, s.log).Error("password hashing failed", zap.Error(err))
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.With(ctx, s.log).Info("registration rejected: constraint violation",
				zap.String("email", logger.MaskEmail(input.Email)))
			// The constraint does not say which column collided; a
			// lookup by username tells the two apart.
			if _, lookupErr := s.users.GetByUsername(ctx, input.Username); lookupErr == nil {
				return domain.User{}, ErrUsernameTaken
			}
			return domain.User{}, ErrEmailTaken
		}
		logger.With(ctx, s.log).Error("user insert failed", zap.Error(err))
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	logger.With(ctx, s.log).Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)))

	user.PasswordHash = ""

	return user, nil
}
