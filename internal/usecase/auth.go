package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avelins/membergate/internal/core/domain"
	"github.com/avelins/membergate/internal/core/port"
	"github.com/avelins/membergate/internal/infra/logger"
	"github.com/avelins/membergate/internal/repository"
)

// ErrInvalidCredentials is the single caller-facing failure for both an
// unknown login name and a wrong password. Collapsing the two prevents
// username enumeration; the precise reason is only logged.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService verifies credentials against the user store.
type AuthService struct {
	users     port.UserRepository
	hasher    port.PasswordHasher
	dummyHash string
	log       *zap.Logger
}

// NewAuthService constructs an AuthService. A dummy digest is computed
// once up front so the unknown-user path can run the same verification
// work as the known-user path.
func NewAuthService(users port.UserRepository, hasher port.PasswordHasher, log *zap.Logger) (*AuthService, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dummy, err := hasher.DummyHash()
	if err != nil {
		return nil, fmt.Errorf("compute dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		dummyHash: dummy,
		log:       log,
	}, nil
}

// Authenticate looks up the account by login name and verifies the
// password. It returns the matching record with the password hash
// blanked, or ErrInvalidCredentials. Store and hashing failures are
// logged with detail and returned wrapped; callers must surface them
// as a generic failure.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn the same bcrypt work as a real comparison so the
			// miss is not distinguishable by response time.
			_, _ = s.hasher.Verify(password, s.dummyHash)
			logger.With(ctx, s.log).Info("login failed: unknown username",
				zap.String("username", username))
			return domain.User{}, ErrInvalidCredentials
		}
		logger.With(ctx, s.log).Error("login lookup failed", zap.Error(err))
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		logger.With(ctx, s.log).Error("password verification failed",
			zap.Int64("user_id", user.ID), zap.Error(err))
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		logger.With(ctx, s.log).Info("login failed: wrong password",
			zap.Int64("user_id", user.ID))
		return domain.User{}, ErrInvalidCredentials
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return sanitized, nil
}
