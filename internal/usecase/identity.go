package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelins/membergate/internal/core/domain"
	"github.com/avelins/membergate/internal/core/port"
	"github.com/avelins/membergate/internal/repository"
)

// ErrIdentityUnknown indicates the session token no longer resolves to
// a user record. The caller must clear the session and continue as
// anonymous.
var ErrIdentityUnknown = errors.New("session identity does not resolve")

// IdentityService converts a user record to the minimal token stored in
// the session and rehydrates the record on each request. Resolution is
// a single indexed lookup since it sits on the hot path for all
// authenticated traffic.
type IdentityService struct {
	users port.UserRepository
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(users port.UserRepository) *IdentityService {
	return &IdentityService{users: users}
}

// Token returns the value persisted in the session for the user: the
// record id, never the password hash nor the full record.
func (s *IdentityService) Token(user domain.User) int64 {
	return user.ID
}

// Resolve loads the user record behind a session token. An id that
// matches no record yields ErrIdentityUnknown.
func (s *IdentityService) Resolve(ctx context.Context, token int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrIdentityUnknown
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &sanitized, nil
}
