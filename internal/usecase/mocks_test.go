package usecase

import (
	"context"
	"errors"

	"github.com/avelins/membergate/internal/core/domain"
	"github.com/avelins/membergate/internal/repository"
)

type mockUserRepository struct {
	createErr   error
	createCalls int
	createdUser domain.User
	nextID      int64

	byID       map[int64]domain.User
	byUsername map[string]domain.User
	byEmail    map[string]domain.User

	getByIDErr       error
	getByUsernameErr error
	getByEmailErr    error

	getByIDCalls       int
	getByUsernameCalls int
	getByEmailCalls    int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		nextID:     1,
		byID:       make(map[int64]domain.User),
		byUsername: make(map[string]domain.User),
		byEmail:    make(map[string]domain.User),
	}
}

func (m *mockUserRepository) add(user domain.User) domain.User {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.byID[user.ID] = user
	m.byUsername[user.Username] = user
	m.byEmail[user.Email] = user
	return user
}

func (m *mockUserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	m.createCalls++
	if m.createErr != nil {
		return domain.User{}, m.createErr
	}
	// Duplicate detection scans the stored records rather than the
	// lookup indexes, mirroring a database constraint: tests simulate a
	// lost check-then-insert race by removing an index entry while the
	// record itself stays put.
	for _, existing := range m.byID {
		if existing.Email == user.Email || existing.Username == user.Username {
			return domain.User{}, repository.ErrDuplicate
		}
	}
	created := m.add(user)
	m.createdUser = created
	return created, nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.getByIDCalls++
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	if user, ok := m.byID[id]; ok {
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.getByUsernameCalls++
	if m.getByUsernameErr != nil {
		return nil, m.getByUsernameErr
	}
	if user, ok := m.byUsername[username]; ok {
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.getByEmailCalls++
	if m.getByEmailErr != nil {
		return nil, m.getByEmailErr
	}
	if user, ok := m.byEmail[email]; ok {
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

// mockHasher is a transparent stand-in for bcrypt: the "digest" is the
// plaintext with a marker prefix, which keeps tests fast and assertable.
type mockHasher struct {
	hashErr     error
	verifyErr   error
	hashCalls   int
	verifyCalls int
}

const mockDigestPrefix = "hashed:"

func (m *mockHasher) Hash(password string) (string, error) {
	m.hashCalls++
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return mockDigestPrefix + password, nil
}

func (m *mockHasher) Verify(password, encoded string) (bool, error) {
	m.verifyCalls++
	if m.verifyErr != nil {
		return false, m.verifyErr
	}
	return encoded == mockDigestPrefix+password, nil
}

func (m *mockHasher) DummyHash() (string, error) {
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return mockDigestPrefix + "\x00dummy", nil
}

var errStoreDown = errors.New("store unavailable")
