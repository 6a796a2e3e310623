package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/avelins/membergate/internal/core/domain"
	"github.com/avelins/membergate/internal/infra/config"
	"github.com/avelins/membergate/internal/infra/security"
	"github.com/avelins/membergate/internal/repository"
	"github.com/avelins/membergate/internal/usecase"
)

type memoryUserStore struct {
	nextID int64
	users  map[int64]domain.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{nextID: 1, users: make(map[int64]domain.User)}
}

func (s *memoryUserStore) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return domain.User{}, repository.ErrDuplicate
		}
	}
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user
	return user, nil
}

func (s *memoryUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *memoryUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newTestEngine(t *testing.T) (*memoryUserStore, http.Handler) {
	t.Helper()

	cfg := &config.AppConfig{}
	cfg.App.Env = "test"
	cfg.Session.CookieName = "mg_session"
	cfg.Session.Secret = "routes-test-secret"

	store := newMemoryUserStore()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	log := zap.NewNop()

	auth, err := usecase.NewAuthService(store, hasher, log)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}

	engine := Register(Dependencies{
		Config:       cfg,
		Logger:       log,
		SessionStore: cookie.NewStore([]byte(cfg.Session.Secret)),
		Services: ServiceSet{
			Auth:         auth,
			Registration: usecase.NewRegistrationService(store, hasher, security.PermissivePasswordValidator(), log),
			Identity:     usecase.NewIdentityService(store),
		},
	})

	return store, engine
}

func get(h http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func postForm(h http.Handler, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpointsBypassSessions(t *testing.T) {
	_, engine := newTestEngine(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		w := get(engine, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, w.Code)
		}
		if len(w.Result().Cookies()) != 0 {
			t.Fatalf("GET %s: must not set a session cookie", path)
		}
	}
}

func TestHomeRedirectsAnonymousToLogin(t *testing.T) {
	_, engine := newTestEngine(t)

	w := get(engine, "/", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestPublicPagesRender(t *testing.T) {
	_, engine := newTestEngine(t)

	for _, path := range []string{"/login", "/register"} {
		w := get(engine, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), "<form") {
			t.Fatalf("GET %s: expected a form in the response", path)
		}
	}
}

func TestLoginFailureRedirectsWithFlag(t *testing.T) {
	_, engine := newTestEngine(t)

	w := postForm(engine, "/login", url.Values{
		"username": {"nobody"},
		"password": {"whatever"},
	}, nil)

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?failed=1" {
		t.Fatalf("expected redirect to /login?failed=1, got %q", loc)
	}
}

func TestRegisterLoginAndReachHome(t *testing.T) {
	store, engine := newTestEngine(t)

	w := postForm(engine, "/register", url.Values{
		"first_name": {"Ann"},
		"last_name":  {"Lee"},
		"username":   {"annl"},
		"email":      {"ann@x.com"},
		"password":   {"Secret123!"},
	}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("register: expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("register: expected redirect to /login, got %q", loc)
	}
	if len(store.users) != 1 {
		t.Fatalf("expected one persisted user, got %d", len(store.users))
	}

	w = postForm(engine, "/login", url.Values{
		"username": {"annl"},
		"password": {"Secret123!"},
	}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("login: expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Fatalf("login: expected redirect to /, got %q", loc)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login: expected a session cookie")
	}

	w = get(engine, "/", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("home: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "annl") {
		t.Fatal("home: expected the page to greet the signed-in user")
	}

	// Authenticated users are bounced off the login and register forms.
	for _, path := range []string{"/login", "/register"} {
		w = get(engine, path, cookies)
		if w.Code != http.StatusFound {
			t.Fatalf("GET %s: expected 302 for authenticated user, got %d", path, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/" {
			t.Fatalf("GET %s: expected redirect to /, got %q", path, loc)
		}
	}

	// Logout invalidates the session for subsequent requests.
	w = get(engine, "/logout", cookies)
	if w.Code != http.StatusFound {
		t.Fatalf("logout: expected 302, got %d", w.Code)
	}
	loggedOut := w.Result().Cookies()
	if len(loggedOut) == 0 {
		t.Fatal("logout: expected the session cookie to be rewritten")
	}

	w = get(engine, "/", loggedOut)
	if w.Code != http.StatusFound {
		t.Fatalf("home after logout: expected 302, got %d", w.Code)
	}
}
