package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/skipdm/edworking/internal/domain/model"
	pgrepo "github.com/skipdm/edworking/internal/repo/postgres"
	redrepo "github.com/skipdm/edworking/internal/repo/redis"
	authsvc "github.com/skipdm/edworking/internal/services/auth"
)

type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	byTgID map[string]model.User
	byID   map[int64]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byTgID: map[string]model.User{},
		byID:   map[int64]model.User{},
	}
}

func (s *memUserStore) Create(_ context.Context, u pgrepo.NewUser) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byTgID[u.TgID]; ok {
		return model.User{}, pgrepo.ErrUserExists
	}
	s.nextID++
	user := model.User{
		ID:           s.nextID,
		Email:        u.Email,
		TgID:         u.TgID,
		PasswordHash: u.PasswordHash,
		DisplayName:  u.DisplayName,
		BirthDate:    u.BirthDate,
	}
	s.byTgID[u.TgID] = user
	s.byID[user.ID] = user
	return user, nil
}

func (s *memUserStore) GetByTgID(_ context.Context, tgID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byTgID[tgID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func (s *memUserStore) GetByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func newAuthServiceForTest(t *testing.T) *authsvc.Service {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redrepo.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() {
		_ = client.Close()
	})

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	return authsvc.NewService(jwtManager, newMemUserStore(), redrepo.NewSessionRepo(client), 48*time.Hour)
}

func loginForTest(t *testing.T, service *authsvc.Service) authsvc.AuthResult {
	t.Helper()

	ctx := context.Background()
	_, err := service.Register(ctx, authsvc.RegisterInput{
		Email:       "alice@example.com",
		TgID:        "tg-1",
		Password:    "secret-pass",
		DisplayName: "Alice",
		BirthDate:   time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := service.Login(ctx, "tg-1", "secret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return res
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc.def", "abc.def", true},
		{"  Bearer token", "token", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		token, ok := extractBearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("header %q: got (%q, %v) want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := AuthMiddleware(newAuthServiceForTest(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not be called without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsForgedToken(t *testing.T) {
	mw := AuthMiddleware(newAuthServiceForTest(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not be called with a forged token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	service := newAuthServiceForTest(t)
	res := loginForTest(t, service)
	mw := AuthMiddleware(service, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+res.AccessToken)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing in context")
		}
		if identity.UserID != res.User.ID {
			t.Fatalf("identity user mismatch: got %d want %d", identity.UserID, res.User.ID)
		}
		if identity.SID == "" {
			t.Fatalf("identity sid is empty")
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsTokenAfterLogout(t *testing.T) {
	service := newAuthServiceForTest(t)
	res := loginForTest(t, service)

	claims, err := service.ValidateAccessToken(context.Background(), res.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if err := service.Logout(context.Background(), claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	mw := AuthMiddleware(service, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+res.AccessToken)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not be called after logout")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}
