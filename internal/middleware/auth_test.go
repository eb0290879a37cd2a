package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kingtan/api-users/internal/crypto"
)

const testSecret = "test-secret"

type fakeRoleLoader struct {
	roles map[string][]string
}

func (f *fakeRoleLoader) RolesByUsername(_ context.Context, username string) ([]string, error) {
	roles, ok := f.roles[username]
	if !ok {
		return nil, errors.New("user not found")
	}
	return roles, nil
}

// probe records whether the downstream handler ran and what principal it saw.
type probe struct {
	called    bool
	principal Principal
	hasAuth   bool
}

func (p *probe) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.called = true
		p.principal, p.hasAuth = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func runFilter(t *testing.T, loader RoleLoader, publicPaths []string, path, authHeader string) (*probe, *httptest.ResponseRecorder) {
	t.Helper()
	p := &probe{}
	filter := Authenticate(testSecret, loader, publicPaths)(p.handler())

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	filter.ServeHTTP(rr, req)
	return p, rr
}

func TestAuthenticate_PublicPathSkipsAuth(t *testing.T) {
	loader := &fakeRoleLoader{roles: map[string][]string{}}
	p, rr := runFilter(t, loader, []string{"/api/v1/auth/login"}, "/api/v1/auth/login", "")

	if !p.called {
		t.Fatal("handler should run for public path")
	}
	if p.hasAuth {
		t.Error("public path should carry no principal")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestAuthenticate_NoHeaderProceedsAnonymously(t *testing.T) {
	loader := &fakeRoleLoader{roles: map[string][]string{}}
	p, rr := runFilter(t, loader, nil, "/api/v1/users", "")

	if !p.called {
		t.Fatal("filter must never short-circuit the chain")
	}
	if p.hasAuth {
		t.Error("no principal expected without an Authorization header")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestAuthenticate_NonBearerSchemeProceedsAnonymously(t *testing.T) {
	loader := &fakeRoleLoader{roles: map[string][]string{}}
	p, _ := runFilter(t, loader, nil, "/api/v1/users", "Basic dXNlcjpwYXNz")

	if !p.called {
		t.Fatal("handler should run")
	}
	if p.hasAuth {
		t.Error("no principal expected for non-Bearer scheme")
	}
}

func TestAuthenticate_ExpiredTokenProceedsAnonymously(t *testing.T) {
	token, err := crypto.GenerateToken("alice", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	loader := &fakeRoleLoader{roles: map[string][]string{"alice": {"ROLE_USER"}}}
	p, rr := runFilter(t, loader, nil, "/api/v1/users", "Bearer "+token)

	if !p.called {
		t.Fatal("handler should run")
	}
	if p.hasAuth {
		t.Error("expired token must not produce a principal")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (authorization is downstream's job)", rr.Code)
	}
}

func TestAuthenticate_TamperedTokenProceedsAnonymously(t *testing.T) {
	token, err := crypto.GenerateToken("alice", "another-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	loader := &fakeRoleLoader{roles: map[string][]string{"alice": {"ROLE_USER"}}}
	p, _ := runFilter(t, loader, nil, "/api/v1/users", "Bearer "+token)

	if !p.called {
		t.Fatal("handler should run")
	}
	if p.hasAuth {
		t.Error("token signed with a different secret must not produce a principal")
	}
}

func TestAuthenticate_DeletedUserProceedsAnonymously(t *testing.T) {
	token, err := crypto.GenerateToken("deleted-user", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	loader := &fakeRoleLoader{roles: map[string][]string{}}
	p, rr := runFilter(t, loader, nil, "/api/v1/users", "Bearer "+token)

	if !p.called {
		t.Fatal("handler should run despite role lookup failure")
	}
	if p.hasAuth {
		t.Error("a lookup failure must not produce a principal")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (lookup failure is not a request error)", rr.Code)
	}
}

func TestAuthenticate_ValidTokenAttachesPrincipal(t *testing.T) {
	token, err := crypto.GenerateToken("alice", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	loader := &fakeRoleLoader{roles: map[string][]string{"alice": {"ROLE_USER", "ROLE_ADMIN"}}}
	p, _ := runFilter(t, loader, nil, "/api/v1/users", "Bearer "+token)

	if !p.called {
		t.Fatal("handler should run")
	}
	if !p.hasAuth {
		t.Fatal("expected a principal for a valid token")
	}
	if p.principal.Username != "alice" {
		t.Errorf("principal username = %q, want %q", p.principal.Username, "alice")
	}
	if !p.principal.HasRole("ROLE_ADMIN") || !p.principal.HasRole("ROLE_USER") {
		t.Errorf("principal roles = %v", p.principal.Roles)
	}
}
