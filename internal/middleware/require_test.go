package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func runGuard(t *testing.T, principal *Principal, roles ...string) (*probe, *httptest.ResponseRecorder) {
	t.Helper()
	p := &probe{}
	guard := RequireRoles(roles...)(p.handler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	if principal != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), *principal))
	}
	rr := httptest.NewRecorder()
	guard.ServeHTTP(rr, req)
	return p, rr
}

func TestRequireRoles_NoPrincipal(t *testing.T) {
	p, rr := runGuard(t, nil, "ROLE_USER")

	if p.called {
		t.Error("handler must not run without a principal")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestRequireRoles_InsufficientRole(t *testing.T) {
	p, rr := runGuard(t, &Principal{Username: "alice", Roles: []string{"ROLE_USER"}}, "ROLE_ADMIN")

	if p.called {
		t.Error("handler must not run for an insufficient role")
	}
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

func TestRequireRoles_AnyOfSeveral(t *testing.T) {
	p, rr := runGuard(t, &Principal{Username: "alice", Roles: []string{"ROLE_USER"}}, "ROLE_USER", "ROLE_ADMIN")

	if !p.called {
		t.Error("handler should run when any listed role matches")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
