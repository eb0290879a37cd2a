package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kingtan/api-users/internal/crypto"
)

// Principal is the authenticated identity attached to the request context.
type Principal struct {
	Username string
	Roles    []string
}

// HasRole reports whether the principal holds the named role.
func (p Principal) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal holds at least one of the roles.
func (p Principal) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if p.HasRole(name) {
			return true
		}
	}
	return false
}

type principalKey struct{}

// ContextWithPrincipal attaches the principal to the context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RoleLoader resolves the roles assigned to a username. Implemented by the
// user repository.
type RoleLoader interface {
	RolesByUsername(ctx context.Context, username string) ([]string, error)
}

const bearerPrefix = "Bearer "

// Authenticate returns the per-request security filter. It establishes the
// security context and nothing else: the request always proceeds to the next
// handler, either carrying an authenticated principal or anonymously.
// Route-level guards decide whether anonymous is acceptable.
//
// Requests whose path is on the public allowlist skip authentication
// entirely. For the rest, a missing header, a non-Bearer scheme, a token
// that fails verification, or a subject whose account no longer exists all
// degrade to an anonymous request rather than an error response.
func Authenticate(secret string, roles RoleLoader, publicPaths []string) func(http.Handler) http.Handler {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authHeader, bearerPrefix)
			if !found || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !crypto.Verify(token, secret) {
				next.ServeHTTP(w, r)
				return
			}

			username, err := crypto.Subject(token, secret)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			roleNames, err := roles.RolesByUsername(r.Context(), username)
			if err != nil {
				// The user may have been deleted after the token was issued.
				slog.Debug("role lookup failed, proceeding anonymously",
					"username", username, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), Principal{
				Username: username,
				Roles:    roleNames,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
