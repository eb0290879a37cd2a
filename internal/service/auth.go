package service

import (
	"context"
	"errors"
	"time"

	"github.com/kingtan/api-users/internal/crypto"
	"github.com/kingtan/api-users/internal/repository"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCredentials = errors.New("bad credentials")
)

// Identity is an authenticated principal: the username plus its resolved
// role names.
type Identity struct {
	Username string
	Roles    []string
}

// AuthService validates username/password pairs and issues bearer tokens.
type AuthService struct {
	users     UserStore
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Authenticate checks the password against the stored hash and returns the
// authenticated identity. Disabled accounts fail the same way as a wrong
// password.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, err
	}

	if !user.Enabled {
		return Identity{}, ErrBadCredentials
	}
	if !crypto.VerifyPassword(password, user.PasswordHash) {
		return Identity{}, ErrBadCredentials
	}

	return Identity{Username: user.Username, Roles: user.RoleNames()}, nil
}

// Login authenticates the pair and returns a signed bearer token whose
// subject is the username.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return crypto.GenerateToken(identity.Username, s.jwtSecret, s.jwtExpiry)
}
