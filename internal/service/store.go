package service

import (
	"context"

	"github.com/kingtan/api-users/internal/model"
)

// UserStore is the persistence contract the services need for user records.
// Implementations return repository sentinel errors (ErrUserNotFound,
// ErrDuplicateUsername, ErrDuplicateEmail).
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User, replaceRoles bool) error
	Delete(ctx context.Context, id int64) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RoleStore resolves role names to seeded role records.
type RoleStore interface {
	GetByName(ctx context.Context, name string) (*model.Role, error)
}

// ResetTokenStore persists password reset tokens. Consume must apply the
// password change and delete the token atomically.
type ResetTokenStore interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	Consume(ctx context.Context, tokenID, userID int64, passwordHash string) error
}
