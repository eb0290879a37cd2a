package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kingtan/api-users/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// UserRepository handles user persistence, including the user_roles link
// table. Role relations are resolved with explicit queries, never lazily.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, enabled, created_at, updated_at`

// Create inserts a new user plus its role links in one transaction and sets
// the generated ID on the user struct. The unique indexes on username and
// email are the final guard against concurrent registration races.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, enabled) VALUES (?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.Enabled,
	)
	if err != nil {
		return mapDuplicateErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	for _, role := range user.Roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`,
			id, role.ID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByUsername retrieves a user and their roles by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetByEmail retrieves a user and their roles by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetByID retrieves a user and their roles by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Enabled, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	roles, err := r.rolesByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

// List retrieves all users with their roles.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.Enabled, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		roles, err := r.rolesByUserID(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Roles = roles
	}
	return users, nil
}

// Update persists username and email changes and, when replaceRoles is set,
// replaces the user's role links with user.Roles in the same transaction.
func (r *UserRepository) Update(ctx context.Context, user *model.User, replaceRoles bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ? WHERE id = ?`,
		user.Username, user.Email, user.ID,
	)
	if err != nil {
		return mapDuplicateErr(err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// Zero can also mean no column changed; confirm the row exists.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, user.ID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
	}

	if replaceRoles {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, user.ID); err != nil {
			return err
		}
		for _, role := range user.Roles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`,
				user.ID, role.ID,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Delete removes a user by ID. Role links and reset tokens go with the row
// via ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ExistsByUsername reports whether a user with the given username exists.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
}

// ExistsByEmail reports whether a user with the given email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// RolesByUsername returns the role names assigned to the named user. It is
// used by the security filter after token verification; ErrUserNotFound is
// returned when the user no longer exists.
func (r *UserRepository) RolesByUsername(ctx context.Context, username string) ([]string, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, username).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	roles, err := r.rolesByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names, nil
}

func (r *UserRepository) rolesByUserID(ctx context.Context, userID int64) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading roles: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// mapDuplicateErr converts MySQL duplicate key violations on the users table
// into the matching sentinel error.
func mapDuplicateErr(err error) error {
	switch {
	case isDuplicateEntryError(err, "username"):
		return ErrDuplicateUsername
	case isDuplicateEntryError(err, "email"):
		return ErrDuplicateEmail
	default:
		return err
	}
}
