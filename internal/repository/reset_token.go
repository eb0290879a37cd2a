package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kingtan/api-users/internal/model"
)

var ErrResetTokenNotFound = errors.New("password reset token not found")

// ResetTokenRepository handles password reset token persistence.
type ResetTokenRepository struct {
	db *sql.DB
}

// NewResetTokenRepository creates a new ResetTokenRepository.
func NewResetTokenRepository(db *sql.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Create inserts a reset token row and sets the generated ID. Prior tokens
// for the same user are left in place; only the token string is unique.
func (r *ResetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (token, user_id, expiry_date) VALUES (?, ?, ?)`,
		token.Token, token.UserID, token.ExpiryDate,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	token.ID = id
	return nil
}

// GetByToken retrieves a reset token by its token string.
func (r *ResetTokenRepository) GetByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	row := &model.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, token, user_id, expiry_date FROM password_reset_tokens WHERE token = ?`,
		token,
	).Scan(&row.ID, &row.Token, &row.UserID, &row.ExpiryDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return row, nil
}

// Consume applies the new password hash to the owning user and deletes the
// token row in a single transaction. The delete must remove exactly one row;
// a concurrent confirm that already consumed the token rolls the whole
// transaction back, so a token can never be used twice.
func (r *ResetTokenRepository) Consume(ctx context.Context, tokenID, userID int64, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, userID,
	); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE id = ?`, tokenID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrResetTokenNotFound
	}

	return tx.Commit()
}
