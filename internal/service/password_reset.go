package service

import (
	"context"
	"errors"
	"time"

	"github.com/kingtan/api-users/internal/crypto"
	"github.com/kingtan/api-users/internal/mailer"
	"github.com/kingtan/api-users/internal/model"
	"github.com/kingtan/api-users/internal/repository"
)

var (
	ErrInvalidResetToken = errors.New("invalid reset token")
	ErrExpiredResetToken = errors.New("reset token expired")
)

const resetMailSubject = "Password Reset Request"

// PasswordResetService issues one-time reset tokens and consumes them
// exactly once.
type PasswordResetService struct {
	users  UserStore
	tokens ResetTokenStore
	mail   mailer.Mailer
	ttl    time.Duration
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(users UserStore, tokens ResetTokenStore, mail mailer.Mailer, ttl time.Duration) *PasswordResetService {
	return &PasswordResetService{
		users:  users,
		tokens: tokens,
		mail:   mail,
		ttl:    ttl,
	}
}

// RequestReset generates a reset token for the account behind email,
// persists it with an expiry and mails the raw token to the user. Prior
// outstanding tokens stay valid until they expire or the user is reset.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := crypto.NewResetToken()
	if err != nil {
		return err
	}

	resetToken := &model.PasswordResetToken{
		Token:      token,
		UserID:     user.ID,
		ExpiryDate: time.Now().Add(s.ttl),
	}
	if err := s.tokens.Create(ctx, resetToken); err != nil {
		return err
	}

	return s.mail.Send(user.Email, resetMailSubject,
		"Use this token to reset your password: "+token)
}

// ConfirmReset validates the token, re-hashes the new password and applies
// it while deleting the token in one transaction. A consumed or unknown
// token fails with ErrInvalidResetToken.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}

	resetToken, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if !time.Now().Before(resetToken.ExpiryDate) {
		return ErrExpiredResetToken
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.tokens.Consume(ctx, resetToken.ID, resetToken.UserID, hash); err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return nil
}
