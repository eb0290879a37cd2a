package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordEmpty = errors.New("password is empty")

// HashPassword hashes a plaintext password using bcrypt with the default
// cost. The salt is embedded in the returned hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordEmpty
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a stored bcrypt hash.
// Comparison is constant time.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
