package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidToken     = errors.New("invalid or expired token")
)

// GenerateToken creates a signed JWT asserting the given username as subject.
// Expiry is computed from the configured lifetime added to the current time.
func GenerateToken(username, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Subject parses the token and returns the embedded subject. It returns
// ErrMalformedToken when the token cannot be parsed and ErrInvalidSignature
// when the signature does not match the secret. Expiry is not checked here.
func Subject(tokenString, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(secret),
		jwt.WithoutClaimsValidation())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		default:
			return "", ErrMalformedToken
		}
	}
	return claims.Subject, nil
}

// Verify reports whether the token carries a valid signature and has not
// expired. It is a total function: empty, malformed, tampered and expired
// tokens all yield false, never an error.
func Verify(tokenString, secret string) bool {
	if tokenString == "" {
		return false
	}
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, keyFunc(secret),
		jwt.WithExpirationRequired())
	if err != nil {
		return false
	}
	return token.Valid
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}
}
