package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrNoAdminToken = errors.New("admin token not configured")

// HashToken returns the bcrypt hash to put in ADMIN_TOKEN_HASH.
func HashToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckToken compares a presented token with the configured hash.
func CheckToken(hash, token string) error {
	if hash == "" {
		return ErrNoAdminToken
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
}
