package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Credentials is the single username and password pair allowed to use the API.
// Only a bcrypt hash of the password is kept.
type Credentials struct {
	username     string
	passwordHash []byte
}

// NewCredentials hashes the configured password
func NewCredentials(username, password string) (*Credentials, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &Credentials{username: username, passwordHash: hash}, nil
}

// Authenticate checks a login attempt
func (c *Credentials) Authenticate(username, password string) error {
	// Always run the hash comparison so a wrong username costs the same.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
