// Package auth implements the shared-secret gate that unlocks a chat.
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"ledgerbot/internal/config"
	"ledgerbot/internal/domain"
)

// Gate checks a typed password against the configured secret.
type Gate struct {
	plain []byte
	hash  []byte
}

// NewGate builds a Gate. A bcrypt hash takes precedence over a plain password.
func NewGate(cfg config.AuthConfig) (*Gate, error) {
	if cfg.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("%w: auth.password_hash is not a bcrypt hash: %v", domain.ErrConfiguration, err)
		}
		return &Gate{hash: []byte(cfg.PasswordHash)}, nil
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("%w: auth.password or auth.password_hash is required", domain.ErrConfiguration)
	}
	return &Gate{plain: []byte(cfg.Password)}, nil
}

// Check reports whether text is the secret. Surrounding whitespace is ignored.
func (g *Gate) Check(text string) bool {
	candidate := []byte(strings.TrimSpace(text))
	if len(candidate) == 0 {
		return false
	}
	if g.hash != nil {
		return bcrypt.CompareHashAndPassword(g.hash, candidate) == nil
	}
	return subtle.ConstantTimeCompare(g.plain, candidate) == 1
}

// HashPassword returns a bcrypt hash suitable for auth.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
