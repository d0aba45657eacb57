// Package auth issues and checks the JWTs that guard the admin routes.
// There is a single admin account configured through ADMIN_USER and
// ADMIN_USER_PASSWORD; tokens are HS256-signed with JWT_SECRET.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
)

// RoleAdmin is the only role tokens are issued for.
const RoleAdmin = "admin"

// MinPasswordLength is enforced on the configured admin password.
const MinPasswordLength = 12

// ErrInvalidCredentials is returned for any username or password mismatch.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is a login attempt.
type Credentials struct {
	Username string
	Password string
}

// Provider checks credentials against the configured admin account.
type Provider struct {
	user     string
	password string
}

// NewProvider validates the configured account.
func NewProvider(user, password string) (*Provider, error) {
	if user == "" || password == "" {
		return nil, fmt.Errorf("ADMIN_USER and ADMIN_USER_PASSWORD are required")
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("ADMIN_USER_PASSWORD must be at least %d characters", MinPasswordLength)
	}
	return &Provider{user: user, password: password}, nil
}

// ValidateCredentials compares in constant time and returns the user's role.
func (p *Provider) ValidateCredentials(_ context.Context, c Credentials) (string, error) {
	if c.Username == "" || c.Password == "" {
		return "", ErrInvalidCredentials
	}
	userMatch := subtle.ConstantTimeCompare([]byte(c.Username), []byte(p.user)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(c.Password), []byte(p.password)) == 1
	if !userMatch || !passMatch {
		return "", ErrInvalidCredentials
	}
	return RoleAdmin, nil
}
