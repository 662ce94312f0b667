package core

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/provisioning/internal/model"
)

// AuthService checks gateway users against the static credential table.
type AuthService struct {
	users map[string]model.User
	// dummyHash is compared against for unknown users so the response time
	// does not reveal whether a username exists.
	dummyHash []byte
}

// NewAuthService builds the credential table. Duplicate usernames are a
// configuration error.
func NewAuthService(users []model.User) (*AuthService, error) {
	byName := make(map[string]model.User, len(users))
	for _, u := range users {
		if _, dup := byName[u.Username]; dup {
			return nil, fmt.Errorf("duplicate username %q", u.Username)
		}
		byName[u.Username] = u
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("provisioning-gateway"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &AuthService{users: byName, dummyHash: dummy}, nil
}

// Authenticate verifies a username and password.
func (s *AuthService) Authenticate(username, password string) error {
	if username == "" {
		return ErrNoUsername
	}
	if password == "" {
		return ErrNoPassword
	}

	user, ok := s.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Authorize decides whether username may call method on path, where path is
// "objectType" or "objectType/objectId".
//
// Permissions are evaluated in declaration order and the FIRST pattern that
// matches path decides. Later entries are not consulted even if they would
// grant the method, so a specific rule placed before a catch-all restricts it.
// Do not change this into "any matching rule grants access".
func (s *AuthService) Authorize(username, method, path string) error {
	user, ok := s.users[username]
	if !ok {
		return ErrForbidden
	}
	for _, p := range user.Permissions {
		if !p.Pattern.MatchString(path) {
			continue
		}
		if p.Allows(method) {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}
