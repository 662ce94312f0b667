package model

import "regexp"

// Credential is a gateway user. Passwords are stored as bcrypt hashes.
type Credential struct {
	Username     string
	PasswordHash string
}

// Permission grants HTTP methods on endpoints matching Pattern.
type Permission struct {
	Pattern *regexp.Regexp
	Methods map[string]bool
}

// Allows reports whether the method is granted by this permission.
func (p Permission) Allows(method string) bool {
	return p.Methods[method]
}

// User owns one credential and an ordered permission list.
type User struct {
	Credential
	Permissions []Permission
}
