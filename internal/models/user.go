package models

import (
	"strings"
)

// User represents the signed-in identity attached to a session. Identity
// lives entirely in the session store; there is no user table.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

// IsAdminEmail reports whether email belongs to the admin domain.
// This is a coarse, advisory check used to unlock the admin UI; catalog
// mutations are not gated on it.
func IsAdminEmail(email, adminDomain string) bool {
	if email == "" || adminDomain == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), strings.ToLower(adminDomain))
}
