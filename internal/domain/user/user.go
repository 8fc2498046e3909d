package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// Global roles. A user's global role governs cross-team capabilities only
// (superuser panel access); authorization inside a team always goes through
// the team membership role.
const (
	RolePlayer    = "player"
	RoleCoach     = "coach"
	RoleAdmin     = "admin"
	RoleSuperuser = "superuser"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	Email        string    `json:"email,omitempty"`
	FullName     string    `json:"fullName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ValidGlobalRole(role string) bool {
	switch role {
	case RolePlayer, RoleCoach, RoleAdmin, RoleSuperuser:
		return true
	}
	return false
}
