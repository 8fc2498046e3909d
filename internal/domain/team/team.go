package team

import (
	"errors"
	"time"
)

// Team-scoped roles. These are independent from a user's global role: a
// globally plain "player" can be the admin of a team they created.
const (
	RolePlayer = "player"
	RoleCoach  = "coach"
	RoleAdmin  = "admin"
)

var (
	ErrNotFound           = errors.New("team not found")
	ErrMembershipNotFound = errors.New("team membership not found")
	ErrAlreadyMember      = errors.New("user is already a member of this team")
	ErrJoinCodeTaken      = errors.New("join code already in use")
)

type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedByID string    `json:"createdById"`
	JoinCode    string    `json:"joinCode,omitempty"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Membership is the authoritative join between users and teams.
// Exactly one row per (team_id, user_id).
type Membership struct {
	TeamID    string    `json:"teamId"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidRole(role string) bool {
	switch role {
	case RolePlayer, RoleCoach, RoleAdmin:
		return true
	}
	return false
}

// PublicInfo is what an unauthenticated join-code lookup is allowed to see.
type PublicInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
}

func (t Team) Public() PublicInfo {
	return PublicInfo{ID: t.ID, Name: t.Name, LogoURL: t.LogoURL}
}
