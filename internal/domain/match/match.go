package match

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("match not found")

type Match struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	Opponent  string    `json:"opponent"`
	Location  string    `json:"location,omitempty"`
	KickoffAt time.Time `json:"kickoffAt"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateMatchRequest struct {
	Opponent  string    `json:"opponent" binding:"required,min=1,max=120"`
	Location  string    `json:"location" binding:"omitempty,max=200"`
	KickoffAt time.Time `json:"kickoffAt" binding:"required"`
	Notes     string    `json:"notes" binding:"omitempty,max=2000"`
}

type UpdateMatchRequest struct {
	Opponent  string    `json:"opponent" binding:"required,min=1,max=120"`
	Location  string    `json:"location" binding:"omitempty,max=200"`
	KickoffAt time.Time `json:"kickoffAt" binding:"required"`
	Notes     string    `json:"notes" binding:"omitempty,max=2000"`
}
