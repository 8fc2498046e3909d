package announcement

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("announcement not found")

type Announcement struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateAnnouncementRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
	Body  string `json:"body" binding:"required,min=1,max=5000"`
}
