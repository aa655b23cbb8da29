package domain

import (
	"context"
	"time"
)

// Feedback is one piece of user feedback.
type Feedback struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackStore persists user feedback.
type FeedbackStore interface {
	Append(ctx context.Context, userID, body string) error
	ListRecent(ctx context.Context, limit int) ([]Feedback, error)
}
