package model

import (
	"time"

	"github.com/google/uuid"
)

// TopicRecord is a saved topic belonging to a user
type TopicRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}
