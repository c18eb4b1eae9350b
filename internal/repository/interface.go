package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"medscribe/internal/model"
)

// ErrDuplicate is returned by InsertNote when a note with the same ID exists.
var ErrDuplicate = errors.New("note already saved")

// Repository defines data access for notes and topics
type Repository interface {
	// InsertNote persists a new note row
	InsertNote(ctx context.Context, note *model.NoteRecord) error

	// ListNotes returns the user's notes, newest first
	ListNotes(ctx context.Context, userID uuid.UUID) ([]model.NoteRecord, error)

	// ListTopics returns the user's topics, newest first
	ListTopics(ctx context.Context, userID uuid.UUID) ([]model.TopicRecord, error)
}
