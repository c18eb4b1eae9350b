package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"medscribe/internal/model"
)

// PostgresSchema creates the tables when auto-migration is enabled.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	medical_notes TEXT NOT NULL,
	audio_hash TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS transcriptions_user_created ON transcriptions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS topics (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	topic TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS topics_user_created ON topics (user_id, created_at DESC);
`

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// Migrate applies PostgresSchema
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// InsertNote creates a new transcription row
func (r *postgresRepository) InsertNote(ctx context.Context, note *model.NoteRecord) error {
	query := `
		INSERT INTO transcriptions (
			id, user_id, title, content, medical_notes, audio_hash, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.MedicalNotes,
		nullString(note.AudioHash),
		note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transcription: %w", err)
	}
	return checkInserted(res)
}

// ListNotes retrieves transcriptions for a user
func (r *postgresRepository) ListNotes(ctx context.Context, userID uuid.UUID) ([]model.NoteRecord, error) {
	query := `
		SELECT id, user_id, title, content, medical_notes, audio_hash, created_at
		FROM transcriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcriptions: %w", err)
	}
	defer rows.Close()

	notes := []model.NoteRecord{}
	for rows.Next() {
		var n model.NoteRecord
		var hash sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.MedicalNotes, &hash, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcription: %w", err)
		}
		n.AudioHash = hash.String
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return notes, nil
}

// ListTopics retrieves topics for a user
func (r *postgresRepository) ListTopics(ctx context.Context, userID uuid.UUID) ([]model.TopicRecord, error) {
	query := `
		SELECT id, user_id, topic, created_at
		FROM topics
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	topics := []model.TopicRecord{}
	for rows.Next() {
		var t model.TopicRecord
		if err := rows.Scan(&t.ID, &t.UserID, &t.Topic, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return topics, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// checkInserted turns an insert skipped on an existing id into ErrDuplicate.
func checkInserted(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}
