package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medscribe/internal/model"
)

// SQLiteSchema is applied when the SQLite repository is created.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	medical_notes TEXT NOT NULL,
	audio_hash TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS transcriptions_user_created ON transcriptions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS topics (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	topic TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS topics_user_created ON topics (user_id, created_at DESC);
`

// sqliteRepository stores created_at as unix nanoseconds.
type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates the schema if needed and returns the repository
func NewSQLiteRepository(ctx context.Context, db *sql.DB) (Repository, error) {
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) InsertNote(ctx context.Context, note *model.NoteRecord) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transcriptions (id, user_id, title, content, medical_notes, audio_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		note.ID.String(),
		note.UserID.String(),
		note.Title,
		note.Content,
		note.MedicalNotes,
		nullString(note.AudioHash),
		note.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transcription: %w", err)
	}
	return checkInserted(res)
}

func (r *sqliteRepository) ListNotes(ctx context.Context, userID uuid.UUID) ([]model.NoteRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, content, medical_notes, audio_hash, created_at
		FROM transcriptions
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query transcriptions: %w", err)
	}
	defer rows.Close()

	notes := []model.NoteRecord{}
	for rows.Next() {
		var n model.NoteRecord
		var hash sql.NullString
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.MedicalNotes, &hash, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcription: %w", err)
		}
		n.AudioHash = hash.String
		n.CreatedAt = timeFromUnixNano(createdAt)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return notes, nil
}

func (r *sqliteRepository) ListTopics(ctx context.Context, userID uuid.UUID) ([]model.TopicRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, topic, created_at
		FROM topics
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	topics := []model.TopicRecord{}
	for rows.Next() {
		var t model.TopicRecord
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.UserID, &t.Topic, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		t.CreatedAt = timeFromUnixNano(createdAt)
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return topics, nil
}

func timeFromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
