package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// previewLimit is the number of characters shown for a collapsed note.
const previewLimit = 100

// NoteRecord represents a persisted recording: transcript plus generated notes
type NoteRecord struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	MedicalNotes string    `json:"medical_notes"`
	AudioHash    string    `json:"audio_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Preview returns the first line of the notes, truncated for list views
func (n NoteRecord) Preview() string {
	return Preview(n.MedicalNotes)
}

// ClipboardText is what gets copied when a note is long-pressed
func (n NoteRecord) ClipboardText() string {
	return n.Title + "\n\n" + n.MedicalNotes
}

// Preview returns the first line of s; lines over 100 characters are cut
// and suffixed with "...".
func Preview(s string) string {
	first, _, _ := strings.Cut(s, "\n")
	runes := []rune(first)
	if len(runes) > previewLimit {
		return string(runes[:previewLimit]) + "..."
	}
	return first
}
