package stt

import (
	"errors"
	"fmt"
)

const (
	// MaxAudioBytes is the upload ceiling of the transcription endpoint.
	MaxAudioBytes int64 = 25 * 1024 * 1024
	// MaxTranscriptChars is counted in runes.
	MaxTranscriptChars = 100000
)

var (
	ErrAudioTooLarge     = errors.New("Recording is too large. Maximum size is 25MB.")
	ErrTranscriptTooLong = errors.New("Transcription is too long. Maximum length is 100,000 characters.")
)

// APIError is a non-success response from the transcription endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("API error: %s", msg)
}
