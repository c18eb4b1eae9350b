package stt

import "context"

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe uploads the audio and returns the transcript
	Transcribe(ctx context.Context, audio *Audio) (*Result, error)

	// Name returns the name of the provider (e.g., "openai")
	Name() string
}
