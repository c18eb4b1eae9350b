package stt

import (
	"io"
	"time"
)

// Audio is a recording to be transcribed. Either Path or Reader is set.
type Audio struct {
	Path   string
	Reader io.Reader // streamed when set; Path is ignored
	Name   string    // upload filename, defaults to recording.m4a
	Size   int64     // bytes, -1 when unknown
}

// Result represents the result of a speech-to-text transcription
type Result struct {
	Transcript string        // The transcribed text
	Provider   string        // The provider used (e.g., "openai")
	Duration   time.Duration // Time spent waiting for the provider
}
