package stt

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const defaultUploadName = "recording.m4a"

// OpenAIProvider implements STT using the OpenAI transcription endpoint
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider from an existing client
func NewOpenAIProvider(client *openai.Client, model string) *OpenAIProvider {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIProvider{client: client, model: model}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Transcribe enforces the size ceiling, uploads the audio and enforces the
// transcript ceiling. Nothing is sent when the audio is too large.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audio *Audio) (*Result, error) {
	if audio == nil || (audio.Path == "" && audio.Reader == nil) {
		return nil, errors.New("no audio to transcribe")
	}
	if audio.Size >= 0 && audio.Size > MaxAudioBytes {
		log.Warn().Int64("size", audio.Size).Msg("audio_too_large")
		return nil, ErrAudioTooLarge
	}

	req := openai.AudioRequest{Model: p.model, FilePath: audio.Path}
	if audio.Reader != nil {
		name := audio.Name
		if name == "" {
			name = defaultUploadName
		}
		req.FilePath = name
		req.Reader = audio.Reader
	}

	start := time.Now()
	resp, err := p.client.CreateTranscription(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("transcription_failed")
		return nil, toAPIError(err)
	}

	chars := utf8.RuneCountInString(resp.Text)
	log.Info().Int("chars", chars).Dur("elapsed", elapsed).Msg("transcription_done")
	if chars > MaxTranscriptChars {
		return nil, ErrTranscriptTooLong
	}

	return &Result{
		Transcript: resp.Text,
		Provider:   p.Name(),
		Duration:   elapsed,
	}, nil
}

// toAPIError maps HTTP failures onto *APIError and wraps everything else.
func toAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{StatusCode: reqErr.HTTPStatusCode}
	}
	return fmt.Errorf("transcription request: %w", err)
}
