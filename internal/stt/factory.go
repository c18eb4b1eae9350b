package stt

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"medscribe/internal/config"
)

// NewOpenAIClient builds the go-openai client shared by transcription and
// notes generation.
func NewOpenAIClient(cfg *config.Config) *openai.Client {
	oc := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}
	return openai.NewClientWithConfig(oc)
}

// CreateProvider creates an STT provider based on configuration
func CreateProvider(cfg *config.Config, client *openai.Client) (Provider, error) {
	name := strings.ToLower(cfg.STTProvider)
	if name == "" {
		name = "openai"
		log.Info().Msg("stt_provider not set, defaulting to openai")
	}

	switch name {
	case "openai":
		if client == nil {
			client = NewOpenAIClient(cfg)
		}
		log.Info().Str("model", cfg.TranscriptionModel).Msg("creating openai stt provider")
		return NewOpenAIProvider(client, cfg.TranscriptionModel), nil
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: openai", name)
	}
}
