package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"medscribe/internal/config"
)

const (
	// FallbackTitle replaces the title when generation fails for any reason.
	FallbackTitle = "Untitled Recording"
	// FallbackNotes replaces the notes when generation fails for any reason.
	FallbackNotes = "Error generating notes. Please try again."

	titleMaxTokens = 60
	temperature    = 0.7
)

var errNoChoices = errors.New("OpenAI returned no choices")

// Completer is the subset of the go-openai client used for generation.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator turns a transcript into a title and structured notes.
type Generator struct {
	client  Completer
	model   string
	prompts Prompts
}

func NewGenerator(client Completer, model string, prompts Prompts) *Generator {
	if model == "" {
		model = openai.GPT4o
	}
	if prompts.Title == "" {
		prompts.Title = config.DefaultTitlePrompt
	}
	if prompts.Notes == "" {
		prompts.Notes = config.DefaultNotesPrompt
	}
	return &Generator{client: client, model: model, prompts: prompts}
}

// NewGeneratorFromConfig wires a generator from configuration.
func NewGeneratorFromConfig(cfg *config.Config, client Completer) *Generator {
	return NewGenerator(client, cfg.ChatModel, Prompts{Title: cfg.TitlePrompt, Notes: cfg.NotesPrompt})
}

// GenerateTitle never fails; errors collapse to FallbackTitle.
func (g *Generator) GenerateTitle(ctx context.Context, transcript string) string {
	content, err := g.complete(ctx, "title", openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    buildMessages(g.prompts.Title, transcript),
		MaxTokens:   titleMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		log.Error().Err(err).Msg("error generating title")
		return FallbackTitle
	}
	return content
}

// GenerateNotes never fails; errors collapse to FallbackNotes.
func (g *Generator) GenerateNotes(ctx context.Context, transcript string) string {
	content, err := g.complete(ctx, "notes", openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    buildMessages(g.prompts.Notes, transcript),
		Temperature: temperature,
	})
	if err != nil {
		log.Error().Err(err).Msg("error generating notes")
		return FallbackNotes
	}
	return content
}

func (g *Generator) complete(ctx context.Context, kind string, req openai.ChatCompletionRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("kind", kind).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("chat_completion")

	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
