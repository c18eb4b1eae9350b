package ai

import (
	openai "github.com/sashabaranov/go-openai"
)

// Prompts holds the system prompts for the two generation calls.
type Prompts struct {
	Title string
	Notes string
}

// buildMessages pairs a system prompt with the transcript as the user turn
func buildMessages(systemPrompt, transcript string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: transcript,
		},
	}
}
