package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/selftest/internal/llm/prompts"
	"github.com/pavelanni/selftest/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyExplanation is returned when the model replies without text.
var ErrEmptyExplanation = errors.New("LLM returned an empty explanation")

// Draft is the model's reply to an explanation prompt.
type Draft struct {
	Explanation string `json:"explanation"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.PromptVariant
}

// New creates a new LLM client. An empty variant selects the standard prompt.
func New(baseURL, apiKey, modelName string, variant prompts.PromptVariant) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if variant == "" {
		variant = prompts.PromptStandard
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: variant,
	}
}

// DraftExplanation asks the model for an explanation of question q of exam.
// answer describes what the user submitted and may be empty.
func (c *Client) DraftExplanation(ctx context.Context, exam model.Exam, q int, answer string) (string, error) {
	prompt, err := prompts.BuildExplainPrompt(c.variant, exam, q, answer)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "exam", exam.Filename, "question", q, "raw", raw)

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return "", fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	text := strings.TrimSpace(draft.Explanation)
	if text == "" {
		return "", ErrEmptyExplanation
	}
	return text, nil
}
