package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"memebot/internal/core/domain"

	"github.com/revrost/go-openrouter"
)

const DefaultSystemPrompt = "You are a comedian in a group chat. Answer with exactly one short, " +
	"original joke and nothing else."

type OpenRouterClient interface {
	CreateChatCompletion(ctx context.Context,
		request openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

// OpenRouter writes jokes about a topic with a chat completion model.
type OpenRouter struct {
	client       OpenRouterClient
	model        string
	systemPrompt string
}

func NewOpenRouter(apiKey, model, systemPrompt string) *OpenRouter {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	return &OpenRouter{
		model:        model,
		systemPrompt: systemPrompt,
		client: openrouter.NewClient(
			apiKey,
			openrouter.WithXTitle("memebot"),
		),
	}
}

func (c *OpenRouter) GenerateFromPrompt(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.ErrEmptyPrompt
	}

	ccr := openrouter.ChatCompletionRequest{
		Model: c.model,
		Messages: []openrouter.ChatCompletionMessage{
			{
				Role:    openrouter.ChatMessageRoleSystem,
				Content: openrouter.Content{Text: c.systemPrompt},
			},
			{
				Role:    openrouter.ChatMessageRoleUser,
				Content: openrouter.Content{Text: prompt},
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return "", fmt.Errorf("openrouter API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content.Text), nil
}

// Fetch generates a joke about topic, making it usable as an "ai:<topic>" content source.
func (c *OpenRouter) Fetch(ctx context.Context, topic string) (domain.Item, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "anything"
	}

	text, err := c.GenerateFromPrompt(ctx, "Tell me a joke about "+topic+".")
	if err != nil {
		return domain.Item{}, err
	}

	if text == "" {
		return domain.Item{}, fmt.Errorf("%w: empty completion", domain.ErrNotFound)
	}

	return domain.Item{
		Title:  "🤖 A joke about " + topic,
		Text:   text,
		Source: c.model,
	}, nil
}
