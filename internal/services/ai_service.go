package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/vladimiradmaev/fluid-helper/internal/config"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
	"github.com/vladimiradmaev/fluid-helper/internal/metrics"
	"google.golang.org/api/option"
)

// ErrEmptyCompletion is returned when a provider answers with no text
var ErrEmptyCompletion = errors.New("completion returned no content")

// GeminiCompleter sends instructions and a message to Gemini
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (c *GeminiCompleter) Name() string { return "gemini" }

func (c *GeminiCompleter) Complete(ctx context.Context, instructions, message string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx,
		genai.Text(instructions),
		genai.Text("Caregiver message:\n"+message),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

// Close releases the underlying client
func (c *GeminiCompleter) Close() error {
	return c.client.Close()
}

// OpenAICompleter sends instructions and a message to an OpenAI chat model
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, model string) *OpenAICompleter {
	return &OpenAICompleter{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAICompleter) Name() string { return "openai" }

func (c *OpenAICompleter) Complete(ctx context.Context, instructions, message string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// FallbackCompleter tries each provider in order until one answers.
// Context cancellation stops the chain immediately.
type FallbackCompleter struct {
	providers []domain.Completer
}

func NewFallbackCompleter(providers ...domain.Completer) *FallbackCompleter {
	return &FallbackCompleter{providers: providers}
}

func (c *FallbackCompleter) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

func (c *FallbackCompleter) Complete(ctx context.Context, instructions, message string) (string, error) {
	if len(c.providers) == 0 {
		return "", errors.New("no completion provider configured")
	}

	log := logger.Component("completion")
	var errs []error
	for _, p := range c.providers {
		start := time.Now()
		text, err := p.Complete(ctx, instructions, message)
		metrics.CompletionDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
		log.WarnContext(ctx, "Completion provider failed, trying next", "provider", p.Name(), "error", err)
	}
	return "", errors.Join(errs...)
}

// NewCompleterFromConfig builds the provider chain: Gemini first, OpenAI as
// fallback, skipping providers without an API key.
func NewCompleterFromConfig(ctx context.Context, cfg config.AIConfig) (*FallbackCompleter, func(), error) {
	var providers []domain.Completer
	cleanup := func() {}

	if cfg.GeminiAPIKey != "" {
		gemini, err := NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, gemini)
		cleanup = func() { gemini.Close() }
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}
	if len(providers) == 0 {
		return nil, nil, errors.New("no completion provider configured")
	}
	return NewFallbackCompleter(providers...), cleanup, nil
}

// extractJSON attempts to extract a JSON object from the given string.
// It handles cases where the JSON is wrapped in code blocks (```json ... ```) or other text.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
