// Package llm wraps an OpenAI-compatible chat model as an optional second
// opinion for the rule classifier.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Completer returns the raw text of a single model completion.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

type Prompt struct {
	System     string
	User       string
	SchemaName string
	Schema     any // nil = free-form text response
	MaxTokens  int
}

type Config struct {
	APIKey           string
	BaseURL          string
	Model            string
	StructuredOutput bool
}

type OpenAICompleter struct {
	client     openai.Client
	model      string
	structured bool
}

func NewOpenAI(cfg Config) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAICompleter{
		client:     openai.NewClient(opts...),
		model:      model,
		structured: cfg.StructuredOutput,
	}, nil
}

func (c *OpenAICompleter) Model() string { return c.model }

func (c *OpenAICompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	maxTokens := p.MaxTokens
	if maxTokens == 0 {
		maxTokens = 800
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(0),
	}
	if c.structured && p.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        p.SchemaName,
					Description: openai.String("Posting classification verdict"),
					Schema:      p.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	slog.DebugContext(ctx, "llm chat completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateSchema reflects T into an inline JSON schema suitable for strict
// structured output.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
