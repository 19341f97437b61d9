// Package openai calls an OpenAI-compatible chat completions endpoint with a
// JSON-schema response format.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"xperto/internal/config"
	"xperto/internal/domain"
	"xperto/internal/inference"
	"xperto/internal/port"
	"xperto/internal/prompt"
	"xperto/internal/upload"
)

const defaultModel = "gpt-4o"

// Client implements port.InferenceClient using go-openai.
type Client struct {
	apiKey      string
	model       string
	temperature float32
	prompt      *prompt.Prompt
	format      *openai.ChatCompletionResponseFormat
	client      *openai.Client
	logger      *zap.Logger
}

// NewClient creates an OpenAI client. The API key is required.
func NewClient(cfg *config.UpstreamConfig, p *prompt.Prompt, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: openai api_key", domain.ErrMissingCredential)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	schema, err := p.Schema.JSONSchema()
	if err != nil {
		return nil, fmt.Errorf("encoding response schema: %w", err)
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout()}

	return &Client{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		prompt:      p,
		format: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   p.SchemaName,
				Schema: schema,
			},
		},
		client: openai.NewClientWithConfig(oc),
		logger: logger,
	}, nil
}

// Factory adapts NewClient to inference.ProviderFactory.
func Factory(cfg *config.UpstreamConfig, deps inference.Deps) (port.InferenceClient, error) {
	return NewClient(cfg, deps.Prompt, deps.Logger)
}

// Ask sends the system instruction and a user message with the question and
// any images as data URLs, and returns the first choice's content.
func (c *Client) Ask(ctx context.Context, req port.InferenceRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: openai api_key", domain.ErrMissingCredential)
	}
	parts, err := c.buildParts(req)
	if err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          c.model,
		Temperature:    c.temperature,
		ResponseFormat: c.format,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.prompt.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling openai API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai API: no choices")
	}

	text := resp.Choices[0].Message.Content
	c.logger.Debug("openai reply received",
		zap.String("model", c.model),
		zap.Int("attachments", len(req.Attachments)),
		zap.Int("chars", len(text)))
	return text, nil
}

func (c *Client) buildParts(req port.InferenceRequest) ([]openai.ChatMessagePart, error) {
	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: c.prompt.UserText(req.Question),
	}}
	for _, att := range req.Attachments {
		if !strings.HasPrefix(att.MediaType, "image/") {
			return nil, fmt.Errorf("%w: %s is %s, only images are accepted by this upstream",
				domain.ErrUnsupportedFileType, att.DisplayName, att.MediaType)
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    upload.DataURL(att),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return parts, nil
}
