// Package gemini calls the Gemini API with a declared response schema.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"xperto/internal/config"
	"xperto/internal/domain"
	"xperto/internal/inference"
	"xperto/internal/port"
	"xperto/internal/prompt"
)

const defaultModel = "gemini-2.5-flash"

// Client implements port.InferenceClient using the genai SDK.
type Client struct {
	apiKey string
	model  string
	config *genai.GenerateContentConfig
	client *genai.Client
	prompt *prompt.Prompt
	logger *zap.Logger
}

// NewClient creates a Gemini client. The API key is required.
func NewClient(ctx context.Context, cfg *config.UpstreamConfig, p *prompt.Prompt, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: gemini api_key", domain.ErrMissingCredential)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout()},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{
		apiKey: cfg.APIKey,
		model:  model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(p.SystemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(cfg.Temperature),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    p.Schema.GenAI(),
		},
		client: client,
		logger: logger,
		prompt: p,
	}, nil
}

// Factory adapts NewClient to inference.ProviderFactory.
func Factory(cfg *config.UpstreamConfig, deps inference.Deps) (port.InferenceClient, error) {
	return NewClient(context.Background(), cfg, deps.Prompt, deps.Logger)
}

// Ask sends the instruction part followed by one inline-data part per
// attachment and returns the model's text.
func (c *Client) Ask(ctx context.Context, req port.InferenceRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: gemini api_key", domain.ErrMissingCredential)
	}
	contents, err := c.buildContents(req)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, c.config)
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	text := resp.Text()
	c.logger.Debug("gemini reply received",
		zap.String("model", c.model),
		zap.Int("attachments", len(req.Attachments)),
		zap.Int("chars", len(text)))
	return text, nil
}

func (c *Client) buildContents(req port.InferenceRequest) ([]*genai.Content, error) {
	parts := []*genai.Part{genai.NewPartFromText(c.prompt.UserText(req.Question))}
	for _, att := range req.Attachments {
		data, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAttachment, att.DisplayName)
		}
		parts = append(parts, genai.NewPartFromBytes(data, att.MediaType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}
