// Package webhook talks to a workflow webhook that accepts a question and a
// thread id and answers with a JSON envelope around free text.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xperto/internal/config"
	"xperto/internal/domain"
	"xperto/internal/inference"
	"xperto/internal/port"
	"xperto/internal/prompt"
)

const (
	providerName   = "webhook"
	threadIDPrefix = "web_client_"
	maxReplyBytes  = 8 << 20
)

type requestBody struct {
	Question string `json:"question"`
	ThreadID string `json:"threadId"`
}

// Client implements port.InferenceClient against a webhook URL.
type Client struct {
	url    string
	prompt *prompt.Prompt
	client *http.Client
	logger *zap.Logger
	newID  func() string
}

// NewClient creates a webhook client.
func NewClient(cfg *config.UpstreamConfig, p *prompt.Prompt, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return nil, fmt.Errorf("%w: webhook_url", domain.ErrMissingCredential)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:    cfg.WebhookURL,
		prompt: p,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
		newID:  NewThreadID,
	}, nil
}

// Factory adapts NewClient to inference.ProviderFactory.
func Factory(cfg *config.UpstreamConfig, deps inference.Deps) (port.InferenceClient, error) {
	return NewClient(cfg, deps.Prompt, deps.Logger)
}

// NewThreadID returns a fresh opaque session token.
func NewThreadID() string {
	return threadIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Ask posts the question and returns the reply text from the envelope. The
// webhook contract carries no file data, so attachments are not sent.
func (c *Client) Ask(ctx context.Context, req port.InferenceRequest) (string, error) {
	if len(req.Attachments) > 0 {
		c.logger.Warn("webhook upstream does not accept attachments, sending question only",
			zap.Int("attachments", len(req.Attachments)))
	}

	payload := requestBody{
		Question: c.prompt.WebhookQuestion(req.Question),
		ThreadID: c.newID(),
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", inference.NewStatusError(providerName, resp.StatusCode, respBody)
	}

	c.logger.Debug("webhook reply received",
		zap.String("thread_id", payload.ThreadID),
		zap.Int("bytes", len(respBody)))
	return inference.ExtractReplyText(respBody), nil
}
