// Package providers registers every built-in upstream client with the
// inference factory.
package providers

import (
	"xperto/internal/domain"
	"xperto/internal/inference"
	"xperto/internal/inference/gemini"
	"xperto/internal/inference/openai"
	"xperto/internal/inference/webhook"
)

// RegisterAll registers the webhook, gemini and openai factories.
func RegisterAll() {
	inference.RegisterProvider(domain.UpstreamWebhook, webhook.Factory)
	inference.RegisterProvider(domain.UpstreamGemini, gemini.Factory)
	inference.RegisterProvider(domain.UpstreamOpenAI, openai.Factory)
}
