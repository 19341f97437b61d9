// Package inference builds the outbound request to the upstream endpoint.
// Each upstream contract lives in its own subpackage and registers a factory
// under its mode name.
package inference

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"xperto/internal/config"
	"xperto/internal/domain"
	"xperto/internal/port"
	"xperto/internal/prompt"
)

// Deps are the collaborators shared by every provider.
type Deps struct {
	Prompt *prompt.Prompt
	Logger *zap.Logger
}

// ProviderFactory creates an InferenceClient from the upstream config.
type ProviderFactory func(cfg *config.UpstreamConfig, deps Deps) (port.InferenceClient, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by mode name.
func RegisterProvider(mode domain.UpstreamMode, factory ProviderFactory) {
	providers[string(mode)] = factory
}

// Registered lists the registered mode names in sorted order.
func Registered() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClient creates an InferenceClient for cfg.Mode using the registered factory.
func NewClient(cfg *config.UpstreamConfig, deps Deps) (port.InferenceClient, error) {
	factory, ok := providers[cfg.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownUpstream, cfg.Mode)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Prompt == nil {
		p, err := prompt.Load(cfg.PromptFile)
		if err != nil {
			return nil, err
		}
		deps.Prompt = p
	}
	return factory(cfg, deps)
}
