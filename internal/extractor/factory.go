package extractor

import (
	"fmt"

	"go.uber.org/zap"

	"ledgerbot/internal/config"
	"ledgerbot/internal/port"
)

// ProviderFactory builds a Completer from a provider config.
type ProviderFactory func(cfg *config.AIProviderConfig) (port.Completer, error)

// providers is filled by RegisterProvider from the binary's wiring code.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a completion provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewCompleter creates a Completer for one provider config using the registered factory.
func NewCompleter(cfg *config.AIProviderConfig) (port.Completer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewCompleterChain builds the configured providers in priority order. A single
// provider is returned as is; more than one is wrapped in a FallbackCompleter.
func NewCompleterChain(cfg *config.AIConfig, log *zap.Logger) (port.Completer, error) {
	candidates := []*config.AIProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()}

	var completers []port.Completer
	var names []string
	for _, pc := range candidates {
		if pc == nil || pc.Provider == "" {
			continue
		}
		c, err := NewCompleter(pc)
		if err != nil {
			return nil, err
		}
		completers = append(completers, c)
		names = append(names, pc.Provider)
	}

	switch len(completers) {
	case 0:
		return nil, fmt.Errorf("no completion provider configured")
	case 1:
		return completers[0], nil
	default:
		return NewFallbackCompleter(completers, names, log), nil
	}
}
