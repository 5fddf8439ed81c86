package config

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/ai"
)

const (
	ProviderOllama     = "Ollama"
	ProviderOpenRouter = "OpenRouter"
	ProviderOpenAI     = "OpenAI"
	ProviderAnthropic  = "Anthropic"
)

// NewRegistry registers every provider the configuration enables. Ollama is
// always present; the hosted providers need their API key.
func NewRegistry(cfg Config, catalog Catalog, logger *zap.Logger) *ai.Registry {
	reg := ai.NewRegistry()

	reg.RegisterProvider(ai.ProviderSpec{
		Name:         ProviderOllama,
		StaticModels: catalog.Models(ProviderOllama),
		Factory: func(ctx context.Context, model string) (ai.Provider, error) {
			_ = ctx
			m := strings.TrimSpace(model)
			if m == "" {
				m = cfg.OllamaModel
			}
			return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
		},
		ListModels: ai.NewOllamaProvider(cfg.OllamaBaseURL, "").ListModels,
	})

	if cfg.OpenRouterAPIKey != "" {
		newOpenRouter := func(model string) *ai.OpenRouterProvider {
			return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, model, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName)
		}
		reg.RegisterProvider(ai.ProviderSpec{
			Name:         ProviderOpenRouter,
			StaticModels: catalog.Models(ProviderOpenRouter),
			Factory: func(ctx context.Context, model string) (ai.Provider, error) {
				m := strings.TrimSpace(model)
				if m == "" {
					m = cfg.OpenRouterModel
				}
				return newOpenRouter(m), nil
			},
			ListModels: newOpenRouter("").ListModels,
		})
	}

	if cfg.OpenAIAPIKey != "" {
		reg.RegisterProvider(ai.ProviderSpec{
			Name:         ProviderOpenAI,
			StaticModels: catalog.Models(ProviderOpenAI),
			Factory: func(ctx context.Context, model string) (ai.Provider, error) {
				return ai.NewOpenAIProvider(cfg.OpenAIAPIKey, model, cfg.OpenAIBaseURL)
			},
		})
	}

	if cfg.AnthropicAPIKey != "" {
		reg.RegisterProvider(ai.ProviderSpec{
			Name:         ProviderAnthropic,
			StaticModels: catalog.Models(ProviderAnthropic),
			Factory: func(ctx context.Context, model string) (ai.Provider, error) {
				return ai.NewAnthropicProvider(cfg.AnthropicAPIKey, model)
			},
		})
	}

	if err := reg.SetDefault(cfg.AIProvider); err != nil {
		logger.Warn("default provider not available",
			zap.String("provider", cfg.AIProvider), zap.String("using", reg.Default()))
	}
	return reg
}
