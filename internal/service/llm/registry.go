package llm

import (
	"fmt"
	"log/slog"
	"sync"

	"qwksearch/internal/capabilities"
	"qwksearch/internal/config"
	"qwksearch/internal/domain"
	"qwksearch/internal/domain/services"
	"qwksearch/internal/service/llm/providers/anthropic"
	"qwksearch/internal/service/llm/providers/lorem"
	"qwksearch/internal/service/llm/providers/openai"
)

// ModelProvider creates chat models for one provider id.
type ModelProvider interface {
	Name() string
	Model(id string, maxTokens int) services.ChatModel
}

// ProviderInfo is a catalog entry with its runtime availability.
type ProviderInfo struct {
	capabilities.ProviderCapabilities
	Available bool `json:"available"`
}

// Registry resolves (provider, model) pairs against the embedded catalog and
// the providers configured at startup. It implements services.ModelLoader.
type Registry struct {
	catalog   *capabilities.Registry
	providers map[string]ModelProvider
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry over the catalog.
func NewRegistry(catalog *capabilities.Registry) *Registry {
	return &Registry{
		catalog:   catalog,
		providers: make(map[string]ModelProvider),
	}
}

var _ services.ModelLoader = (*Registry)(nil)

// Register makes a provider available under its Name().
func (r *Registry) Register(p ModelProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// LoadChatModel returns a model for a catalog entry whose provider is
// configured. Anything else wraps domain.ErrUnknownModel.
func (r *Registry) LoadChatModel(providerID, key string) (services.ChatModel, error) {
	caps, err := r.catalog.GetModelCapabilities(providerID, key)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	p, ok := r.providers[providerID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %q not configured: %w", providerID, domain.ErrUnknownModel)
	}

	return p.Model(key, caps.MaxOutput), nil
}

// Providers lists every catalog provider in order with its availability.
func (r *Registry) Providers() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var infos []ProviderInfo
	for _, id := range r.catalog.GetAllProviders() {
		caps, err := r.catalog.GetProvider(id)
		if err != nil {
			continue
		}
		_, ok := r.providers[id]
		infos = append(infos, ProviderInfo{ProviderCapabilities: *caps, Available: ok})
	}
	return infos
}

// SetupProviders registers every provider whose credentials are configured.
// The offline lorem provider is always registered.
func SetupProviders(cfg *config.Config, catalog *capabilities.Registry, logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry(catalog)

	if cfg.OpenAIAPIKey != "" {
		p, err := openai.NewProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		registry.Register(p)
		logger.Info("provider available", "name", "openai", "base_url", cfg.OpenAIBaseURL)
	} else {
		logger.Warn("OPENAI_API_KEY not set - OpenAI provider not available")
	}

	if cfg.AnthropicAPIKey != "" {
		p, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, err
		}
		registry.Register(p)
		logger.Info("provider available", "name", "anthropic")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set - Anthropic provider not available")
	}

	registry.Register(lorem.NewProvider())
	logger.Info("provider available", "name", "lorem")

	return registry, nil
}
