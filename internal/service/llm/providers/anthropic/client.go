package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"qwksearch/internal/domain/services"
)

// Provider creates Claude chat models sharing one API client.
type Provider struct {
	client *anthropic.Client
}

// NewProvider creates a new Anthropic provider with the given API key.
func NewProvider(apiKey string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Provider{
		client: &client,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "anthropic"
}

// Model returns a chat model for the given Claude model id.
func (p *Provider) Model(id string, maxTokens int) services.ChatModel {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &chatModel{client: p.client, model: id, maxTokens: int64(maxTokens)}
}

type chatModel struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

func (m *chatModel) Name() string {
	return "anthropic/" + m.model
}
