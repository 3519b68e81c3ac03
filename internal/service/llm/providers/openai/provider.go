package openai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"qwksearch/internal/domain/services"
)

// Provider creates chat models against the OpenAI API or any compatible
// endpoint (set baseURL).
type Provider struct {
	client *openai.Client
}

// NewProvider creates an OpenAI provider. An empty baseURL uses api.openai.com.
func NewProvider(apiKey, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Provider{client: openai.NewClientWithConfig(cfg)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Model returns a chat model for the given model id.
func (p *Provider) Model(id string, maxTokens int) services.ChatModel {
	return &chatModel{client: p.client, model: id, maxTokens: maxTokens}
}

type chatModel struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func (m *chatModel) Name() string {
	return "openai/" + m.model
}

func (m *chatModel) Stream(ctx context.Context, messages []services.ChatMessage) (<-chan services.Chunk, error) {
	req := openai.ChatCompletionRequest{
		Model:     m.model,
		Messages:  convertMessages(messages),
		MaxTokens: m.maxTokens,
		Stream:    true,
	}

	stream, err := m.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("openai API error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("failed to create completion stream: %w", err)
	}

	chunks := make(chan services.Chunk, 16)

	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				chunks <- services.Chunk{Err: fmt.Errorf("stream receive error: %w", err)}
				return
			}

			for _, choice := range resp.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				select {
				case <-ctx.Done():
					chunks <- services.Chunk{Err: ctx.Err()}
					return
				case chunks <- services.Chunk{Text: choice.Delta.Content}:
				}
			}
		}
	}()

	return chunks, nil
}

func convertMessages(messages []services.ChatMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		result = append(result, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return result
}
