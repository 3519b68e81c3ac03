package services

import (
	"context"
	"strings"
)

// ChatMessage is one prompt message passed to a chat model.
type ChatMessage struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Chunk is one piece of streamed model output. A chunk with Err set is the
// last one sent.
type Chunk struct {
	Text string
	Err  error
}

// ChatModel is an invocable language model.
type ChatModel interface {
	// Name returns "<provider>/<model>" for logs
	Name() string

	// Stream starts generation. The channel is closed when generation ends.
	Stream(ctx context.Context, messages []ChatMessage) (<-chan Chunk, error)
}

// ModelLoader resolves a chat model reference from a request.
type ModelLoader interface {
	// LoadChatModel returns domain.ErrUnknownModel for an unknown or
	// unconfigured provider/model pair.
	LoadChatModel(providerID, key string) (ChatModel, error)
}

// Generate runs a model to completion and returns the concatenated output.
func Generate(ctx context.Context, model ChatModel, messages []ChatMessage) (string, error) {
	chunks, err := model.Stream(ctx, messages)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		sb.WriteString(chunk.Text)
	}
	return sb.String(), nil
}
