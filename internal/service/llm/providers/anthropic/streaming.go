package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"qwksearch/internal/domain/services"
)

// Stream starts a Claude generation and emits text deltas.
func (m *chatModel) Stream(ctx context.Context, messages []services.ChatMessage) (<-chan services.Chunk, error) {
	system, converted, err := convertMessages(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		Messages:  converted,
		MaxTokens: m.maxTokens,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: system,
			},
		}
	}

	chunks := make(chan services.Chunk, 16)

	go func() {
		defer close(chunks)

		stream := m.client.Messages.NewStreaming(ctx, params)
		defer func() { _ = stream.Close() }()

		for stream.Next() {
			event := stream.Current()

			delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok || delta.Delta.Type != "text_delta" || delta.Delta.Text == "" {
				continue
			}

			select {
			case <-ctx.Done():
				chunks <- services.Chunk{Err: ctx.Err()}
				return
			case chunks <- services.Chunk{Text: delta.Delta.Text}:
			}
		}

		if err := stream.Err(); err != nil {
			chunks <- services.Chunk{Err: fmt.Errorf("anthropic streaming error: %w", err)}
		}
	}()

	return chunks, nil
}
