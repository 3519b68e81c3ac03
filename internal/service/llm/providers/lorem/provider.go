package lorem

import (
	"context"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"qwksearch/internal/domain/services"
)

// Provider is an offline chat model provider that streams lorem ipsum text.
// Used for development without API keys.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// Model returns a chat model. maxTokens bounds the number of streamed words.
func (p *Provider) Model(id string, maxTokens int) services.ChatModel {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &chatModel{provider: p, model: id, maxWords: maxTokens, delay: getStreamDelay(id)}
}

// getStreamDelay returns the delay between words based on the model name.
// - lorem-slow: 2 words/second
// - lorem-fast: 30 words/second
// - default: 10 words/second
func getStreamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(model, "fast") {
		return 33 * time.Millisecond
	}
	return 100 * time.Millisecond
}

type chatModel struct {
	provider *Provider
	model    string
	maxWords int
	delay    time.Duration
}

func (m *chatModel) Name() string {
	return "lorem/" + m.model
}

// Stream emits a few paragraphs word by word. The prompt is ignored.
func (m *chatModel) Stream(ctx context.Context, _ []services.ChatMessage) (<-chan services.Chunk, error) {
	words := strings.Fields(m.provider.generateText(m.maxWords))
	if len(words) > m.maxWords {
		words = words[:m.maxWords]
	}

	chunks := make(chan services.Chunk, 16)

	go func() {
		defer close(chunks)

		for i, word := range words {
			if i > 0 {
				word = " " + word
			}
			select {
			case <-ctx.Done():
				chunks <- services.Chunk{Err: ctx.Err()}
				return
			case chunks <- services.Chunk{Text: word}:
			}

			select {
			case <-ctx.Done():
				chunks <- services.Chunk{Err: ctx.Err()}
				return
			case <-time.After(m.delay):
			}
		}
	}()

	return chunks, nil
}

// generateText produces paragraphs until at least targetWords words exist.
func (p *Provider) generateText(targetWords int) string {
	var paragraphs []string
	count := 0
	for count < targetWords {
		paragraph := p.generator.Paragraph(3, 6)
		paragraphs = append(paragraphs, paragraph)
		count += len(strings.Fields(paragraph))
	}
	return strings.Join(paragraphs, "\n\n")
}
