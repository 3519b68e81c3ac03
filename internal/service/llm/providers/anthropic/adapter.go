package anthropic

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"qwksearch/internal/domain/services"
)

// convertMessages splits prompt messages into Anthropic's system prompt and
// the alternating user/assistant list.
func convertMessages(messages []services.ChatMessage) (string, []anthropic.MessageParam, error) {
	var system []string
	result := make([]anthropic.MessageParam, 0, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "user":
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			return "", nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}
	}

	if len(result) == 0 {
		return "", nil, fmt.Errorf("at least one user message is required")
	}

	return strings.Join(system, "\n\n"), result, nil
}
