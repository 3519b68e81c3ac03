package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"qwksearch/internal/config"
	"qwksearch/internal/domain/services"
)

const suggestionPrompt = `You are an AI suggestion generator for an AI powered search engine.
You will be given a conversation below. Generate 4-5 follow-up questions the user could ask next to explore the topic further.
The questions must be relevant to the conversation, medium in length and informative.
Return them between XML tags <suggestions> and </suggestions>, one question per line.`

var suggestionsBlock = regexp.MustCompile(`(?s)<suggestions>(.*?)</suggestions>`)

// GenerateSuggestions asks the model for follow-up questions to a
// conversation. Returns an empty list when the model ignores the format.
func GenerateSuggestions(ctx context.Context, model services.ChatModel, history []services.ChatMessage) ([]string, error) {
	var transcript strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&transcript, "%s: %s\n", msg.Role, msg.Content)
	}

	output, err := services.Generate(ctx, model, []services.ChatMessage{
		{Role: "system", Content: suggestionPrompt},
		{Role: "user", Content: "<conversation>\n" + transcript.String() + "</conversation>"},
	})
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}

	return ParseSuggestions(output), nil
}

// ParseSuggestions extracts one suggestion per non-empty line from the
// <suggestions> block, stripping list markers.
func ParseSuggestions(output string) []string {
	m := suggestionsBlock.FindStringSubmatch(output)
	if m == nil {
		return []string{}
	}

	lines := lo.Map(strings.Split(m[1], "\n"), func(line string, _ int) string {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		return strings.TrimSpace(line)
	})
	suggestions := lo.Compact(lines)

	if len(suggestions) > config.MaxSuggestions {
		suggestions = suggestions[:config.MaxSuggestions]
	}
	return suggestions
}
