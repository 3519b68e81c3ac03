package config

import "time"

const (
	// MaxChatTitleLength is the maximum length for chat titles.
	// Titles are derived from the first user message and truncated to fit
	// the VARCHAR(255) column.
	MaxChatTitleLength = 255

	// MaxRequestBodyBytes bounds JSON request bodies.
	MaxRequestBodyBytes = 10 << 20

	// DefaultSearchRetries is the empty-result retry budget for one query.
	// It is a hard cap across the whole query, not per instance.
	DefaultSearchRetries = 6

	// DefaultSearchTimeout bounds a single backend attempt.
	DefaultSearchTimeout = 10 * time.Second

	// DefaultSearxngURL is the private JSON-capable SearXNG deployment.
	DefaultSearxngURL = "https://search.qwksearch.com"

	// EventBufferSize is the capacity of the per-request answer channel.
	EventBufferSize = 64

	// MaxSuggestions caps follow-up suggestions stored per turn.
	MaxSuggestions = 5
)
