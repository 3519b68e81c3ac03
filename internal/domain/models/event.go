package models

// StreamEventType tags a StreamEvent.
type StreamEventType string

const (
	EventResponse   StreamEventType = "response"
	EventSources    StreamEventType = "sources"
	EventMessageEnd StreamEventType = "messageEnd"
	EventError      StreamEventType = "error"
)

// StreamEvent is one item of an answer stream. A stream carries any number of
// response and sources events followed by exactly one messageEnd or error.
type StreamEvent struct {
	Type    StreamEventType
	Text    string
	Sources []SearchResult
	Message string
}

func ResponseEvent(text string) StreamEvent {
	return StreamEvent{Type: EventResponse, Text: text}
}

func SourcesEvent(sources []SearchResult) StreamEvent {
	return StreamEvent{Type: EventSources, Sources: sources}
}

func MessageEndEvent() StreamEvent {
	return StreamEvent{Type: EventMessageEnd}
}

func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Message: message}
}

// Terminal reports whether the event ends a stream.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventMessageEnd || e.Type == EventError
}

// Frame is the wire form of a StreamEvent: one JSON object per line.
type Frame struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// Frame converts the event for the answer stream. Content events carry the
// assistant message id so clients can attach sources to the right message.
func (e StreamEvent) Frame(assistantID string) Frame {
	switch e.Type {
	case EventResponse:
		return Frame{Type: "message", Data: e.Text, MessageID: assistantID}
	case EventSources:
		sources := e.Sources
		if sources == nil {
			sources = []SearchResult{}
		}
		return Frame{Type: "sources", Data: sources, MessageID: assistantID}
	case EventMessageEnd:
		return Frame{Type: "messageEnd"}
	default:
		return Frame{Type: "error", Data: e.Message}
	}
}
