package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qwksearch/internal/domain"
	"qwksearch/internal/domain/services"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *Request)
		wantPaths []string
	}{
		{
			name:   "valid",
			mutate: func(r *Request) {},
		},
		{
			name:      "missing content",
			mutate:    func(r *Request) { r.Message.Content = "" },
			wantPaths: []string{"message.content"},
		},
		{
			name:      "missing model key",
			mutate:    func(r *Request) { r.ChatModel.Key = "" },
			wantPaths: []string{"chatModel.key"},
		},
		{
			name:      "unknown optimization mode",
			mutate:    func(r *Request) { r.OptimizationMode = "turbo" },
			wantPaths: []string{"optimizationMode"},
		},
		{
			name:      "history entry is not a pair",
			mutate:    func(r *Request) { r.History = [][]string{{"human"}} },
			wantPaths: []string{"history.0"},
		},
		{
			name:   "history role is free-form",
			mutate: func(r *Request) { r.History = [][]string{{"human", "hi"}, {"robot", "beep"}} },
		},
		{
			name: "several issues are all reported",
			mutate: func(r *Request) {
				r.Message = MessageInput{}
				r.FocusMode = ""
			},
			wantPaths: []string{"focusMode", "message.chatId", "message.content", "message.messageId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest("c1", "m1", "hello")
			req.History = [][]string{{"human", "hi"}, {"assistant", "hello"}}
			tt.mutate(req)

			err := req.Validate()
			if tt.wantPaths == nil {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Invalid request body", verr.Message)

			paths := make([]string, len(verr.Issues))
			for i, issue := range verr.Issues {
				paths[i] = issue.Path
				assert.NotEmpty(t, issue.Message)
			}
			assert.Equal(t, tt.wantPaths, paths)
		})
	}
}

func TestHistoryMessages(t *testing.T) {
	got := HistoryMessages([][]string{
		{"human", "a"},
		{"ai", "b"},
		{"assistant", "c"},
		{"robot", "d"},
		{"broken"},
	})

	assert.Equal(t, []services.ChatMessage{
		{Role: "user", Content: "a"},
		{Role: "assistant", Content: "b"},
		{Role: "assistant", Content: "c"},
		{Role: "assistant", Content: "d"},
	}, got)
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "short", input: "hello", want: 5},
		{name: "exact", input: strings.Repeat("a", 255), want: 255},
		{name: "long ascii", input: strings.Repeat("a", 300), want: 255},
		{name: "long multibyte", input: strings.Repeat("é", 300), want: 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTitle(tt.input)
			assert.Len(t, []rune(got), tt.want)
			assert.True(t, strings.HasPrefix(tt.input, got))
		})
	}
}
