// Package sse writes the chat answer stream: newline-delimited JSON frames
// served as text/event-stream, with blank-line keep-alives.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// SetHeaders writes the answer stream response headers
func SetHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Connection", "keep-alive")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("X-Accel-Buffering", "no")
}

// FrameWriter serializes frames and keep-alives onto one response. Writes
// from the event loop and the keep-alive goroutine never interleave.
type FrameWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewFrameWriter wraps w. It fails when w cannot flush.
func NewFrameWriter(w http.ResponseWriter) (*FrameWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &FrameWriter{w: w, flusher: flusher}, nil
}

// WriteFrame writes v as one JSON line and flushes it
func (f *FrameWriter) WriteFrame(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	payload = append(payload, '\n')
	return f.write(payload)
}

// WriteKeepAlive writes a blank line, which NDJSON readers skip
func (f *FrameWriter) WriteKeepAlive() error {
	return f.write([]byte{'\n'})
}

func (f *FrameWriter) write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.w.Write(p); err != nil {
		return fmt.Errorf("connection closed: %w", err)
	}
	f.flusher.Flush()
	return nil
}
