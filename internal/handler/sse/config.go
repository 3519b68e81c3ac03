package sse

import "time"

// Config holds configuration for answer stream connections
type Config struct {
	// KeepAliveInterval is how often an idle stream gets a blank line so
	// proxies do not time it out
	KeepAliveInterval time.Duration
}

// DefaultConfig returns the default stream configuration.
// 10 seconds is safe for Vercel Edge Runtime and most proxies.
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 10 * time.Second,
	}
}
