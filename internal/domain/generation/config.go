package generation

import "time"

// Config holds generation domain configuration.
type Config struct {
	// ProviderTimeout bounds the single provider call.
	ProviderTimeout time.Duration
	// MaxImageBytes caps the decoded size of the source drawing.
	MaxImageBytes int
	// ReleaseAttempts bounds tries to refund a failed attempt.
	ReleaseAttempts int
	// ReleaseBackoff is the wait before the second try; it doubles after each try.
	ReleaseBackoff time.Duration
	// DefaultHistoryLimit and MaxHistoryLimit bound ListAttempts.
	DefaultHistoryLimit int
	MaxHistoryLimit     int
}

// DefaultConfig returns default generation configuration.
func DefaultConfig() *Config {
	return &Config{
		ProviderTimeout:     60 * time.Second,
		MaxImageBytes:       10 << 20,
		ReleaseAttempts:     3,
		ReleaseBackoff:      200 * time.Millisecond,
		DefaultHistoryLimit: 20,
		MaxHistoryLimit:     100,
	}
}
