package interact

import (
	"io"
	"log/slog"
	"time"

	"github.com/ruffel/interact/prompt"
)

// DefaultPollInterval bounds each wait of the engine loop.
const DefaultPollInterval = 100 * time.Millisecond

// EngineConfig holds configuration derived from options.
type EngineConfig struct {
	PollInterval time.Duration
	Timeout      time.Duration // Optional wall-clock deadline for a whole Run (0 disables)
	Recovery     RecoveryPolicy
	Detector     *prompt.Detector
	Logger       *slog.Logger
}

// EngineOption defines a functional option for the Engine.
type EngineOption func(*EngineConfig)

func defaultEngineConfig() EngineConfig {
	return EngineConfig{
		PollInterval: DefaultPollInterval,
		Detector:     prompt.Default(),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithPollInterval sets the bounded wait used on every loop tick.
// Non-positive values keep the default.
func WithPollInterval(d time.Duration) EngineOption {
	return func(c *EngineConfig) {
		if d > 0 {
			c.PollInterval = d
		}
	}
}

// WithTimeout cancels a Run that has not finished after d.
func WithTimeout(d time.Duration) EngineOption {
	return func(c *EngineConfig) {
		c.Timeout = d
	}
}

// WithRecovery enables the one-shot login-and-retry protocol.
func WithRecovery(p RecoveryPolicy) EngineOption {
	return func(c *EngineConfig) {
		c.Recovery = p
	}
}

// WithDetector replaces the prompt patterns.
func WithDetector(d *prompt.Detector) EngineOption {
	return func(c *EngineConfig) {
		if d != nil {
			c.Detector = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(c *EngineConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}
