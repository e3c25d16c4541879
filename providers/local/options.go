package local

import (
	"log/slog"
	"time"
)

// Config holds configuration for the local environment.
type Config struct {
	logger *slog.Logger
	env    []string      // Extra environment applied to every spawned command
	grace  time.Duration // Wait for the reaper after a kill before giving up
}

// Option defines a functional option for the local provider.
type Option func(*Config)

// WithLogger sets the logger used for process lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEnv adds "KEY=VALUE" entries to the environment of every command.
// Command.Env entries win over these.
func WithEnv(env ...string) Option {
	return func(c *Config) {
		c.env = append(c.env, env...)
	}
}

// WithKillGrace bounds how long Destroy waits for a killed process to be reaped.
func WithKillGrace(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.grace = d
		}
	}
}
