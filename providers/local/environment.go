package local

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/ruffel/interact"
)

var _ interact.Spawner = (*Environment)(nil)

const defaultKillGrace = 5 * time.Second

// Environment implements interact.Spawner for the local operating system.
// Thread-safe wrapper around os/exec.
type Environment struct {
	cfg    Config
	mu     sync.RWMutex
	active int
	closed bool
}

// New creates a new local environment.
func New(opts ...Option) *Environment {
	cfg := Config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		grace:  defaultKillGrace,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Environment{cfg: cfg}
}

// Spawn starts cmd on the local machine.
// The context is only consulted before starting; cancellation of a running
// session is driven by the caller through Destroy.
func (e *Environment) Spawn(ctx context.Context, cmd *interact.Command) (interact.Session, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return nil, fmt.Errorf("cannot start command %q: %w", cmd.String(), interact.ErrSpawnerClosed)
	}

	e.active++
	e.mu.Unlock()

	sess := &Session{
		env: e,
		cmd: cmd,
		log: e.cfg.logger.With("command", cmd.String()),
	}

	if err := sess.start(); err != nil {
		e.decrementActive()

		return nil, fmt.Errorf("cannot start command %q: %w", cmd.String(), err)
	}

	return sess, nil
}

// ActiveSessions returns the number of sessions whose process has not been reaped.
func (e *Environment) ActiveSessions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.active
}

// Close shuts down the environment.
// New Spawn calls will fail. Existing sessions keep running until destroyed.
func (e *Environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true

	return nil
}

// LookPath searches for an executable named file in the directories named by
// the PATH environment variable.
func (e *Environment) LookPath(file string) (string, error) {
	if e.isClosed() {
		return "", fmt.Errorf("cannot look up path: %w", interact.ErrSpawnerClosed)
	}

	return exec.LookPath(file)
}

func (e *Environment) decrementActive() {
	e.mu.Lock()
	e.active--
	e.mu.Unlock()
}

func (e *Environment) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.closed
}
