package local

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ruffel/interact"
)

// Poll waits up to timeout for the process to terminate.
func (s *Session) Poll(timeout time.Duration) (interact.Status, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()

		return interact.Exited(s.exitCode), nil
	case <-timer.C:
		return interact.Running(), nil
	}
}

// WriteLine writes text and a newline to the process stdin.
// Pipe writes are unbuffered, so the line is delivered once Write returns.
func (s *Session) WriteLine(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return fmt.Errorf("cannot write to %q: session destroyed", s.cmd.String())
	}

	select {
	case <-s.done:
		return fmt.Errorf("cannot write to %q: process exited", s.cmd.String())
	default:
	}

	if _, err := io.WriteString(s.stdin, text+"\n"); err != nil {
		return fmt.Errorf("cannot write to %q: %w", s.cmd.String(), err)
	}

	return nil
}

// Destroy kills the process group if the process is still running and waits
// for it to be reaped. Calling it again, or after a natural exit, is a no-op.
func (s *Session) Destroy() error {
	var err error

	s.once.Do(func() {
		s.mu.Lock()
		s.destroyed = true
		_ = s.stdin.Close()
		s.mu.Unlock()

		select {
		case <-s.done:
			return
		default:
		}

		s.log.Debug("killing process", "pid", s.execCmd.Process.Pid)

		if killErr := killProcessGroup(s.execCmd.Process.Pid); killErr != nil {
			// The group may already be gone; fall back to the leader.
			if pErr := s.execCmd.Process.Kill(); pErr != nil && !errors.Is(pErr, os.ErrProcessDone) {
				err = fmt.Errorf("cannot kill %q: %w", s.cmd.String(), errors.Join(killErr, pErr))
			}
		}

		timer := time.NewTimer(s.env.cfg.grace)
		defer timer.Stop()

		select {
		case <-s.done:
		case <-timer.C:
			err = errors.Join(err, fmt.Errorf("process %q not reaped after %s", s.cmd.String(), s.env.cfg.grace))
		}
	})

	return err
}
