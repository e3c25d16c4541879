package ssh

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ruffel/interact"
	"github.com/ruffel/interact/streamutil"
	"golang.org/x/crypto/ssh"
)

var _ interact.Session = (*Session)(nil)

// exitUnknown is reported when the remote side closed without an exit status.
const exitUnknown = 255

// Session implements interact.Session for one remote command.
type Session struct {
	env     *Environment
	session *ssh.Session
	cmd     *interact.Command
	log     *slog.Logger

	stdin  io.WriteCloser
	stdout *streamutil.Drain
	stderr *streamutil.Drain

	mu        sync.Mutex
	exitCode  int
	done      chan struct{}
	destroyed bool
	once      sync.Once
}

func (s *Session) start() error {
	stdin, err := s.session.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := s.session.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := s.session.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	// ssh applies backpressure to unread channels, so drains start before the command.
	s.stdin = stdin
	s.stdout = streamutil.Start(stdout)
	s.stderr = streamutil.Start(stderr)

	if err := s.session.Start(buildFullCommand(s.cmd)); err != nil {
		return err
	}

	s.log.Debug("remote command started")

	go s.wait()

	return nil
}

// wait is the sole caller of ssh.Session.Wait.
func (s *Session) wait() {
	defer close(s.done)
	defer s.env.decrementActive()

	err := s.session.Wait()

	code := 0

	if err != nil {
		exitErr := &ssh.ExitError{}
		if errors.As(err, &exitErr) {
			code = exitErr.ExitStatus()
		} else {
			code = exitUnknown // Unknown/connection error
		}
	}

	s.mu.Lock()
	s.exitCode = code
	s.mu.Unlock()

	s.log.Debug("remote command exited", "exitCode", code, "error", err)
}

// Poll waits up to timeout for the remote command to exit.
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

// WriteLine sends text and a newline on the session stdin.
func (s *Session) WriteLine(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return errors.New("session destroyed")
	}

	select {
	case <-s.done:
		return errors.New("remote command already exited")
	default:
	}

	if _, err := io.WriteString(s.stdin, text+"\n"); err != nil {
		return fmt.Errorf("write stdin: %w", err)
	}

	return nil
}

// Destroy kills the remote command and closes the session.
// Servers that ignore signal requests still lose the command when the channel closes.
func (s *Session) Destroy() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.destroyed = true
		s.mu.Unlock()

		select {
		case <-s.done:
			_ = s.session.Close()

			return
		default:
		}

		_ = s.session.Signal(ssh.SIGKILL)
		_ = s.session.Close()

		select {
		case <-s.done:
		case <-time.After(s.env.config.KillGrace):
			s.log.Warn("remote command did not report exit after kill")
		}
	})

	return nil
}

// Stdout returns the drained remote standard output.
func (s *Session) Stdout() interact.Stream {
	return s.stdout
}

// Stderr returns the drained remote standard error.
func (s *Session) Stderr() interact.Stream {
	return s.stderr
}
