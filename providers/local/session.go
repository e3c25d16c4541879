package local

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/ruffel/interact"
	"github.com/ruffel/interact/streamutil"
)

var _ interact.Session = (*Session)(nil)

// Session implements interact.Session for one local process.
type Session struct {
	env     *Environment
	cmd     *interact.Command
	execCmd *exec.Cmd
	log     *slog.Logger

	stdin   io.WriteCloser
	stdoutW *io.PipeWriter
	stderrW *io.PipeWriter
	stdout  *streamutil.Drain
	stderr  *streamutil.Drain

	mu        sync.Mutex // Guards stdin writes and exitCode
	exitCode  int
	done      chan struct{}
	destroyed bool
	once      sync.Once
}

func (s *Session) start() error {
	s.execCmd = exec.Command(s.cmd.Cmd, s.cmd.Args...)

	if s.cmd.Dir != "" {
		s.execCmd.Dir = s.cmd.Dir
	}

	if len(s.env.cfg.env) > 0 || len(s.cmd.Env) > 0 {
		env := append(os.Environ(), s.env.cfg.env...)
		s.execCmd.Env = append(env, s.cmd.Env...)
	}

	// Own process group so Destroy reaches the whole tree.
	setProcessGroup(s.execCmd)

	stdin, err := s.execCmd.StdinPipe()
	if err != nil {
		return err
	}

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()

	// Non-file writers make os/exec copy on its own goroutines and Wait for
	// them, so the pipes carry every byte before they are closed below.
	s.execCmd.Stdout = stdoutW
	s.execCmd.Stderr = stderrW

	if err := s.execCmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdoutW.Close()
		_ = stderrW.Close()

		return err
	}

	s.stdin = stdin
	s.stdoutW = stdoutW
	s.stderrW = stderrW
	s.stdout = streamutil.Start(stdoutR)
	s.stderr = streamutil.Start(stderrR)
	s.done = make(chan struct{})

	s.log.Debug("process started", "pid", s.execCmd.Process.Pid)

	go s.reap()

	return nil
}

// reap is the sole caller of exec.Cmd.Wait.
func (s *Session) reap() {
	defer close(s.done)
	defer s.env.decrementActive()

	err := s.execCmd.Wait()

	code := -1
	if s.execCmd.ProcessState != nil {
		code = s.execCmd.ProcessState.ExitCode()
	}

	s.mu.Lock()
	s.exitCode = code
	s.mu.Unlock()

	_ = s.stdoutW.Close()
	_ = s.stderrW.Close()

	s.log.Debug("process reaped", "exitCode", code, "error", err)
}

// Stdout returns the drained standard output.
func (s *Session) Stdout() interact.Stream {
	return s.stdout
}

// Stderr returns the drained standard error.
func (s *Session) Stderr() interact.Stream {
	return s.stderr
}
