package interact

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/shlex"
)

// Command configures one process execution.
//
// Arguments are always discrete tokens. Nothing in this package joins them into a
// shell string for execution, so values such as domains or profiles are never
// reinterpreted by a shell.
type Command struct {
	Cmd  string   // Binary name or path to executable
	Args []string // Arguments to pass to the binary
	Env  []string // Environment variables in "KEY=VALUE" format
	Dir  string   // Working directory for execution
}

// Validate checks that the command is well-formed.
// Returns an error if the command is nil or has an empty binary.
func (c *Command) Validate() error {
	if c == nil {
		return errors.New("command cannot be nil")
	}

	if strings.TrimSpace(c.Cmd) == "" {
		return errors.New("command binary cannot be empty")
	}

	return nil
}

// NewCommand creates a new Command with the given binary and arguments.
func NewCommand(binary string, args ...string) *Command {
	return &Command{
		Cmd:  binary,
		Args: args,
	}
}

// Clone returns a deep copy of the command.
func (c *Command) Clone() *Command {
	if c == nil {
		return nil
	}

	return &Command{
		Cmd:  c.Cmd,
		Args: append([]string(nil), c.Args...),
		Env:  append([]string(nil), c.Env...),
		Dir:  c.Dir,
	}
}

// String returns a simplified, shell-quoted string representation of the command.
// It is meant for logs and messages only.
func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Cmd
	}

	var b strings.Builder
	b.WriteString(c.Cmd)

	for _, arg := range c.Args {
		b.WriteString(" ")

		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			fmt.Fprintf(&b, "%q", arg)
		} else {
			b.WriteString(arg)
		}
	}

	return b.String()
}

// ParseCommand parses a shell command string into a Command struct using shlex.
// It handles quoted arguments correctly. It is used for configured executable
// settings (e.g. `"/opt/aws cli/aws" --no-cli-pager`) that later receive more
// arguments through a Builder.
func ParseCommand(cmdStr string) (*Command, error) {
	parts, err := shlex.Split(cmdStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command: %w", err)
	}

	if len(parts) == 0 {
		return nil, errors.New("empty command")
	}

	return &Command{
		Cmd:  parts[0],
		Args: parts[1:],
	}, nil
}

// State is the lifecycle position of a Session as seen by Poll.
type State int

const (
	// StateRunning means the process has not terminated yet.
	StateRunning State = iota
	// StateExited means the process terminated and ExitCode is valid.
	StateExited
)

// Status is the answer of Session.Poll.
type Status struct {
	State    State
	ExitCode int
}

// Running returns the status of a live process.
func Running() Status {
	return Status{State: StateRunning}
}

// Exited returns the status of a process that terminated with code.
func Exited(code int) Status {
	return Status{State: StateExited, ExitCode: code}
}

// Exited reports whether the process has terminated.
func (s Status) Exited() bool {
	return s.State == StateExited
}

// Outcome is the terminal classification of an Engine.Run call.
type Outcome int

const (
	// OutcomeSuccess carries the captured output.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure carries a message for the operator.
	OutcomeFailure
	// OutcomeCancelled is a caller or operator initiated stop.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is returned once per Engine.Run call and is never modified afterwards.
type Result struct {
	Outcome  Outcome
	Output   string        // Trimmed stdout on success
	Message  string        // Operator facing text on failure or cancellation
	Err      error         // Underlying *OperationError, nil on success
	Attempts int           // Number of processes spawned, nested login included
	Duration time.Duration // Wall time of the whole invocation
}

// Success returns true if the invocation produced output.
func (r *Result) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// Failed returns true if the invocation ended in a failure.
func (r *Result) Failed() bool {
	return r.Outcome == OutcomeFailure
}

// Cancelled returns true if the invocation was cancelled or a prompt was refused.
func (r *Result) Cancelled() bool {
	return r.Outcome == OutcomeCancelled
}
