package interact

import (
	"errors"
	"fmt"
)

// ErrPromptRefused indicates that the operator declined to answer an interactive prompt.
// Prompter implementations return it (or wrap it) to abort the running command.
var ErrPromptRefused = errors.New("prompt refused")

// ErrSpawnerClosed indicates that a spawn was attempted on a closed environment.
var ErrSpawnerClosed = errors.New("spawner is closed")

// Kind classifies an OperationError.
type Kind int

const (
	// KindUnrecoverable is any nonzero exit that no recovery applies to.
	KindUnrecoverable Kind = iota
	// KindSpawnFailed means the executable could not be started.
	KindSpawnFailed
	// KindNoOutput means the process exited 0 but produced no payload.
	KindNoOutput
	// KindSessionExpired marks a failure recognized as an expired login session.
	KindSessionExpired
	// KindCancelled is a caller initiated stop.
	KindCancelled
	// KindPromptRefused means the operator declined an interactive prompt.
	KindPromptRefused
	// KindInternal wraps faults raised while interacting with the process.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnrecoverable:
		return "unrecoverable"
	case KindSpawnFailed:
		return "spawn-failed"
	case KindNoOutput:
		return "no-output"
	case KindSessionExpired:
		return "session-expired"
	case KindCancelled:
		return "cancelled"
	case KindPromptRefused:
		return "prompt-refused"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// OperationError is the failure category propagated out of a single invocation attempt.
type OperationError struct {
	Kind     Kind
	Command  *Command
	ExitCode int    // Only meaningful for KindUnrecoverable and KindSessionExpired
	Message  string // Human readable text, shown to the operator as-is
	Err      error
}

func (e *OperationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if msg == "" {
		msg = e.Kind.String()
	}

	if e.Command == nil {
		return msg
	}

	return fmt.Sprintf("%s: %s", e.Command.Cmd, msg)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *OperationError of the same Kind.
func (e *OperationError) Is(target error) bool {
	var t *OperationError
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

// newError builds an OperationError for cmd.
func newError(kind Kind, cmd *Command, msg string, err error) *OperationError {
	return &OperationError{
		Kind:    kind,
		Command: cmd,
		Message: msg,
		Err:     err,
	}
}

// KindOf returns the Kind of err, or KindInternal when err carries no OperationError.
func KindOf(err error) Kind {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}

	return KindInternal
}
