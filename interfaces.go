// Package interact runs external command-line tools that may stop and ask for
// operator input while they run.
//
// # Core Interfaces
//
// - Spawner: starts processes somewhere (local OS, SSH host, test double).
// - Session: one running process plus its two drained output streams.
// - Prompter: the human on the other side of an interactive prompt.
// - RecoveryPolicy: turns a recognized failure into a login command that is run once before retrying.
//
// # Engine
//
// Engine polls a Session at a short fixed interval. On every tick it checks for
// cancellation, then for process exit, then looks at the accumulated output for
// an MFA code request (stderr) or an SSO device code (stdout). MFA answers are
// written to the process stdin; device codes are only reported.
package interact

import (
	"context"
	"time"
)

// Spawner starts processes.
type Spawner interface {
	// Spawn starts cmd and attaches drains to its stdout and stderr.
	// The returned Session is owned by the caller, who must Destroy it.
	Spawn(ctx context.Context, cmd *Command) (Session, error)
}

// Session owns one spawned process end-to-end.
type Session interface {
	// Poll waits up to timeout for the process to terminate.
	// It returns Running on timeout without side effects.
	Poll(timeout time.Duration) (Status, error)

	// WriteLine writes text followed by a newline to the process stdin and flushes it.
	WriteLine(text string) error

	// Destroy forcibly terminates the process. It is idempotent and safe after exit.
	Destroy() error

	// Stdout returns the drained standard output stream.
	Stdout() Stream

	// Stderr returns the drained standard error stream.
	Stderr() Stream
}

// Stream is the captured, growing output of one process descriptor.
type Stream interface {
	// Snapshot returns the accumulated text without consuming it.
	Snapshot() string

	// Reset clears the accumulated text.
	Reset()

	// Take runs match on the accumulated text and clears it when match succeeds.
	// Matching and clearing happen under the same lock.
	Take(match func(string) (string, bool)) (string, bool)

	// Final blocks until the descriptor reaches end of input and returns the text.
	// The boolean is false when nothing was ever captured.
	Final() (string, bool)
}

// Prompter obtains operator answers for interactive prompts.
//
// Request may block for as long as the operator needs. It is called from the
// goroutine running Engine.Run, never from a stream reader.
type Prompter interface {
	// Request shows prompt and returns the answer. Returning ErrPromptRefused
	// or an empty answer aborts the command.
	Request(ctx context.Context, prompt string) (string, error)

	// Notify reports informational progress. No answer is expected.
	Notify(message string)
}

// PrompterFunc adapts a plain function to Prompter. Notifications are discarded.
type PrompterFunc func(ctx context.Context, prompt string) (string, error)

// Request calls f.
func (f PrompterFunc) Request(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Notify does nothing.
func (f PrompterFunc) Notify(string) {}

// RecoveryPolicy recognizes failures that a nested login can repair.
type RecoveryPolicy interface {
	// LoginCommand returns the command that repairs failure, if failure is one
	// of the recognized signatures. failure is the trimmed stderr of the command.
	LoginCommand(failure string) (*Command, bool)

	// Remediate returns failure, possibly extended with a hint for the operator.
	// It must not be used to decide control flow.
	Remediate(failure string) string
}
