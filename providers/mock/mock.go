package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ruffel/interact"
	"github.com/stretchr/testify/mock"
)

// Spawner implements a mock interact.Spawner using testify/mock.
type Spawner struct {
	mock.Mock
}

var _ interact.Spawner = (*Spawner)(nil)

// New creates a new mock spawner.
func New() *Spawner {
	return &Spawner{}
}

// Spawn mocks starting a command.
func (m *Spawner) Spawn(ctx context.Context, cmd *interact.Command) (interact.Session, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(interact.Session), args.Error(1)
}

// Session implements a mock interact.Session using testify/mock.
// Its streams are scripted rather than mocked; see Emit.
type Session struct {
	mock.Mock

	Out *Stream
	Err *Stream
}

var _ interact.Session = (*Session)(nil)

// NewSession creates a session with empty scripted streams.
func NewSession() *Session {
	return &Session{Out: &Stream{}, Err: &Stream{}}
}

// Poll mocks waiting for the process.
func (m *Session) Poll(timeout time.Duration) (interact.Status, error) {
	args := m.Called(timeout)

	return args.Get(0).(interact.Status), args.Error(1)
}

// WriteLine mocks writing a line to stdin.
func (m *Session) WriteLine(text string) error {
	args := m.Called(text)

	return args.Error(0)
}

// Destroy mocks terminating the process.
func (m *Session) Destroy() error {
	args := m.Called()

	return args.Error(0)
}

// Stdout returns the scripted standard output.
func (m *Session) Stdout() interact.Stream {
	return m.Out
}

// Stderr returns the scripted standard error.
func (m *Session) Stderr() interact.Stream {
	return m.Err
}

// Stream is an in-memory interact.Stream fed by tests.
// Final never blocks: a scripted stream is always at end of input.
type Stream struct {
	mu  sync.Mutex
	buf strings.Builder
}

var _ interact.Stream = (*Stream)(nil)

// Write appends text.
func (s *Stream) Write(text string) {
	s.mu.Lock()
	s.buf.WriteString(text)
	s.mu.Unlock()
}

// Snapshot returns the accumulated text.
func (s *Stream) Snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf.String()
}

// Reset clears the accumulated text.
func (s *Stream) Reset() {
	s.mu.Lock()
	s.buf.Reset()
	s.mu.Unlock()
}

// Take applies match and clears the text on success.
func (s *Stream) Take(match func(string) (string, bool)) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	got, ok := match(s.buf.String())
	if ok {
		s.buf.Reset()
	}

	return got, ok
}

// Final returns the accumulated text.
func (s *Stream) Final() (string, bool) {
	text := s.Snapshot()

	return text, text != ""
}

// Emit is a helper to simulate process output from an expectation.
// Usage: sess.On("Poll", mock.Anything).Run(Emit(sess.Err, "Enter MFA code for x ")).Return(interact.Running(), nil).Once().
func Emit(stream *Stream, text string) func(mock.Arguments) {
	return func(mock.Arguments) {
		if stream != nil {
			stream.Write(text)
		}
	}
}

// Prompter implements a mock interact.Prompter using testify/mock.
type Prompter struct {
	mock.Mock
}

var _ interact.Prompter = (*Prompter)(nil)

// Request mocks asking the operator.
func (m *Prompter) Request(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)

	return args.String(0), args.Error(1)
}

// Notify mocks an informational message.
func (m *Prompter) Notify(message string) {
	m.Called(message)
}

// Policy implements a mock interact.RecoveryPolicy using testify/mock.
type Policy struct {
	mock.Mock
}

var _ interact.RecoveryPolicy = (*Policy)(nil)

// LoginCommand mocks recognizing a failure.
func (m *Policy) LoginCommand(failure string) (*interact.Command, bool) {
	args := m.Called(failure)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}

	return args.Get(0).(*interact.Command), args.Bool(1)
}

// Remediate mocks the operator hint.
func (m *Policy) Remediate(failure string) string {
	args := m.Called(failure)

	return args.String(0)
}
