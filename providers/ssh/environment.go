package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ruffel/interact"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var _ interact.Spawner = (*Environment)(nil)

// Environment implements interact.Spawner for a remote POSIX host.
// Every Spawn opens a new session on one shared connection.
type Environment struct {
	config Config
	client *ssh.Client
	mu     sync.Mutex
	active int
	closed bool
}

// loadPrivateKeyAuth loads a private key from a file and returns an ssh.AuthMethod.
// Returns nil if the path is empty.
func loadPrivateKeyAuth(keyPath string) (ssh.AuthMethod, error) {
	if keyPath == "" {
		return nil, nil //nolint:nilnil // Valid state: no key path provided, so no auth method returned
	}

	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key file: %w", err)
	}

	return ssh.PublicKeys(signer), nil
}

// loadAgentAuth connects to the SSH agent and returns an ssh.AuthMethod.
// Returns nil if UseAgent is false or the agent socket is unavailable.
func loadAgentAuth(useAgent bool) ssh.AuthMethod {
	if !useAgent {
		return nil
	}

	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	conn, err := (&net.Dialer{Timeout: 500 * time.Millisecond}).DialContext(context.Background(), "unix", socket)
	if err != nil {
		return nil
	}

	signers, err := agent.NewClient(conn).Signers()
	if err != nil {
		return nil
	}

	return ssh.PublicKeys(signers...)
}

// New establishes a new SSH connection.
func New(opts ...Option) (*Environment, error) {
	var c Config

	for _, opt := range opts {
		opt(&c)
	}

	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	clientConfig, err := c.ToClientConfig()
	if err != nil {
		return nil, err
	}

	if keyAuth, err := loadPrivateKeyAuth(c.PrivateKeyPath); err != nil {
		return nil, err
	} else if keyAuth != nil {
		clientConfig.Auth = append(clientConfig.Auth, keyAuth)
	}

	if agentAuth := loadAgentAuth(c.UseAgent); agentAuth != nil {
		clientConfig.Auth = append(clientConfig.Auth, agentAuth)
	}

	client, err := ssh.Dial("tcp", c.Address(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ssh at %s: %w", c.Address(), err)
	}

	c.Logger.Debug("ssh connected", "address", c.Address(), "user", c.User)

	return NewFromClient(client, c), nil
}

// NewFromClient creates a new SSH environment from an existing client.
func NewFromClient(client *ssh.Client, config Config) *Environment {
	return &Environment{
		config: config.WithDefaults(),
		client: client,
	}
}

// Spawn opens a NEW SSH session and starts cmd in it.
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

	session, err := e.client.NewSession()
	if err != nil {
		e.decrementActive()

		return nil, fmt.Errorf("failed to create ssh session: %w", err)
	}

	sess := &Session{
		env:     e,
		session: session,
		cmd:     cmd,
		log:     e.config.Logger.With("command", cmd.String(), "host", e.config.Host),
		done:    make(chan struct{}),
	}

	if err := sess.start(); err != nil {
		_ = session.Close()

		e.decrementActive()

		return nil, fmt.Errorf("cannot start command %q: %w", cmd.String(), err)
	}

	return sess, nil
}

// ActiveSessions returns the number of sessions whose remote command has not exited.
func (e *Environment) ActiveSessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.active
}

// Close closes the underlying SSH connection.
func (e *Environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true

	if e.client != nil {
		return e.client.Close()
	}

	return nil
}

func (e *Environment) decrementActive() {
	e.mu.Lock()
	e.active--
	e.mu.Unlock()
}
