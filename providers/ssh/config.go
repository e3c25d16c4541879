package ssh

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	defaultPort      = 22
	defaultTimeout   = 10 * time.Second
	defaultKillGrace = 5 * time.Second
)

// Config holds all parameters required to establish an SSH connection.
type Config struct {
	// Connection details
	Host string // Hostname or IP address
	Port int    // Port number (default 22)
	User string // Username to authenticate as

	// Authentication methods (tried in order)
	PrivateKey     string // PEM encoded private key content (string)
	PrivateKeyPath string // Path to private key file (e.g. "~/.ssh/id_rsa")
	Password       string // Password for authentication (use sparingly)
	UseAgent       bool   // If true, attempt to connect to SSH_AUTH_SOCK

	// Connection settings
	Timeout            time.Duration       // Connection timeout (default 10s)
	HostKeyCheck       ssh.HostKeyCallback // Callback to verify host key. You normally generate this from known_hosts.
	InsecureSkipVerify bool                // If true, disables strict host key checking. Use ONLY for testing.

	// Session settings
	KillGrace time.Duration // How long Destroy waits for the remote exit status (default 5s)
	Logger    *slog.Logger
}

// NewConfig creates a Config with safe defaults.
// Note: It does NOT set a default HostKeyCheck. You must provide one or set InsecureSkipVerify=true.
func NewConfig(host, username string) Config {
	return Config{
		Host:    host,
		User:    username,
		Port:    defaultPort,
		Timeout: defaultTimeout,
	}
}

// NewFromSSHConfig loads configuration from an SSH config file (e.g. ~/.ssh/config).
// logic mirrors OpenSSH: reads specific path or default ~/.ssh/config.
func NewFromSSHConfig(alias, path string) (Config, error) {
	if path == "" {
		path = filepath.Join(homeDir(), ".ssh", "config")
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open ssh config: %w", err)
	}

	defer func() { _ = f.Close() }()

	return NewFromSSHConfigReader(alias, f)
}

// NewFromSSHConfigReader parses configuration config data.
// It resolves the alias to the actual HostName, User, Port, and IdentityFile.
func NewFromSSHConfigReader(alias string, r io.Reader) (Config, error) {
	cfg, err := ssh_config.Decode(r)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse ssh config: %w", err)
	}

	hostName, err := cfg.Get(alias, "HostName")
	if err != nil || hostName == "" {
		hostName = alias // Fallback if no HostName defined
	}

	username, _ := cfg.Get(alias, "User")
	if username == "" {
		// Use current system user if not specified in config
		u, _ := user.Current()
		if u != nil {
			username = u.Username
		}
	}

	portStr, _ := cfg.Get(alias, "Port")

	port := defaultPort
	if portStr != "" {
		_, _ = fmt.Sscanf(portStr, "%d", &port)
	}

	identityFile, _ := cfg.Get(alias, "IdentityFile")
	if strings.HasPrefix(identityFile, "~/") {
		identityFile = filepath.Join(homeDir(), identityFile[2:])
	}

	c := NewConfig(hostName, username)
	c.Port = port
	c.PrivateKeyPath = identityFile

	strict, _ := cfg.Get(alias, "StrictHostKeyChecking")
	if strict == "no" {
		c.InsecureSkipVerify = true
	}

	forwardAgent, _ := cfg.Get(alias, "ForwardAgent")
	if forwardAgent == "yes" {
		c.UseAgent = true
	}

	return c, nil
}

// WithDefaults sets default values for zero-valued fields.
func (c Config) WithDefaults() Config {
	if c.Host != "" && c.User != "" && c.Port == 0 {
		c.Port = defaultPort
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	if c.KillGrace == 0 {
		c.KillGrace = defaultKillGrace
	}

	// If insecure is requested and no callback provided, use insecure ignore.
	if c.InsecureSkipVerify && c.HostKeyCheck == nil {
		c.HostKeyCheck = ssh.InsecureIgnoreHostKey()
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return c
}

// Validate ensures all required fields are present.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("configuration error: host address cannot be empty")
	}

	if c.User == "" {
		return errors.New("configuration error: user cannot be empty")
	}

	if c.HostKeyCheck == nil {
		return errors.New("configuration error: HostKeyCheck is missing; you must provide a callback (e.g. valid 'known_hosts') or set InsecureSkipVerify=true (testing only)")
	}

	return nil
}

// Address returns host:port.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ToClientConfig converts the local Config struct to the underlying ssh.ClientConfig.
func (c Config) ToClientConfig() (*ssh.ClientConfig, error) {
	config := &ssh.ClientConfig{
		User:            c.User,
		Auth:            []ssh.AuthMethod{},
		HostKeyCallback: c.HostKeyCheck,
		Timeout:         c.Timeout,
	}

	if c.Password != "" {
		config.Auth = append(config.Auth, ssh.Password(c.Password))
	}

	if c.PrivateKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(c.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}

		config.Auth = append(config.Auth, ssh.PublicKeys(signer))
	}

	return config, nil
}

// DefaultKnownHosts returns a HostKeyCallback that verifies the host key against
// strict entries in the user's ~/.ssh/known_hosts file.
func DefaultKnownHosts() (ssh.HostKeyCallback, error) {
	return knownhosts.New(filepath.Join(homeDir(), ".ssh", "known_hosts"))
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}

	return os.Getenv("HOME")
}
