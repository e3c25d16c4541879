// Package config reads and writes the catoken configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ruffel/interact/codeartifact"
	"gopkg.in/yaml.v3"
)

// DefaultMavenSettings is the settings file used when none is configured.
const DefaultMavenSettings = "~/.m2/settings.xml"

// File is the whole configuration document.
type File struct {
	AWSPath           string                   `yaml:"aws_path,omitempty"`
	AWSVaultPath      string                   `yaml:"aws_vault_path,omitempty"`
	MavenSettingsFile string                   `yaml:"maven_settings_file,omitempty"`
	GenerateForAll    bool                     `yaml:"generate_for_all,omitempty"`
	Current           string                   `yaml:"current,omitempty"`
	Configurations    map[string]Configuration `yaml:"configurations,omitempty"`
}

// Configuration is one CodeArtifact repository and the Maven server it feeds.
type Configuration struct {
	Domain        string        `yaml:"domain"`
	DomainOwner   string        `yaml:"domain_owner"`
	Region        string        `yaml:"region,omitempty"`
	Profile       string        `yaml:"profile,omitempty"`
	MavenServerID string        `yaml:"maven_server_id,omitempty"`
	Enabled       bool          `yaml:"enabled"`
	Duration      time.Duration `yaml:"duration,omitempty"`
}

// Named pairs a configuration with its key in the file.
type Named struct {
	Name string
	Configuration
}

// Target converts the configuration into a token request target.
func (c Configuration) Target() codeartifact.Target {
	return codeartifact.Target{
		Domain:      c.Domain,
		DomainOwner: c.DomainOwner,
		Region:      c.Region,
		Profile:     c.Profile,
		Duration:    c.Duration,
	}
}

// Tooling returns the executables the file points at.
func (f *File) Tooling() codeartifact.Tooling {
	return codeartifact.Tooling{CLIPath: f.AWSPath, VaultPath: f.AWSVaultPath}
}

// MavenSettingsPath returns the settings file with a leading "~" expanded.
func (f *File) MavenSettingsPath() (string, error) {
	return expandHome(f.MavenSettingsFile)
}

// DefaultPath returns the per-user location of the configuration file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}

	return filepath.Join(dir, "catoken", "config.yaml"), nil
}

// Load reads path and fills in defaults. A missing file yields the defaults.
func Load(path string) (*File, error) {
	f, err := read(path)
	if err != nil {
		return nil, err
	}

	f.applyDefaults()

	return f, nil
}

// SetCurrent makes name the current configuration of the file at path.
// The file is rewritten as stored, without the defaults Load fills in.
func SetCurrent(path, name string) error {
	f, err := read(path)
	if err != nil {
		return err
	}

	if _, ok := f.Configurations[name]; !ok {
		return fmt.Errorf("unknown configuration %q", name)
	}

	f.Current = name

	return Save(path, f)
}

func read(path string) (*File, error) {
	f := &File{}

	payload, err := os.ReadFile(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(payload, f); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	return f, nil
}

func (f *File) applyDefaults() {
	if strings.TrimSpace(f.AWSPath) == "" {
		f.AWSPath = codeartifact.DefaultCLIPath
	}

	if strings.TrimSpace(f.MavenSettingsFile) == "" {
		f.MavenSettingsFile = DefaultMavenSettings
	}

	if f.Configurations == nil {
		f.Configurations = map[string]Configuration{}
	}

	profile := os.Getenv("AWS_PROFILE")
	if profile == "" {
		profile = codeartifact.DefaultProfile
	}

	for name, c := range f.Configurations {
		if c.Profile == "" {
			c.Profile = profile
			f.Configurations[name] = c
		}
	}
}

// Save writes f to path through a temporary file and a rename.
func Save(path string, f *File) (err error) {
	payload, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "config-tmp-*.yaml")
	if err != nil {
		return fmt.Errorf("create temporary config: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write config: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}

	return nil
}

// Select resolves which configurations to refresh.
//
// Explicit names win and must all exist. Otherwise all enabled configurations
// are used when all is set or the file asks for it, then the current one,
// then the only one.
func (f *File) Select(names []string, all bool) ([]Named, error) {
	if len(names) > 0 {
		out := make([]Named, 0, len(names))

		for _, name := range names {
			c, ok := f.Configurations[name]
			if !ok {
				return nil, fmt.Errorf("unknown configuration %q", name)
			}

			out = append(out, Named{Name: name, Configuration: c})
		}

		return out, nil
	}

	if all || f.GenerateForAll {
		var out []Named

		for _, name := range f.sortedNames() {
			if c := f.Configurations[name]; c.Enabled {
				out = append(out, Named{Name: name, Configuration: c})
			}
		}

		if len(out) == 0 {
			return nil, errors.New("no enabled configurations")
		}

		return out, nil
	}

	if f.Current != "" {
		return f.Select([]string{f.Current}, false)
	}

	if len(f.Configurations) == 1 {
		return f.Select(f.sortedNames(), false)
	}

	if len(f.Configurations) == 0 {
		return nil, errors.New("no configurations defined")
	}

	return nil, errors.New("several configurations defined: name one, set current, or use --all")
}

func (f *File) sortedNames() []string {
	names := make([]string, 0, len(f.Configurations))
	for name := range f.Configurations {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
