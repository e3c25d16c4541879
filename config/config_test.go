package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ruffel/interact/codeartifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `aws_path: /usr/local/bin/aws
aws_vault_path: aws-vault
maven_settings_file: /tmp/settings.xml
current: dev
configurations:
  dev:
    domain: acme
    domain_owner: "123456789012"
    region: eu-west-1
    profile: dev
    maven_server_id: codeartifact-dev
    enabled: true
    duration: 2h
  prod:
    domain: acme
    domain_owner: "123456789012"
    maven_server_id: codeartifact
    enabled: false
  shared:
    domain: shared
    domain_owner: "210987654321"
    enabled: true
`

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")

	f, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, codeartifact.DefaultCLIPath, f.AWSPath)
	assert.Equal(t, DefaultMavenSettings, f.MavenSettingsFile)
	assert.Empty(t, f.AWSVaultPath)
	assert.NotNil(t, f.Configurations)
}

func TestLoad(t *testing.T) {
	t.Setenv("AWS_PROFILE", "fallback")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, codeartifact.Tooling{CLIPath: "/usr/local/bin/aws", VaultPath: "aws-vault"}, f.Tooling())
	assert.Equal(t, "dev", f.Current)
	require.Len(t, f.Configurations, 3)

	dev := f.Configurations["dev"]
	assert.Equal(t, codeartifact.Target{
		Domain:      "acme",
		DomainOwner: "123456789012",
		Region:      "eu-west-1",
		Profile:     "dev",
		Duration:    2 * time.Hour,
	}, dev.Target())
	assert.Equal(t, "codeartifact-dev", dev.MavenServerID)

	assert.Equal(t, "fallback", f.Configurations["prod"].Profile)
	assert.False(t, f.Configurations["prod"].Enabled)
}

func TestLoad_DefaultProfile(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, codeartifact.DefaultProfile, f.Configurations["shared"].Profile)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("configurations: [not, a, map]"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	in := &File{
		AWSPath:           "aws",
		MavenSettingsFile: "/tmp/settings.xml",
		Current:           "dev",
		Configurations: map[string]Configuration{
			"dev": {Domain: "acme", DomainOwner: "1", Profile: "dev", Enabled: true, Duration: 90 * time.Minute},
		},
	}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "config-tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSetCurrent(t *testing.T) {
	t.Setenv("AWS_PROFILE", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	require.NoError(t, SetCurrent(path, "prod"))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", f.Current)
	assert.Len(t, f.Configurations, 3)

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "from-env")

	err = SetCurrent(path, "qa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown configuration "qa"`)

	f, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", f.Current)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	base := map[string]Configuration{
		"dev":    {Domain: "acme", Enabled: true},
		"prod":   {Domain: "acme", Enabled: false},
		"shared": {Domain: "shared", Enabled: true},
	}

	tests := []struct {
		name    string
		file    File
		names   []string
		all     bool
		want    []string
		wantErr string
	}{
		{name: "explicit names", file: File{Configurations: base}, names: []string{"prod", "dev"}, want: []string{"prod", "dev"}},
		{name: "unknown name", file: File{Configurations: base}, names: []string{"qa"}, wantErr: `unknown configuration "qa"`},
		{name: "all enabled", file: File{Configurations: base}, all: true, want: []string{"dev", "shared"}},
		{name: "generate for all", file: File{Configurations: base, GenerateForAll: true}, want: []string{"dev", "shared"}},
		{name: "current", file: File{Configurations: base, Current: "shared"}, want: []string{"shared"}},
		{name: "current missing", file: File{Configurations: base, Current: "gone"}, wantErr: "unknown configuration"},
		{name: "single", file: File{Configurations: map[string]Configuration{"only": {}}}, want: []string{"only"}},
		{name: "ambiguous", file: File{Configurations: base}, wantErr: "several configurations"},
		{name: "empty", file: File{Configurations: map[string]Configuration{}}, wantErr: "no configurations defined"},
		{name: "none enabled", file: File{Configurations: map[string]Configuration{"prod": {}}}, all: true, wantErr: "no enabled configurations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.file.Select(tt.names, tt.all)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)

			names := make([]string, 0, len(got))
			for _, n := range got {
				names = append(names, n.Name)
			}

			assert.Equal(t, tt.want, names)
		})
	}
}

func TestMavenSettingsPath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	f := &File{MavenSettingsFile: DefaultMavenSettings}
	path, err := f.MavenSettingsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".m2", "settings.xml"), path)

	f.MavenSettingsFile = "/etc/maven/settings.xml"
	path, err = f.MavenSettingsPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/maven/settings.xml", path)
}
