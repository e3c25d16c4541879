package codeartifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  Target
		wantErr string
	}{
		{
			name:   "minimal",
			target: Target{Domain: "acme", DomainOwner: "123456789012"},
		},
		{
			name:   "full",
			target: Target{Domain: "acme", DomainOwner: "123456789012", Region: "eu-west-1", Profile: "dev", Duration: time.Hour},
		},
		{
			name:    "missing domain",
			target:  Target{DomainOwner: "1"},
			wantErr: "domain is required",
		},
		{
			name:    "blank owner",
			target:  Target{Domain: "acme", DomainOwner: "  "},
			wantErr: "domain owner is required",
		},
		{
			name:    "unknown region",
			target:  Target{Domain: "acme", DomainOwner: "1", Region: "mars-north-1"},
			wantErr: "not a valid codeartifact region",
		},
		{
			name:    "duration too short",
			target:  Target{Domain: "acme", DomainOwner: "1", Duration: time.Minute},
			wantErr: "outside",
		},
		{
			name:    "duration too long",
			target:  Target{Domain: "acme", DomainOwner: "1", Duration: 13 * time.Hour},
			wantErr: "outside",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.target.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTokenCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tooling  Tooling
		target   Target
		wantCmd  string
		wantArgs []string
	}{
		{
			name:    "default profile omits flag",
			target:  Target{Domain: "acme", DomainOwner: "123", Profile: DefaultProfile},
			wantCmd: "aws",
			wantArgs: []string{
				"codeartifact", "get-authorization-token",
				"--domain", "acme", "--domain-owner", "123",
				"--query", "authorizationToken", "--output", "text",
			},
		},
		{
			name:    "named profile region and duration",
			tooling: Tooling{CLIPath: "/usr/local/bin/aws"},
			target:  Target{Domain: "acme", DomainOwner: "123", Profile: "dev", Region: "eu-west-1", Duration: 2 * time.Hour},
			wantCmd: "/usr/local/bin/aws",
			wantArgs: []string{
				"codeartifact", "get-authorization-token",
				"--profile", "dev", "--region", "eu-west-1", "--duration-seconds", "7200",
				"--domain", "acme", "--domain-owner", "123",
				"--query", "authorizationToken", "--output", "text",
			},
		},
		{
			name:    "cli path with arguments",
			tooling: Tooling{CLIPath: `"/opt/aws cli/aws" --no-cli-pager`},
			target:  Target{Domain: "acme", DomainOwner: "123"},
			wantCmd: "/opt/aws cli/aws",
			wantArgs: []string{
				"--no-cli-pager", "codeartifact", "get-authorization-token",
				"--domain", "acme", "--domain-owner", "123",
				"--query", "authorizationToken", "--output", "text",
			},
		},
		{
			name:    "vault wrapper",
			tooling: Tooling{VaultPath: "aws-vault"},
			target:  Target{Domain: "acme", DomainOwner: "123", Profile: "dev"},
			wantCmd: "aws-vault",
			wantArgs: []string{
				"exec", "dev", "--", "aws", "codeartifact", "get-authorization-token",
				"--domain", "acme", "--domain-owner", "123",
				"--query", "authorizationToken", "--output", "text",
			},
		},
		{
			name:    "vault ignored for default profile",
			tooling: Tooling{VaultPath: "aws-vault"},
			target:  Target{Domain: "acme", DomainOwner: "123"},
			wantCmd: "aws",
			wantArgs: []string{
				"codeartifact", "get-authorization-token",
				"--domain", "acme", "--domain-owner", "123",
				"--query", "authorizationToken", "--output", "text",
			},
		},
		{
			name:    "special characters stay single tokens",
			target:  Target{Domain: "acme; rm -rf /", DomainOwner: "123"},
			wantCmd: "aws",
			wantArgs: []string{
				"codeartifact", "get-authorization-token",
				"--domain", "acme; rm -rf /", "--domain-owner", "123",
				"--query", "authorizationToken", "--output", "text",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, err := TokenCommand(tt.tooling, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCmd, cmd.Cmd)
			assert.Equal(t, tt.wantArgs, cmd.Args)
		})
	}
}

func TestTokenCommand_Errors(t *testing.T) {
	t.Parallel()

	_, err := TokenCommand(Tooling{}, Target{})
	require.Error(t, err)

	_, err = TokenCommand(Tooling{CLIPath: `"aws`}, Target{Domain: "a", DomainOwner: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid aws cli path")

	_, err = TokenCommand(Tooling{VaultPath: `'vault`}, Target{Domain: "a", DomainOwner: "1", Profile: "dev"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid vault path")
}

func TestLoginCommand(t *testing.T) {
	t.Parallel()

	cmd, err := LoginCommand(Tooling{}, Target{Profile: "dev"})
	require.NoError(t, err)
	assert.Equal(t, "aws sso login --profile dev", cmd.String())

	cmd, err = LoginCommand(Tooling{}, Target{Profile: DefaultProfile})
	require.NoError(t, err)
	assert.Equal(t, "aws sso login", cmd.String())
}

func TestRecovery_LoginCommand(t *testing.T) {
	t.Parallel()

	r := NewRecovery(Tooling{}, Target{Domain: "acme", DomainOwner: "1", Profile: "dev"})

	tests := []struct {
		name    string
		failure string
		want    bool
	}{
		{name: "missing token", failure: "Error loading SSO Token: Token for dev does not exist", want: true},
		{name: "retrieve failure", failure: "Error when retrieving token from sso: Token has expired and refresh failed", want: true},
		{name: "expired session", failure: "The SSO session associated with this profile has expired or is otherwise invalid.", want: true},
		{name: "access denied", failure: "An error occurred (AccessDeniedException)", want: false},
		{name: "empty", failure: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			login, ok := r.LoginCommand(tt.failure)
			require.Equal(t, tt.want, ok)

			if tt.want {
				assert.Equal(t, []string{"sso", "login", "--profile", "dev"}, login.Args)
			} else {
				assert.Nil(t, login)
			}
		})
	}
}

func TestRecovery_Remediate(t *testing.T) {
	t.Parallel()

	failure := "The config profile (dev) could not be found. You can configure it with aws configure"

	named := NewRecovery(Tooling{}, Target{Profile: "dev"})
	assert.Equal(t, failure+"\n\n You could also consider \"aws configure --profile dev\"", named.Remediate(failure))
	assert.Equal(t, "boom", named.Remediate("boom"))

	def := NewRecovery(Tooling{}, Target{})
	assert.Equal(t, failure, def.Remediate(failure))
}

func TestInspectProfile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config")

	content := `[default]
region = eu-west-1

[profile dev]
sso_session = corp
sso_account_id = 123456789012
sso_role_name = Developer
region = us-east-1

[profile mfa]
role_arn = arn:aws:iam::123456789012:role/Deploy
source_profile = base
mfa_serial = arn:aws:iam::123456789012:mfa/me

[profile chained]
role_arn = arn:aws:iam::123456789012:role/Deploy
source_profile = dev

[profile base]
aws_access_key_id = AKIAEXAMPLEEXAMPLE00
aws_secret_access_key = example/secret/key

[sso-session corp]
sso_start_url = https://corp.awsapps.com/start
sso_region = eu-west-1
sso_registration_scopes = sso:account:access
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	files := SharedFiles{Config: configFile, Credentials: filepath.Join(dir, "credentials")}
	ctx := context.Background()

	t.Run("sso profile", func(t *testing.T) {
		t.Parallel()

		info, found, err := InspectProfile(ctx, "dev", files)
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, info.SSO)
		assert.False(t, info.MFA)
		assert.Equal(t, "us-east-1", info.Region)
	})

	t.Run("mfa profile", func(t *testing.T) {
		t.Parallel()

		info, found, err := InspectProfile(ctx, "mfa", files)
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, info.MFA)
		assert.False(t, info.SSO)
		assert.Equal(t, "arn:aws:iam::123456789012:role/Deploy", info.RoleARN)
	})

	t.Run("role assumed from sso profile", func(t *testing.T) {
		t.Parallel()

		info, found, err := InspectProfile(ctx, "chained", files)
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, info.SSO)
		assert.Equal(t, "arn:aws:iam::123456789012:role/Deploy", info.RoleARN)
	})

	t.Run("default profile", func(t *testing.T) {
		t.Parallel()

		info, found, err := InspectProfile(ctx, "", files)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, DefaultProfile, info.Name)
		assert.Equal(t, "eu-west-1", info.Region)
	})

	t.Run("unknown profile", func(t *testing.T) {
		t.Parallel()

		info, found, err := InspectProfile(ctx, "nope", files)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, "nope", info.Name)
	})
}
