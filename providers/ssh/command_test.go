package ssh

import (
	"testing"

	"github.com/ruffel/interact"
	"github.com/stretchr/testify/assert"
)

func TestBuildEnvPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  []string
		want string
	}{
		{
			name: "empty",
			env:  nil,
			want: "",
		},
		{
			name: "basic",
			env:  []string{"FOO=bar", "BAZ=qux"},
			want: "export FOO='bar'; export BAZ='qux'; ",
		},
		{
			name: "escaping",
			env:  []string{"MSG=don't stop"},
			want: "export MSG='don'\\''t stop'; ",
		},
		{
			name: "empty value",
			env:  []string{"AWS_PAGER="},
			want: "export AWS_PAGER=''; ",
		},
		{
			name: "malformed skipped",
			env:  []string{"INVALID", "BAD KEY=x", "1X=y"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, buildEnvPrefix(tt.env))
		})
	}
}

func TestBuildDirPrefix(t *testing.T) {
	t.Parallel()

	assert.Empty(t, buildDirPrefix(""))
	assert.Equal(t, "cd '/tmp/test' && ", buildDirPrefix("/tmp/test"))
	assert.Equal(t, "cd '/tmp/O'\\''Neil' && ", buildDirPrefix("/tmp/O'Neil"))
}

func TestBuildFullCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  string
		args []string
		dir  string
		env  []string
		want string
	}{
		{
			name: "with env and dir",
			cmd:  "echo",
			args: []string{"hello"},
			dir:  "/tmp",
			env:  []string{"A=B"},
			want: "export A='B'; cd '/tmp' && 'echo' 'hello'",
		},
		{
			name: "embedded single quote",
			cmd:  "echo",
			args: []string{"it's working"},
			want: "'echo' 'it'\\''s working'",
		},
		{
			name: "empty argument kept",
			cmd:  "aws",
			args: []string{"--profile", ""},
			want: "'aws' '--profile' ''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := interact.NewCommand(tt.cmd, tt.args...)
			cmd.Dir = tt.dir
			cmd.Env = tt.env

			assert.Equal(t, tt.want, buildFullCommand(cmd))
		})
	}
}

func TestSSH_Security_CommandInjection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "semicolon with space",
			args:     []string{"hello; whoami"},
			expected: "'echo' 'hello; whoami'",
		},
		{
			name:     "semicolon no space",
			args:     []string{"hello;whoami"},
			expected: "'echo' 'hello;whoami'",
		},
		{
			name:     "embedded single quote",
			args:     []string{"it's"},
			expected: "'echo' 'it'\\''s'",
		},
		{
			name:     "pipe",
			args:     []string{"foo|bar"},
			expected: "'echo' 'foo|bar'",
		},
		{
			name:     "backticks",
			args:     []string{"`whoami`"},
			expected: "'echo' '`whoami`'",
		},
		{
			name:     "command substitution",
			args:     []string{"$(id)"},
			expected: "'echo' '$(id)'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, buildFullCommand(interact.NewCommand("echo", tt.args...)))
		})
	}
}
