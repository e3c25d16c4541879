package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder_Cmd(t *testing.T) {
	t.Parallel()

	cmd := Cmd("aws").
		Arg("codeartifact").
		Args("get-authorization-token", "--output", "text").
		Dir("/tmp").
		Env("AWS_PAGER", "").
		Build()

	assert.Equal(t, "aws", cmd.Cmd)
	assert.Equal(t, []string{"codeartifact", "get-authorization-token", "--output", "text"}, cmd.Args)
	assert.Equal(t, "/tmp", cmd.Dir)
	assert.Equal(t, []string{"AWS_PAGER="}, cmd.Env)
}

func TestBuilder_Flags(t *testing.T) {
	t.Parallel()

	cmd := Cmd("aws").
		Flag("--domain", "my domain").
		FlagIf(false, "--profile", "dev").
		FlagIf(true, "--region", "eu-west-1").
		Build()

	// Flag values stay single tokens even with spaces.
	assert.Equal(t, []string{"--domain", "my domain", "--region", "eu-west-1"}, cmd.Args)
}

func TestBuilder_From(t *testing.T) {
	t.Parallel()

	base := NewCommand("aws", "--no-cli-pager")
	cmd := From(base).Arg("sso").Build()

	assert.Equal(t, []string{"--no-cli-pager", "sso"}, cmd.Args)
	assert.Equal(t, []string{"--no-cli-pager"}, base.Args)

	assert.Empty(t, From(nil).Build().Cmd)
}

func TestBuilder_BuildIsCopy(t *testing.T) {
	t.Parallel()

	b := Cmd("aws").Arg("one")
	first := b.Build()
	b.Arg("two")

	assert.Equal(t, []string{"one"}, first.Args)
	assert.Equal(t, []string{"one", "two"}, b.Build().Args)
}
