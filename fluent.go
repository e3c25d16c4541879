package interact

// Builder provides a fluent API for constructing Commands.
type Builder struct {
	cmd *Command
}

// Cmd creates a new Builder for a command with the given name/path.
func Cmd(binary string) *Builder {
	return &Builder{
		cmd: &Command{
			Cmd: binary,
		},
	}
}

// From creates a Builder that starts from a copy of base.
// Useful when the binary comes from a parsed setting that already carries arguments.
func From(base *Command) *Builder {
	if base == nil {
		return &Builder{cmd: &Command{}}
	}

	return &Builder{cmd: base.Clone()}
}

// Arg adds a single argument.
func (b *Builder) Arg(arg string) *Builder {
	b.cmd.Args = append(b.cmd.Args, arg)
	return b
}

// Args adds multiple arguments.
func (b *Builder) Args(args ...string) *Builder {
	b.cmd.Args = append(b.cmd.Args, args...)
	return b
}

// Flag adds a flag followed by its value as two separate tokens.
func (b *Builder) Flag(name, value string) *Builder {
	b.cmd.Args = append(b.cmd.Args, name, value)
	return b
}

// FlagIf adds the flag only when cond holds.
func (b *Builder) FlagIf(cond bool, name, value string) *Builder {
	if cond {
		return b.Flag(name, value)
	}

	return b
}

// Env adds an environment variable in "KEY=VALUE" format.
func (b *Builder) Env(key, value string) *Builder {
	b.cmd.Env = append(b.cmd.Env, key+"="+value)
	return b
}

// Dir sets the working directory.
func (b *Builder) Dir(dir string) *Builder {
	b.cmd.Dir = dir
	return b
}

// Build returns the constructed Command.
// The result is a copy; further builder calls do not affect it.
func (b *Builder) Build() *Command {
	return b.cmd.Clone()
}
