package ssh

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ruffel/interact"
)

var envKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quote wraps s in POSIX single quotes: ' -> '\''.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// buildEnvPrefix constructs the environment variable prefix for SSH commands.
// Since OpenSSH defaults PermitUserEnvironment=no, session.Setenv() won't work.
// We work around by prepending "export VAR='val';" to the command string.
func buildEnvPrefix(envVars []string) string {
	var envPrefix strings.Builder

	for _, env := range envVars {
		k, v, found := strings.Cut(env, "=")
		if !found || !envKey.MatchString(k) {
			continue // Skip malformed env
		}

		fmt.Fprintf(&envPrefix, "export %s=%s; ", k, quote(v))
	}

	return envPrefix.String()
}

// buildDirPrefix constructs the directory change prefix for SSH commands.
func buildDirPrefix(dir string) string {
	if dir == "" {
		return ""
	}

	return fmt.Sprintf("cd %s && ", quote(dir))
}

// buildFullCommand constructs the command line executed by the remote shell.
// Every token is quoted, so arguments are never reinterpreted by the shell.
func buildFullCommand(cmd *interact.Command) string {
	tokens := make([]string, 0, len(cmd.Args)+1)
	tokens = append(tokens, quote(cmd.Cmd))

	for _, arg := range cmd.Args {
		tokens = append(tokens, quote(arg))
	}

	return buildEnvPrefix(cmd.Env) + buildDirPrefix(cmd.Dir) + strings.Join(tokens, " ")
}
