// Package ssh provides an implementation of the interact.Spawner interface
// for remote POSIX hosts via the SSH protocol.
//
// It utilizes "golang.org/x/crypto/ssh" to manage sessions. Each spawned
// command gets its own session on a shared connection, with stdin, stdout and
// stderr exposed as pipes, so MFA answers can be written to a remote AWS CLI
// exactly as they are to a local one.
//
// The command line is assembled with every token single-quoted. Environment
// variables are exported in the command prefix because OpenSSH refuses
// Setenv by default.
//
// Usage:
//
//	config, err := ssh.NewFromSSHConfig("build-box", "")
//	env, err := ssh.New(ssh.WithConfig(config))
package ssh
