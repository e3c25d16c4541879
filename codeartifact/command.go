package codeartifact

import (
	"fmt"
	"strconv"

	"github.com/ruffel/interact"
)

// TokenCommand returns the command printing the authorization token of target.
//
// With a vault wrapper and a named profile the CLI runs as
// "<vault> exec <profile> -- <cli> ...", and the wrapper provides the credentials.
func TokenCommand(tooling Tooling, target Target) (*interact.Command, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	cli, err := interact.ParseCommand(tooling.cliPath())
	if err != nil {
		return nil, fmt.Errorf("invalid aws cli path: %w", err)
	}

	profile := target.NamedProfile()
	wrapped := tooling.VaultPath != "" && profile != ""

	b := interact.From(cli)

	if wrapped {
		vault, err := interact.ParseCommand(tooling.VaultPath)
		if err != nil {
			return nil, fmt.Errorf("invalid vault path: %w", err)
		}

		b = interact.From(vault).Args("exec", profile, "--", cli.Cmd).Args(cli.Args...)
	}

	b.Args("codeartifact", "get-authorization-token").
		FlagIf(profile != "" && !wrapped, "--profile", profile).
		FlagIf(target.Region != "", "--region", target.Region)

	if target.Duration > 0 {
		b.Flag("--duration-seconds", strconv.Itoa(int(target.Duration.Seconds())))
	}

	return b.Flag("--domain", target.Domain).
		Flag("--domain-owner", target.DomainOwner).
		Flag("--query", "authorizationToken").
		Flag("--output", "text").
		Build(), nil
}

// LoginCommand returns the command that renews the SSO session of the target profile.
func LoginCommand(tooling Tooling, target Target) (*interact.Command, error) {
	cli, err := interact.ParseCommand(tooling.cliPath())
	if err != nil {
		return nil, fmt.Errorf("invalid aws cli path: %w", err)
	}

	profile := target.NamedProfile()

	return interact.From(cli).
		Args("sso", "login").
		FlagIf(profile != "", "--profile", profile).
		Build(), nil
}
