package codeartifact

import (
	"strings"

	"github.com/ruffel/interact"
)

var _ interact.RecoveryPolicy = (*Recovery)(nil)

// expiredSignatures are the AWS CLI messages of a missing or stale SSO token.
var expiredSignatures = []string{
	"Error loading SSO Token",
	"Error when retrieving token from sso",
	"The SSO session associated with this profile has expired",
	"Token has expired and refresh failed",
}

// Recovery runs "aws sso login" when a token request fails on an expired SSO session.
type Recovery struct {
	Tooling Tooling
	Target  Target
}

// NewRecovery creates the policy for target.
func NewRecovery(tooling Tooling, target Target) *Recovery {
	return &Recovery{Tooling: tooling, Target: target}
}

// SessionExpired reports whether failure is one of the SSO expiry messages.
func SessionExpired(failure string) bool {
	for _, sig := range expiredSignatures {
		if strings.Contains(failure, sig) {
			return true
		}
	}

	return false
}

// LoginCommand returns the SSO login command when failure is an SSO expiry.
func (r *Recovery) LoginCommand(failure string) (*interact.Command, bool) {
	if !SessionExpired(failure) {
		return nil, false
	}

	login, err := LoginCommand(r.Tooling, r.Target)
	if err != nil {
		return nil, false
	}

	return login, true
}

// Remediate suggests configuring the named profile when the CLI complains about it.
func (r *Recovery) Remediate(failure string) string {
	profile := r.Target.NamedProfile()
	if profile == "" || !strings.Contains(failure, "aws configure") {
		return failure
	}

	return failure + "\n\n You could also consider \"aws configure --profile " + profile + "\""
}
