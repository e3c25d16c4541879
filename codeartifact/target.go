// Package codeartifact builds the AWS CLI invocations that fetch CodeArtifact
// authorization tokens, and knows how to recover from an expired SSO session.
//
// Commands are assembled as discrete tokens with interact.Builder. Nothing here
// runs a process: Engine does that.
package codeartifact

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultProfile is the implicit AWS profile. It is never passed with --profile
	// so environment-level credential chains keep working.
	DefaultProfile = "default"

	// DefaultCLIPath is the AWS CLI executable looked up in PATH.
	DefaultCLIPath = "aws"

	// MinDuration and MaxDuration bound the token lifetime accepted by CodeArtifact.
	MinDuration = 15 * time.Minute
	MaxDuration = 12 * time.Hour
)

// ValidRegions lists the regions where CodeArtifact is available.
var ValidRegions = []string{
	"ap-northeast-1",
	"ap-south-1",
	"ap-southeast-1",
	"ap-southeast-2",
	"eu-central-1",
	"eu-north-1",
	"eu-south-1",
	"eu-west-1",
	"eu-west-2",
	"eu-west-3",
	"us-east-1",
	"us-east-2",
	"us-west-2",
}

// Target identifies one CodeArtifact repository domain and the credentials used to reach it.
type Target struct {
	Domain      string
	DomainOwner string        // AWS account id owning the domain
	Region      string        // Empty uses the region of the profile
	Profile     string        // Empty or DefaultProfile uses the default credential chain
	Duration    time.Duration // Token lifetime, 0 keeps the service default
}

// Validate checks that the target can be turned into a command.
func (t Target) Validate() error {
	if strings.TrimSpace(t.Domain) == "" {
		return errors.New("codeartifact domain is required")
	}

	if strings.TrimSpace(t.DomainOwner) == "" {
		return errors.New("codeartifact domain owner is required")
	}

	if t.Region != "" && !slices.Contains(ValidRegions, t.Region) {
		return fmt.Errorf("region %q is not a valid codeartifact region", t.Region)
	}

	if t.Duration != 0 && (t.Duration < MinDuration || t.Duration > MaxDuration) {
		return fmt.Errorf("token duration %s outside [%s, %s]", t.Duration, MinDuration, MaxDuration)
	}

	return nil
}

// NamedProfile returns the explicit profile, or "" for the default one.
func (t Target) NamedProfile() string {
	p := strings.TrimSpace(t.Profile)
	if p == DefaultProfile {
		return ""
	}

	return p
}

// Tooling locates the executables on the spawning host.
type Tooling struct {
	CLIPath   string // AWS CLI, may carry extra arguments (e.g. "aws --no-cli-pager")
	VaultPath string // Optional aws-vault style wrapper
}

func (t Tooling) cliPath() string {
	if strings.TrimSpace(t.CLIPath) == "" {
		return DefaultCLIPath
	}

	return t.CLIPath
}
