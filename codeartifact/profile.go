package codeartifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
)

// ProfileInfo summarizes one profile of the shared AWS configuration.
type ProfileInfo struct {
	Name    string
	Region  string
	SSO     bool   // Credentials come from IAM Identity Center
	MFA     bool   // An MFA serial is configured, so the CLI will ask for a code
	RoleARN string // Assumed role, if any
}

// SharedFiles overrides the locations of the shared AWS files.
// Empty fields keep the SDK defaults, which honor AWS_CONFIG_FILE and
// AWS_SHARED_CREDENTIALS_FILE.
type SharedFiles struct {
	Config      string
	Credentials string
}

// InspectProfile reads profile from the shared config and credentials files.
// Missing files are treated as empty. A profile that exists nowhere is
// reported as found=false without error.
func InspectProfile(ctx context.Context, profile string, files SharedFiles) (info ProfileInfo, found bool, err error) {
	if profile == "" {
		profile = DefaultProfile
	}

	shared, err := config.LoadSharedConfigProfile(ctx, profile, func(o *config.LoadSharedConfigOptions) {
		if files.Config != "" {
			o.ConfigFiles = []string{files.Config}
		}

		if files.Credentials != "" {
			o.CredentialsFiles = []string{files.Credentials}
		}
	})
	if err != nil {
		var notExist config.SharedConfigProfileNotExistError
		if errors.As(err, &notExist) {
			return ProfileInfo{Name: profile}, false, nil
		}

		return ProfileInfo{}, false, fmt.Errorf("cannot read aws profile %q: %w", profile, err)
	}

	return ProfileInfo{
		Name:    profile,
		Region:  shared.Region,
		SSO:     usesSSO(&shared),
		MFA:     shared.MFASerial != "",
		RoleARN: shared.RoleARN,
	}, true, nil
}

// usesSSO reports whether profile or a profile on its source_profile chain
// takes credentials from IAM Identity Center. The SDK rejects cyclic chains,
// the visited set only bounds the walk.
func usesSSO(profile *config.SharedConfig) bool {
	visited := map[*config.SharedConfig]bool{}

	for p := profile; p != nil && !visited[p]; p = p.Source {
		if p.SSOSessionName != "" || p.SSOStartURL != "" {
			return true
		}

		visited[p] = true
	}

	return false
}
