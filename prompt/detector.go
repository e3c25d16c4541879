// Package prompt recognizes interactive prompts inside captured process output.
//
// Detection runs on the whole accumulated text of a stream, not on lines: CLI
// tools write prompts without a trailing newline and do not flush in discrete
// lines. Callers clear the stream right after a match so the same prompt is
// never answered twice.
package prompt

import (
	"regexp"
)

// Kind tags a Prompt.
type Kind int

const (
	// KindNone means nothing is pending.
	KindNone Kind = iota
	// KindMFA is a blocking request for a multi-factor authentication code.
	KindMFA
	// KindDeviceCode is an informational SSO device verification code.
	KindDeviceCode
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMFA:
		return "mfa"
	case KindDeviceCode:
		return "device-code"
	default:
		return "unknown"
	}
}

// Prompt is a transient detection result. It lives for one poll iteration.
type Prompt struct {
	Kind Kind
	Text string // Phrase to show for KindMFA, the code for KindDeviceCode
}

// None is the empty Prompt.
var None = Prompt{Kind: KindNone}

// MFA returns an MFA request Prompt.
func MFA(text string) Prompt {
	return Prompt{Kind: KindMFA, Text: text}
}

// DeviceCode returns an SSO device code Prompt.
func DeviceCode(code string) Prompt {
	return Prompt{Kind: KindDeviceCode, Text: code}
}

// Pending reports whether p carries a prompt.
func (p Prompt) Pending() bool {
	return p.Kind != KindNone
}

// Detector holds the patterns for one wrapped CLI.
//
// MFA must be anchored to the end of the text. DevicePattern must expose the
// code as its first capture group.
type Detector struct {
	MFA           *regexp.Regexp
	DevicePattern *regexp.Regexp
}

var (
	awsMFA        = regexp.MustCompile(`Enter MFA code for \S+\s$`)
	awsDeviceCode = regexp.MustCompile(`(?i)enter the code:\s*([A-Z0-9]{4}-[A-Z0-9]{4})`)
	mfaCode       = regexp.MustCompile(`^\d{6,}$`)
)

// Default returns the detector for the AWS CLI.
func Default() *Detector {
	return &Detector{
		MFA:           awsMFA,
		DevicePattern: awsDeviceCode,
	}
}

// MFARequest returns the prompt phrase when text ends with an MFA code request.
// A phrase followed by anything else does not match.
func (d *Detector) MFARequest(text string) (string, bool) {
	if d == nil || d.MFA == nil {
		return "", false
	}

	loc := d.MFA.FindStringIndex(text)
	if loc == nil || loc[1] != len(text) {
		return "", false
	}

	return text[loc[0]:loc[1]], true
}

// DeviceCode returns the device verification code announced in text.
func (d *Detector) DeviceCode(text string) (string, bool) {
	if d == nil || d.DevicePattern == nil {
		return "", false
	}

	m := d.DevicePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}

	return m[1], true
}

// ValidMFACode reports whether code looks like an MFA token: six or more digits.
func ValidMFACode(code string) bool {
	return mfaCode.MatchString(code)
}
