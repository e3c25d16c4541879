// Package interacttest provides a contract test suite for interact providers.
//
// Contracts use POSIX shell scripts, so they run against any Spawner that can
// start "sh" (local on unix-likes, SSH hosts). They are skipped when it cannot.
package interacttest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ruffel/interact"
)

// Standard categories for grouping tests.
const (
	CategoryCore        = "core"
	CategoryInteractive = "interactive"
	CategoryLifecycle   = "lifecycle"
	CategoryErrors      = "errors"
)

// T is the minimal interface required for testify/assert and require.
type T interface {
	Errorf(format string, args ...any)
	FailNow()
	Skipf(format string, args ...any)
	Context() context.Context
	Name() string
}

// TestCase defines a single behavioral contract requirement.
type TestCase struct {
	Category    string
	Name        string
	Description string
	Prereq      func(t T, sp interact.Spawner) (ok bool, reason string)
	Run         func(t T, sp interact.Spawner)
}

// ID returns the stable, globally unique contract identifier.
func (tc TestCase) ID() string {
	return fmt.Sprintf("%s/%s", tc.Category, tc.Name)
}

// AllContracts returns all test cases for the contract test suite.
func AllContracts() []TestCase {
	const initialCapacity = 16

	contracts := make([]TestCase, 0, initialCapacity)

	contracts = append(contracts, coreContracts()...)
	contracts = append(contracts, interactiveContracts()...)
	contracts = append(contracts, lifecycleContracts()...)
	contracts = append(contracts, errorContracts()...)

	return contracts
}

// Verify is the standard Go test entry point for provider authors.
func Verify(t *testing.T, sp interact.Spawner) {
	t.Helper()

	for _, tc := range AllContracts() {
		t.Run(tc.ID(), func(t *testing.T) {
			if ok, reason := hasShell(t, sp); !ok {
				t.Skipf("prereq unmet: %s", reason)
			}

			if tc.Prereq != nil {
				ok, reason := tc.Prereq(t, sp)
				if !ok {
					t.Skipf("prereq unmet: %s", reason)
				}
			}

			tc.Run(t, sp)
		})
	}
}

// contractPoll keeps contract runs fast without busy spinning.
const contractPoll = 20 * time.Millisecond

func shell(script string) *interact.Command {
	return interact.NewCommand("sh", "-c", script)
}

func engine(sp interact.Spawner, opts ...interact.EngineOption) *interact.Engine {
	return interact.NewEngine(sp, append([]interact.EngineOption{interact.WithPollInterval(contractPoll)}, opts...)...)
}

func hasShell(t T, sp interact.Spawner) (bool, string) {
	sess, err := sp.Spawn(t.Context(), shell("exit 0"))
	if err != nil {
		return false, "cannot spawn sh: " + err.Error()
	}

	defer func() { _ = sess.Destroy() }()

	if _, err := waitExit(sess, 10*time.Second); err != nil {
		return false, err.Error()
	}

	return true, ""
}

// waitExit polls sess until it exits or limit elapses.
func waitExit(sess interact.Session, limit time.Duration) (interact.Status, error) {
	deadline := time.Now().Add(limit)

	for time.Now().Before(deadline) {
		st, err := sess.Poll(contractPoll)
		if err != nil {
			return st, err
		}

		if st.Exited() {
			return st, nil
		}
	}

	return interact.Running(), fmt.Errorf("process still running after %s", limit)
}
