package interacttest

import (
	"github.com/ruffel/interact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryErrors,
			Name:        "no-output-is-failure",
			Description: "Exit 0 without stdout is reported as a failure",
			Run: func(t T, sp interact.Spawner) {
				res := engine(sp).Run(t.Context(), shell("exit 0"), nil)
				require.True(t, res.Failed())
				assert.Equal(t, interact.KindNoOutput, interact.KindOf(res.Err))
			},
		},
		{
			Category:    CategoryErrors,
			Name:        "whitespace-output-is-failure",
			Description: "Exit 0 with only whitespace on stdout is reported as a failure",
			Run: func(t T, sp interact.Spawner) {
				res := engine(sp).Run(t.Context(), shell(`printf '\n  \n'`), nil)
				require.True(t, res.Failed())
				assert.Equal(t, interact.KindNoOutput, interact.KindOf(res.Err))
			},
		},
		{
			Category:    CategoryErrors,
			Name:        "silent-failure-message",
			Description: "A nonzero exit without stderr still carries a message",
			Run: func(t T, sp interact.Spawner) {
				res := engine(sp).Run(t.Context(), shell("exit 3"), nil)
				require.True(t, res.Failed())
				assert.Contains(t, res.Message, "exit code 3")
			},
		},
	}
}
