package interacttest

import (
	"github.com/ruffel/interact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coreExitCode = 13

func coreContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryCore,
			Name:        "stdout-trimmed",
			Description: "Exit 0 with output yields Success with trimmed stdout",
			Run: func(t T, sp interact.Spawner) {
				res := engine(sp).Run(t.Context(), shell(`printf 'tok-123\n'`), nil)
				require.True(t, res.Success(), res.Message)
				assert.Equal(t, "tok-123", res.Output)
				assert.Equal(t, 1, res.Attempts)
			},
		},
		{
			Category:    CategoryCore,
			Name:        "nonzero-exit-stderr",
			Description: "Nonzero exit surfaces trimmed stderr and the exit code",
			Run: func(t T, sp interact.Spawner) {
				res := engine(sp).Run(t.Context(), shell(`echo "  boom  " >&2; exit 13`), nil)
				require.True(t, res.Failed())
				assert.Equal(t, "boom", res.Message)

				var opErr *interact.OperationError
				require.ErrorAs(t, res.Err, &opErr)
				assert.Equal(t, interact.KindUnrecoverable, opErr.Kind)
				assert.Equal(t, coreExitCode, opErr.ExitCode)
			},
		},
		{
			Category:    CategoryCore,
			Name:        "streams-independent",
			Description: "stdout and stderr are captured separately",
			Run: func(t T, sp interact.Spawner) {
				sess, err := sp.Spawn(t.Context(), shell(`echo out; echo err >&2`))
				require.NoError(t, err)

				defer func() { _ = sess.Destroy() }()

				st, err := waitExit(sess, defaultLimit)
				require.NoError(t, err)
				assert.Equal(t, 0, st.ExitCode)

				out, ok := sess.Stdout().Final()
				require.True(t, ok)
				assert.Equal(t, "out\n", out)

				errText, ok := sess.Stderr().Final()
				require.True(t, ok)
				assert.Equal(t, "err\n", errText)
			},
		},
	}
}
