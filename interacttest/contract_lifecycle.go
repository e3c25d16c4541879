package interacttest

import (
	"context"
	"time"

	"github.com/ruffel/interact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lifecycleContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryLifecycle,
			Name:        "destroy-idempotent",
			Description: "Destroy terminates a running process and can be repeated",
			Run: func(t T, sp interact.Spawner) {
				sess, err := sp.Spawn(t.Context(), shell("sleep 30"))
				require.NoError(t, err)

				st, err := sess.Poll(contractPoll)
				require.NoError(t, err)
				assert.False(t, st.Exited())

				require.NoError(t, sess.Destroy())
				require.NoError(t, sess.Destroy())

				st, err = waitExit(sess, defaultLimit)
				require.NoError(t, err)
				assert.True(t, st.Exited())
			},
		},
		{
			Category:    CategoryLifecycle,
			Name:        "destroy-after-exit",
			Description: "Destroy after a natural exit is a no-op",
			Run: func(t T, sp interact.Spawner) {
				sess, err := sp.Spawn(t.Context(), shell("exit 0"))
				require.NoError(t, err)

				_, err = waitExit(sess, defaultLimit)
				require.NoError(t, err)
				require.NoError(t, sess.Destroy())
			},
		},
		{
			Category:    CategoryLifecycle,
			Name:        "cancel-running",
			Description: "Cancelling the context stops a running command on the next tick",
			Run: func(t T, sp interact.Spawner) {
				ctx, cancel := context.WithCancel(t.Context())
				defer cancel()

				time.AfterFunc(200*time.Millisecond, cancel)

				start := time.Now()
				res := engine(sp).Run(ctx, shell("sleep 30"), nil)

				require.True(t, res.Cancelled())
				assert.Equal(t, interact.KindCancelled, interact.KindOf(res.Err))
				assert.Less(t, time.Since(start), 10*time.Second)
			},
		},
	}
}
