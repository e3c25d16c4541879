package interacttest

import (
	"context"
	"sync"
	"time"

	"github.com/ruffel/interact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultLimit = 10 * time.Second

// mfaScript imitates the AWS CLI: prompt on stderr without newline, read the code, print a token.
const mfaScript = `printf 'Enter MFA code for arn:aws:iam::123:mfa/x ' >&2; read code; echo "tok-$code"`

// recorder answers every request with a fixed value and remembers what it saw.
type recorder struct {
	mu       sync.Mutex
	answer   string
	requests []string
	notes    []string
}

func (r *recorder) Request(_ context.Context, prompt string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, prompt)

	return r.answer, nil
}

func (r *recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notes = append(r.notes, message)
}

func interactiveContracts() []TestCase {
	return []TestCase{
		{
			Category:    CategoryInteractive,
			Name:        "stdin-roundtrip",
			Description: "WriteLine delivers a newline-terminated line to the process",
			Run: func(t T, sp interact.Spawner) {
				sess, err := sp.Spawn(t.Context(), shell(`read x; echo "got-$x"`))
				require.NoError(t, err)

				defer func() { _ = sess.Destroy() }()

				require.NoError(t, sess.WriteLine("abc"))

				st, err := waitExit(sess, defaultLimit)
				require.NoError(t, err)
				assert.Equal(t, 0, st.ExitCode)

				out, _ := sess.Stdout().Final()
				assert.Equal(t, "got-abc\n", out)
			},
		},
		{
			Category:    CategoryInteractive,
			Name:        "mfa-prompt-answered",
			Description: "An MFA prompt on stderr is forwarded to the prompter and answered on stdin",
			Run: func(t T, sp interact.Spawner) {
				p := &recorder{answer: "042517"}

				res := engine(sp).Run(t.Context(), shell(mfaScript), p)
				require.True(t, res.Success(), res.Message)
				assert.Equal(t, "tok-042517", res.Output)
				assert.Equal(t, []string{"Enter MFA code for arn:aws:iam::123:mfa/x "}, p.requests)
			},
		},
		{
			Category:    CategoryInteractive,
			Name:        "mfa-prompt-refused",
			Description: "An empty answer aborts the process and reports cancellation",
			Run: func(t T, sp interact.Spawner) {
				res := engine(sp).Run(t.Context(), shell(mfaScript), &recorder{})
				require.True(t, res.Cancelled())
				assert.Equal(t, interact.KindPromptRefused, interact.KindOf(res.Err))
			},
		},
		{
			Category:    CategoryInteractive,
			Name:        "device-code-notified",
			Description: "An SSO device code on stdout is reported without blocking",
			Run: func(t T, sp interact.Spawner) {
				p := &recorder{}
				script := `printf 'Then enter the code:\n\nABCD-EFGH\n'; sleep 1; echo done`

				res := engine(sp).Run(t.Context(), shell(script), p)
				require.True(t, res.Success(), res.Message)
				assert.Equal(t, "done", res.Output)
				require.Len(t, p.notes, 1)
				assert.Contains(t, p.notes[0], "ABCD-EFGH")
			},
		},
	}
}
