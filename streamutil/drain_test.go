package streamutil

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true

		return copy(p, "partial"), nil
	}

	return 0, errors.New("device gone")
}

func waitDone(t *testing.T, d *Drain) {
	t.Helper()

	select {
	case <-d.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("drain did not finish")
	}
}

func TestDrain_Final(t *testing.T) {
	t.Parallel()

	d := Start(strings.NewReader("hello\nworld\n"))

	out, ok := d.Final()
	require.True(t, ok)
	assert.Equal(t, "hello\nworld\n", out)
}

func TestDrain_Empty(t *testing.T) {
	t.Parallel()

	out, ok := Start(strings.NewReader("")).Final()
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestDrain_LargeInput(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("x", 3*chunkSize+17)

	out, _ := Start(strings.NewReader(input)).Final()
	assert.Len(t, out, len(input))
}

func TestDrain_ReadError(t *testing.T) {
	t.Parallel()

	out, ok := Start(&failingReader{}).Final()
	require.True(t, ok)
	assert.Equal(t, ReadErrorText, out)
}

func TestDrain_ClosedPipeIsEOF(t *testing.T) {
	t.Parallel()

	r, w := io.Pipe()
	d := Start(r)

	_, err := io.WriteString(w, "abc")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, _ := d.Final()
	assert.Equal(t, "abc", out)
}

func TestDrain_SnapshotAndReset(t *testing.T) {
	t.Parallel()

	r, w := io.Pipe()
	d := Start(r)

	_, err := io.WriteString(w, "first ")
	require.NoError(t, err)

	// io.Pipe writes return once the reader consumed the bytes.
	assert.Eventually(t, func() bool { return d.Snapshot() == "first " }, time.Second, time.Millisecond)

	d.Reset()
	assert.Empty(t, d.Snapshot())

	_, err = io.WriteString(w, "second")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	waitDone(t, d)
	assert.Equal(t, "second", d.Snapshot())
}

func TestDrain_Take(t *testing.T) {
	t.Parallel()

	r, w := io.Pipe()
	d := Start(r)

	_, err := io.WriteString(w, "Enter code ")
	require.NoError(t, err)

	match := func(text string) (string, bool) {
		if strings.HasSuffix(text, "code ") {
			return text, true
		}

		return "", false
	}

	assert.Eventually(t, func() bool {
		got, ok := d.Take(match)

		return ok && got == "Enter code "
	}, time.Second, time.Millisecond)

	// Consumed: the same prompt is not seen twice.
	_, ok := d.Take(match)
	assert.False(t, ok)

	require.NoError(t, w.Close())
	waitDone(t, d)
}
