package mock

import (
	"context"
	"testing"
	"time"

	"github.com/ruffel/interact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMockSpawner(t *testing.T) {
	t.Parallel()

	sp := New()
	ctx := context.Background()
	sess := NewSession()

	sp.On("Spawn", ctx, mock.AnythingOfType("*interact.Command")).Return(sess, nil).Once()
	sp.On("Spawn", ctx, mock.Anything).Return(nil, assert.AnError).Once()

	got, err := sp.Spawn(ctx, interact.NewCommand("echo"))
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = sp.Spawn(ctx, interact.NewCommand("echo"))
	require.ErrorIs(t, err, assert.AnError)

	sp.AssertExpectations(t)
}

func TestMockSession_Emit(t *testing.T) {
	t.Parallel()

	sess := NewSession()
	sess.On("Poll", time.Second).Run(Emit(sess.Err, "prompt ")).Return(interact.Running(), nil).Once()
	sess.On("Poll", time.Second).Run(Emit(sess.Out, "tok")).Return(interact.Exited(0), nil).Once()

	st, err := sess.Poll(time.Second)
	require.NoError(t, err)
	assert.False(t, st.Exited())
	assert.Equal(t, "prompt ", sess.Stderr().Snapshot())

	st, err = sess.Poll(time.Second)
	require.NoError(t, err)
	assert.True(t, st.Exited())

	out, ok := sess.Stdout().Final()
	require.True(t, ok)
	assert.Equal(t, "tok", out)

	sess.AssertExpectations(t)
}

func TestStream_Take(t *testing.T) {
	t.Parallel()

	s := &Stream{}
	s.Write("abc")

	_, ok := s.Take(func(string) (string, bool) { return "", false })
	require.False(t, ok)
	assert.Equal(t, "abc", s.Snapshot())

	got, ok := s.Take(func(text string) (string, bool) { return text, true })
	require.True(t, ok)
	assert.Equal(t, "abc", got)
	assert.Empty(t, s.Snapshot())

	_, ok = s.Final()
	assert.False(t, ok)
}

func TestMockPolicy(t *testing.T) {
	t.Parallel()

	p := &Policy{}
	login := interact.NewCommand("aws", "sso", "login")

	p.On("LoginCommand", "expired").Return(login, true)
	p.On("LoginCommand", mock.Anything).Return(nil, false)
	p.On("Remediate", "x").Return("x!")

	got, ok := p.LoginCommand("expired")
	require.True(t, ok)
	assert.Same(t, login, got)

	got, ok = p.LoginCommand("other")
	assert.False(t, ok)
	assert.Nil(t, got)

	assert.Equal(t, "x!", p.Remediate("x"))
}
