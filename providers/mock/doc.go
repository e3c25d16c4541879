// Package mock provides controllable implementations of the interact
// interfaces for testing purposes.
//
// Spawner, Session, Prompter and Policy are testify mocks. Session streams are
// plain scripted buffers that expectations fill through Emit, so a test can
// play back exactly what a process would print between two polls.
//
// Usage:
//
//	sess := mock.NewSession()
//	sess.On("Poll", mock.Anything).Run(mock.Emit(sess.Out, "tok")).Return(interact.Exited(0), nil)
//	sess.On("Destroy").Return(nil)
//	sp := mock.New()
//	sp.On("Spawn", mock.Anything, mock.Anything).Return(sess, nil)
package mock
