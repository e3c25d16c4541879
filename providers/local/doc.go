// Package local provides an implementation of the interact.Spawner interface
// for the local operating system.
//
// Every session runs in its own process group so Destroy also reaches helper
// processes started by the wrapped CLI. stdout and stderr are copied through
// io.Pipe into streamutil drains; the pipes are closed only after the process
// has been reaped, so Final always observes every byte.
//
// Usage:
//
//	env := local.New()
//	engine := interact.NewEngine(env)
//	res := engine.Run(ctx, interact.NewCommand("aws", "sts", "get-caller-identity"), prompter)
//	_ = res
package local
