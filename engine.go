package interact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruffel/interact/prompt"
)

// Engine runs one logical credential fetch per Run call, answering prompts on
// the way and applying the configured RecoveryPolicy once.
type Engine struct {
	spawner Spawner
	cfg     EngineConfig
}

// NewEngine creates a new Engine that starts processes with spawner.
func NewEngine(spawner Spawner, opts ...EngineOption) *Engine {
	cfg := defaultEngineConfig()

	for _, o := range opts {
		o(&cfg)
	}

	return &Engine{spawner: spawner, cfg: cfg}
}

// attempt is the bookkeeping of one Run call.
type attempt struct {
	prompter Prompter
	spawned  int
}

// Run executes cmd to completion.
//
// Run never returns a nil Result and never panics: every fault is reported as
// OutcomeFailure. Cancellation of ctx destroys the running process and yields
// OutcomeCancelled, even when the process exited during the same tick.
func (e *Engine) Run(ctx context.Context, cmd *Command, prompter Prompter) (res *Result) {
	start := time.Now()
	at := &attempt{prompter: prompter}

	defer func() {
		if r := recover(); r != nil {
			err := newError(KindInternal, cmd, fmt.Sprintf("internal error: %v", r), nil)
			e.cfg.Logger.Error("invocation panicked", "command", cmd.String(), "panic", r)
			res = e.result(err, "", at)
		}

		res.Attempts = at.spawned
		res.Duration = time.Since(start)
	}()

	if at.prompter == nil {
		at.prompter = PrompterFunc(func(context.Context, string) (string, error) {
			return "", ErrPromptRefused
		})
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	output, err := e.execute(ctx, cmd, at, true)
	if err == nil {
		return e.result(nil, output, at)
	}

	login, ok := e.recoverable(err)
	if !ok {
		return e.result(e.remediate(err), "", at)
	}

	e.cfg.Logger.Warn("login session expired, running login command",
		"command", cmd.String(), "login", login.String())
	at.prompter.Notify("Login session expired, running " + login.String())

	if _, loginErr := e.execute(ctx, login, at, false); loginErr != nil {
		e.cfg.Logger.Warn("login command failed", "login", login.String(), "error", loginErr)
		return e.result(loginFailure(login, loginErr), "", at)
	}

	// The retry is final: a second failure is surfaced without further recovery.
	output, err = e.execute(ctx, cmd, at, true)
	if err != nil {
		return e.result(e.remediate(err), "", at)
	}

	return e.result(nil, output, at)
}

// recoverable classifies err as a session expiry when the policy knows a login for it.
func (e *Engine) recoverable(err error) (*Command, bool) {
	if e.cfg.Recovery == nil {
		return nil, false
	}

	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Kind != KindUnrecoverable {
		return nil, false
	}

	login, ok := e.cfg.Recovery.LoginCommand(opErr.Message)
	if !ok || login == nil {
		return nil, false
	}

	opErr.Kind = KindSessionExpired

	return login, true
}

// remediate applies the cosmetic hint of the policy to unrecoverable failures.
func (e *Engine) remediate(err error) error {
	var opErr *OperationError
	if e.cfg.Recovery == nil || !errors.As(err, &opErr) {
		return err
	}

	if opErr.Kind != KindUnrecoverable && opErr.Kind != KindSessionExpired {
		return err
	}

	hinted := *opErr
	hinted.Message = e.cfg.Recovery.Remediate(opErr.Message)

	return &hinted
}

func loginFailure(login *Command, err error) error {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Kind == KindCancelled || opErr.Kind == KindPromptRefused {
			return opErr
		}

		return &OperationError{
			Kind:     opErr.Kind,
			Command:  login,
			ExitCode: opErr.ExitCode,
			Message:  "login failed: " + opErr.Message,
			Err:      opErr,
		}
	}

	return newError(KindInternal, login, "login failed: "+err.Error(), err)
}

func (e *Engine) result(err error, output string, at *attempt) *Result {
	if err == nil {
		return &Result{Outcome: OutcomeSuccess, Output: output, Attempts: at.spawned}
	}

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		opErr = newError(KindInternal, nil, err.Error(), err)
	}

	outcome := OutcomeFailure
	if opErr.Kind == KindCancelled || opErr.Kind == KindPromptRefused {
		outcome = OutcomeCancelled
	}

	msg := opErr.Message
	if msg == "" {
		msg = opErr.Error()
	}

	return &Result{Outcome: outcome, Message: msg, Err: opErr, Attempts: at.spawned}
}

// execute runs a single process through the poll loop.
// When requireOutput is set, an exit 0 without stdout is a KindNoOutput failure.
func (e *Engine) execute(ctx context.Context, cmd *Command, at *attempt, requireOutput bool) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", newError(KindSpawnFailed, cmd, err.Error(), err)
	}

	if err := ctx.Err(); err != nil {
		return "", cancelled(cmd, err)
	}

	log := e.cfg.Logger.With("command", cmd.String())
	log.Debug("spawning command")

	at.spawned++

	sess, err := e.spawner.Spawn(ctx, cmd)
	if err != nil {
		log.Debug("spawn failed", "error", err)

		var opErr *OperationError
		if errors.As(err, &opErr) {
			return "", opErr
		}

		return "", newError(KindSpawnFailed, cmd, "cannot start "+cmd.Cmd+": "+err.Error(), err)
	}

	defer func() { _ = sess.Destroy() }()

	status, err := e.loop(ctx, cmd, sess, at, log)
	if err != nil {
		return "", err
	}

	log.Debug("command exited", "exitCode", status.ExitCode)

	if status.ExitCode == 0 {
		out, ok := sess.Stdout().Final()
		out = strings.TrimSpace(out)

		if requireOutput && (!ok || out == "") {
			return "", newError(KindNoOutput, cmd, "no output collected from command", nil)
		}

		return out, nil
	}

	msg, ok := sess.Stderr().Final()
	msg = strings.TrimSpace(msg)

	if !ok || msg == "" {
		msg = fmt.Sprintf("command failed with exit code %d without additional information", status.ExitCode)
	}

	opErr := newError(KindUnrecoverable, cmd, msg, nil)
	opErr.ExitCode = status.ExitCode

	return "", opErr
}

// loop polls sess until it exits, answering prompts in between.
func (e *Engine) loop(ctx context.Context, cmd *Command, sess Session, at *attempt, log *slog.Logger) (Status, error) {
	detector := e.cfg.Detector

	for {
		if err := ctx.Err(); err != nil {
			_ = sess.Destroy()
			log.Info("command cancelled")

			return Status{}, cancelled(cmd, err)
		}

		status, err := sess.Poll(e.cfg.PollInterval)
		if err != nil {
			_ = sess.Destroy()

			return Status{}, newError(KindInternal, cmd, "error waiting for command: "+err.Error(), err)
		}

		if status.Exited() {
			// Cancellation requested in the same instant as exit wins.
			if err := ctx.Err(); err != nil {
				log.Info("command cancelled")

				return Status{}, cancelled(cmd, err)
			}

			return status, nil
		}

		switch p := pending(detector, sess); p.Kind {
		case prompt.KindMFA:
			log.Info("mfa code requested")

			answer, err := at.prompter.Request(ctx, p.Text)
			if err != nil || answer == "" {
				_ = sess.Destroy()

				return Status{}, refused(cmd, err)
			}

			if err := sess.WriteLine(answer); err != nil {
				_ = sess.Destroy()

				return Status{}, newError(KindInternal, cmd, "cannot send mfa code: "+err.Error(), err)
			}
		case prompt.KindDeviceCode:
			log.Info("sso device code announced", "code", p.Text)
			at.prompter.Notify("SSO authorization requested, verification code: " + p.Text)
		case prompt.KindNone:
		}
	}
}

// pending consumes at most one prompt from the session streams.
// An MFA request on stderr takes precedence over a device code on stdout.
func pending(d *prompt.Detector, sess Session) prompt.Prompt {
	if request, ok := sess.Stderr().Take(d.MFARequest); ok {
		return prompt.MFA(request)
	}

	if code, ok := sess.Stdout().Take(d.DeviceCode); ok {
		return prompt.DeviceCode(code)
	}

	return prompt.None
}

func cancelled(cmd *Command, cause error) *OperationError {
	msg := "operation cancelled"
	if errors.Is(cause, context.DeadlineExceeded) {
		msg = "operation timed out"
	}

	return newError(KindCancelled, cmd, msg, cause)
}

func refused(cmd *Command, cause error) *OperationError {
	if cause == nil || errors.Is(cause, ErrPromptRefused) {
		return newError(KindPromptRefused, cmd, "no MFA code provided", ErrPromptRefused)
	}

	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return cancelled(cmd, cause)
	}

	return newError(KindInternal, cmd, "cannot obtain MFA code: "+cause.Error(), cause)
}
