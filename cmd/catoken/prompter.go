package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ruffel/interact"
	"github.com/ruffel/interact/prompt"
	"golang.org/x/term"
)

var _ interact.Prompter = (*terminalPrompter)(nil)

// terminalPrompter asks the operator for MFA codes on the controlling terminal.
type terminalPrompter struct {
	out  io.Writer
	read func() (string, error) // Reads one answer without echo
}

func newTerminalPrompter(out io.Writer) *terminalPrompter {
	fd := int(os.Stdin.Fd())

	return &terminalPrompter{
		out: out,
		read: func() (string, error) {
			if !term.IsTerminal(fd) {
				return "", errors.New("no terminal available for interactive MFA prompt")
			}

			b, err := term.ReadPassword(fd)

			return string(b), err
		},
	}
}

// Request re-asks until the answer looks like an MFA code. An empty answer refuses.
func (p *terminalPrompter) Request(ctx context.Context, text string) (string, error) {
	for {
		_, _ = fmt.Fprint(p.out, promptStyle.Render(strings.TrimSpace(text))+" ")

		code, err := p.readContext(ctx)
		_, _ = fmt.Fprintln(p.out)

		if err != nil {
			return "", err
		}

		code = strings.TrimSpace(code)

		switch {
		case code == "":
			return "", interact.ErrPromptRefused
		case prompt.ValidMFACode(code):
			return code, nil
		}

		_, _ = fmt.Fprintln(p.out, warnStyle.Render("An MFA code has at least six digits, try again or press enter to abort."))
	}
}

// Notify prints progress such as SSO device codes.
func (p *terminalPrompter) Notify(message string) {
	_, _ = fmt.Fprintln(p.out, infoStyle.Render(message))
}

// readContext lets cancellation interrupt a pending terminal read.
// The read goroutine is abandoned in that case and ends with the process.
func (p *terminalPrompter) readContext(ctx context.Context) (string, error) {
	type answer struct {
		text string
		err  error
	}

	done := make(chan answer, 1)

	go func() {
		text, err := p.read()
		done <- answer{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-done:
		if a.err != nil {
			return "", fmt.Errorf("reading MFA code: %w", a.err)
		}

		return a.text, nil
	}
}
