// Command catoken fetches AWS CodeArtifact authorization tokens and stores
// them in the Maven settings file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	code := execute(ctx, newRootCmd())

	stop()
	os.Exit(code)
}

// execute runs cmd and reports its error on the command's error stream.
func execute(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("Error: "+err.Error()))

		return 1
	}

	return 0
}
