package main

import (
	"errors"
	"fmt"

	"github.com/ruffel/interact/config"
	"github.com/ruffel/interact/maven"
	"github.com/spf13/cobra"
)

func newTokenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "token [name]",
		Short: "Print the token of one configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}

			selected, err := a.file.Select(args, false)
			if err != nil {
				return err
			}

			if err := a.connect(); err != nil {
				return err
			}
			defer a.shutdown()

			named := selected[0]

			res, err := a.fetch(cmd.Context(), named)
			if err != nil {
				return err
			}

			if !res.Success() {
				return resultError(named.Name, res)
			}

			_, _ = fmt.Fprintln(a.out, res.Output)

			return nil
		},
	}
}

func newRefreshCmd(opts *options) *cobra.Command {
	var all, create bool

	refreshCmd := &cobra.Command{
		Use:   "refresh [names...]",
		Short: "Fetch tokens and store them in the Maven settings file",
		Long: `Fetches a token for each selected configuration and writes it as the password of
its Maven server. Without names, the current configuration is refreshed, or every
enabled one with --all or generate_for_all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}

			selected, err := a.file.Select(args, all)
			if err != nil {
				return err
			}

			settingsPath, err := a.file.MavenSettingsPath()
			if err != nil {
				return err
			}

			settings := maven.Open(settingsPath)

			if err := a.connect(); err != nil {
				return err
			}
			defer a.shutdown()

			_, _ = fmt.Fprintln(a.out, titleStyle.Render("Refreshing CodeArtifact tokens into "+settings.Path()))

			var errs []error

			for _, named := range selected {
				if err := a.refresh(cmd, settings, named, create); err != nil {
					_, _ = fmt.Fprintln(a.out, errorStyle.Render("✗ "+err.Error()))
					errs = append(errs, err)

					if cmd.Context().Err() != nil {
						break
					}

					continue
				}

				_, _ = fmt.Fprintln(a.out, checkStyle.Render("✓ "+named.Name+" → "+named.MavenServerID))
			}

			return errors.Join(errs...)
		},
	}

	refreshCmd.Flags().BoolVar(&all, "all", false, "Refresh every enabled configuration")
	refreshCmd.Flags().BoolVar(&create, "create", false, `Add missing Maven servers with username "aws"`)

	return refreshCmd
}

// refresh locates the Maven server before asking for a token, so a
// misconfigured entry fails without prompting the operator.
func (a *app) refresh(cmd *cobra.Command, settings *maven.Settings, named config.Named, create bool) error {
	if named.MavenServerID == "" {
		return fmt.Errorf("%s: no maven_server_id configured", named.Name)
	}

	handle, err := settings.Locate(named.MavenServerID)

	missing := create && errors.Is(err, maven.ErrServerNotFound)
	if err != nil && !missing {
		return fmt.Errorf("%s: %w", named.Name, err)
	}

	res, err := a.fetch(cmd.Context(), named)
	if err != nil {
		return err
	}

	if !res.Success() {
		return resultError(named.Name, res)
	}

	if missing {
		err = settings.AddServer(named.MavenServerID, serverUsername, res.Output)
	} else {
		err = settings.SetSecret(handle, res.Output)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", named.Name, err)
	}

	a.logger.Debug("token stored", "configuration", named.Name, "server", named.MavenServerID)

	return nil
}

// serverUsername is the username CodeArtifact expects next to the token.
const serverUsername = "aws"

func newServersCmd(opts *options) *cobra.Command {
	var username string

	serversCmd := &cobra.Command{
		Use:   "servers",
		Short: "List Maven server ids that hold CodeArtifact credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}

			settingsPath, err := a.file.MavenSettingsPath()
			if err != nil {
				return err
			}

			ids, err := maven.Open(settingsPath).ServerIDs(username)
			if err != nil {
				return err
			}

			for _, id := range ids {
				_, _ = fmt.Fprintln(a.out, id)
			}

			return nil
		},
	}

	serversCmd.Flags().StringVar(&username, "username", serverUsername, "Server username to match")

	return serversCmd
}

func newUseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a configuration the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}

			if err := config.SetCurrent(a.path, args[0]); err != nil {
				return err
			}

			a.logger.Debug("current configuration changed", "path", a.path, "from", a.file.Current, "to", args[0])

			_, _ = fmt.Fprintln(a.out, checkStyle.Render("✓ current configuration is "+args[0]))

			return nil
		},
	}
}
