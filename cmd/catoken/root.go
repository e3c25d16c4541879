package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ruffel/interact"
	"github.com/ruffel/interact/codeartifact"
	"github.com/ruffel/interact/config"
	"github.com/ruffel/interact/providers/local"
	"github.com/ruffel/interact/providers/ssh"
	"github.com/spf13/cobra"
)

// options are the persistent flags plus the seams tests replace.
type options struct {
	configPath string
	verbose    bool
	sshHost    string
	sshConfig  string
	insecure   bool
	timeout    time.Duration

	prompter interact.Prompter
	awsFiles codeartifact.SharedFiles
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&options{})
}

func newRootCmdWith(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "catoken",
		Short:         "Fetch AWS CodeArtifact tokens into Maven settings",
		Long:          `Runs "aws codeartifact get-authorization-token", answering MFA and SSO prompts, and stores the token as a Maven server password.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Configuration file (default: user config dir)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log process activity")
	flags.StringVar(&opts.sshHost, "ssh-host", "", "Run the AWS CLI on this host over SSH")
	flags.StringVar(&opts.sshConfig, "ssh-config", "", "SSH config file used to resolve --ssh-host (default: ~/.ssh/config)")
	flags.BoolVar(&opts.insecure, "ssh-insecure", false, "Skip SSH host key verification (testing only)")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Give up on a token request after this long (0 disables)")

	rootCmd.AddCommand(
		newTokenCmd(opts),
		newRefreshCmd(opts),
		newServersCmd(opts),
		newUseCmd(opts),
	)

	return rootCmd
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	opts     *options
	path     string
	file     *config.File
	logger   *slog.Logger
	out      io.Writer
	spawner  interact.Spawner
	close    func() error
	prompter interact.Prompter
}

func (o *options) open(cmd *cobra.Command) (*app, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path := o.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}

	file, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded", "path", path, "configurations", len(file.Configurations))

	a := &app{opts: o, path: path, file: file, logger: logger, out: cmd.OutOrStdout(), prompter: o.prompter}
	if a.prompter == nil {
		a.prompter = newTerminalPrompter(cmd.ErrOrStderr())
	}

	return a, nil
}

// connect opens the environment the AWS CLI runs in.
func (a *app) connect() error {
	if a.opts.sshHost == "" {
		env := local.New(local.WithLogger(a.logger))
		a.spawner, a.close = env, env.Close

		return nil
	}

	cfg, err := ssh.NewFromSSHConfig(a.opts.sshHost, a.opts.sshConfig)
	if err != nil {
		return err
	}

	if a.opts.insecure {
		cfg.InsecureSkipVerify = true
	} else if cfg.HostKeyCheck == nil && !cfg.InsecureSkipVerify {
		if cfg.HostKeyCheck, err = ssh.DefaultKnownHosts(); err != nil {
			return fmt.Errorf("load known_hosts: %w", err)
		}
	}

	if cfg.PrivateKeyPath == "" {
		cfg.UseAgent = true
	}

	env, err := ssh.New(ssh.WithConfig(cfg), ssh.WithLogger(a.logger))
	if err != nil {
		return err
	}

	a.spawner, a.close = env, env.Close

	return nil
}

func (a *app) shutdown() {
	if a.close != nil {
		_ = a.close()
	}
}

// fetch runs the token command for one configuration.
func (a *app) fetch(ctx context.Context, named config.Named) (*interact.Result, error) {
	target := named.Target()
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("configuration %q: %w", named.Name, err)
	}

	tooling := a.file.Tooling()

	cmd, err := codeartifact.TokenCommand(tooling, target)
	if err != nil {
		return nil, fmt.Errorf("configuration %q: %w", named.Name, err)
	}

	log := a.logger.With("configuration", named.Name)

	engineOpts := []interact.EngineOption{
		interact.WithLogger(log),
		interact.WithTimeout(a.opts.timeout),
	}

	if a.wantsRecovery(ctx, target, log) {
		engineOpts = append(engineOpts, interact.WithRecovery(codeartifact.NewRecovery(tooling, target)))
	}

	res := interact.NewEngine(a.spawner, engineOpts...).Run(ctx, cmd, a.prompter)
	log.Debug("token request finished", "outcome", res.Outcome, "attempts", res.Attempts, "duration", res.Duration)

	return res, nil
}

// wantsRecovery attaches SSO login recovery unless the profile is known to
// use other credentials. Profiles the local files do not describe, as on a
// remote host, are left to the failure signatures.
func (a *app) wantsRecovery(ctx context.Context, target codeartifact.Target, log *slog.Logger) bool {
	if a.opts.sshHost != "" {
		return true
	}

	info, found, err := codeartifact.InspectProfile(ctx, target.Profile, a.opts.awsFiles)
	if err != nil {
		log.Warn("cannot inspect aws profile", "error", err)

		return true
	}

	if !found {
		log.Debug("aws profile not found in shared config", "profile", info.Name)

		return true
	}

	log.Debug("aws profile inspected", "profile", info.Name, "region", info.Region, "sso", info.SSO, "mfa", info.MFA)

	return info.SSO
}

// resultError turns an unsuccessful Result into the error returned by a command.
func resultError(name string, res *interact.Result) error {
	return fmt.Errorf("%s: %s (%s)", name, res.Message, interact.KindOf(res.Err))
}
