/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/appversion/internal/gitctx"
	"github.com/fulmenhq/appversion/pkg/badge"
	"github.com/fulmenhq/appversion/pkg/buildinfo"
	"github.com/fulmenhq/appversion/pkg/config"
	"github.com/fulmenhq/appversion/pkg/exitcode"
	"github.com/fulmenhq/appversion/pkg/logger"
	"github.com/fulmenhq/appversion/pkg/mutation"
	"github.com/fulmenhq/appversion/pkg/record"
	"github.com/fulmenhq/appversion/pkg/registry"
	"github.com/fulmenhq/appversion/pkg/store"
)

// configError marks failures while resolving configuration.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// cliState is shared by one command tree. A fresh tree gets a fresh state so
// tests never leak settings between runs.
type cliState struct {
	root   string
	cfg    *config.Config
	dryRun bool

	// newRegistryClient is swapped in tests.
	newRegistryClient func(source string) (registry.Client, error)
}

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	return newRootCommandWith(&cliState{
		newRegistryClient: func(source string) (registry.Client, error) {
			return registry.NewClient(source, 0)
		},
	})
}

func newRootCommandWith(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apv",
		Short: "Keep a project's version, status and build data in one record",
		Long: `apv keeps the version, release status, build counters and commit of a project
in a single appversion.json record, and propagates version changes to the
project's manifests and README badges.

Examples:
   apv init                  # Create appversion.json
   apv update minor          # 1.2.3 -> 1.3.0, propagate and refresh badges
   apv set-status beta.2     # Record a prerelease stage
   apv compose M.m.p-S.s     # Render a version string
   apv show                  # Summarize the record`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.prepare(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			st.notifyUpdate(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("root", ".", "Project root containing the record")
	cmd.PersistentFlags().String("file", record.DefaultFilename, "Record file name, relative to --root")
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json-logs", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("dry-run", false, "Show what would change without writing anything")
	cmd.PersistentFlags().Bool("no-update-check", false, "Skip the check for a newer apv release")

	// Wire Cobra's built-in --version using apv's binary version
	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("apv {{.Version}}\n")

	registerSubcommands(cmd, st)
	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command, st *cliState) {
	cmd.AddCommand(newInitCmd(st))
	cmd.AddCommand(newUpdateCmd(st))
	cmd.AddCommand(newSetVersionCmd(st))
	cmd.AddCommand(newSetStatusCmd(st))
	cmd.AddCommand(newBadgeCmd(st))
	cmd.AddCommand(newTagCmd(st))
	cmd.AddCommand(newComposeCmd(st))
	cmd.AddCommand(newShowCmd(st))
	cmd.AddCommand(newVersionCmd())
}

// Execute runs the command tree and exits with a code describing the failure.
// This is called by main.main().
func Execute() {
	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitCodeFor(err))
	}
}

// prepare resolves configuration and initializes the logger.
func (st *cliState) prepare(cmd *cobra.Command) error {
	root, _ := cmd.Flags().GetString("root")
	st.root = root
	st.dryRun, _ = cmd.Flags().GetBool("dry-run")

	cfg, err := config.Load(config.Options{Root: root, Flags: cmd.Flags()})
	if err != nil {
		initializeLogger(cmd, "info", false, st.dryRun)
		return &configError{err: err}
	}
	st.cfg = cfg

	initializeLogger(cmd, cfg.Log.Level, cfg.Log.JSON, st.dryRun)
	logger.Debug("Configuration resolved", logger.String("root", root), logger.String("record", cfg.Record.File))
	return nil
}

// initializeLogger sets up the logger based on resolved settings
func initializeLogger(cmd *cobra.Command, level string, jsonLogs, dryRun bool) {
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg := logger.Config{
		Level:     logger.ParseLevel(level),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "apv",
		DryRun:    dryRun,
	}
	if err := logger.InitializeWithWriter(cfg, cmd.ErrOrStderr()); err != nil {
		// Fallback to stderr
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}

// engine opens the record store for the configured root and file.
func (st *cliState) engine() (*store.Engine, error) {
	return store.New(store.Config{Root: st.root, RecordFile: st.cfg.Record.File})
}

// load opens the store and reads the record.
func (st *cliState) load(ctx context.Context) (*store.Engine, *record.Record, error) {
	e, err := st.engine()
	if err != nil {
		return nil, nil, err
	}
	r, err := e.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return e, r, nil
}

// notifyUpdate prints an upgrade notice when a newer release is published.
func (st *cliState) notifyUpdate(cmd *cobra.Command) {
	if st.cfg == nil || !st.cfg.UpdateCheck.Enabled {
		return
	}
	if skip, _ := cmd.Flags().GetBool("no-update-check"); skip {
		return
	}
	client, err := st.newRegistryClient(st.cfg.UpdateCheck.Source)
	if err != nil {
		logger.Debug("Update check disabled", logger.Err(err))
		return
	}
	notice := registry.CheckForUpdate(cmd.Context(), client, st.cfg.UpdateCheck.Module, buildinfo.Version(), st.cfg.UpdateCheck.Timeout)
	if notice == nil {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "A new apv release is available: %s (current %s)\n", notice.Latest, notice.Current)
}

// exitCodeFor maps an error returned by a command to a process exit code.
func exitCodeFor(err error) int {
	var parseErr *record.ParseError
	var cfgErr *configError
	var pathErr *fs.PathError

	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &cfgErr):
		return exitcode.ConfigError
	case errors.Is(err, store.ErrNotFound):
		return exitcode.NotInitialized
	case errors.Is(err, store.ErrAlreadyExists):
		return exitcode.AlreadyExists
	case errors.As(err, &parseErr):
		return exitcode.DataError
	case errors.Is(err, mutation.ErrInvalidField),
		errors.Is(err, mutation.ErrInvalidVersion),
		errors.Is(err, mutation.ErrInvalidStage),
		errors.Is(err, mutation.ErrInvalidStatusNumber),
		errors.Is(err, mutation.ErrInvalidBuild),
		errors.Is(err, badge.ErrUnknownKind),
		errors.Is(err, gitctx.ErrTagExists):
		return exitcode.ValidationError
	case errors.Is(err, fs.ErrPermission):
		return exitcode.PermissionError
	case errors.As(err, &pathErr):
		return exitcode.FileSystemError
	default:
		return exitcode.GeneralError
	}
}
