// Package cli wires the bumpchanges commands: one cobra command per release
// step, each a one-shot batch process that reads arguments and the workflow
// environment, writes step outputs and exits.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/actions"
	"github.com/ariel-frischer/bumpchanges/internal/config"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
	"github.com/ariel-frischer/bumpchanges/internal/git"
)

// Command groups shown in help output.
const (
	GroupRelease       = "release"
	GroupChangelog     = "changelog"
	GroupConfiguration = "configuration"
	GroupInternal      = "internal"
)

var (
	configPath string
	logLevel   string
	outputPath string

	// cfg and logger are set by the root PersistentPreRunE before any
	// command runs.
	cfg    *config.Configuration
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bumpchanges",
	Short: "Release bookkeeping for Keep a Changelog repositories",
	Long: `bumpchanges automates the bookkeeping around a release:

  - computes the next version from the repository's tags
  - promotes the Unreleased section of CHANGELOG.md to a dated release
  - rewrites hard-coded version literals in source files
  - finalizes a merged release pull request into tag and release details
  - keeps floating major aliases (v1, v2, ...) on the newest release

Every command is a single step of a GitHub Actions workflow. Results are
appended to $GITHUB_OUTPUT (or --output) and log lines are emitted as
workflow commands so warnings and notices show up as annotations.

Source: https://github.com/ariel-frischer/bumpchanges`,
	Example: `  # Compute the next minor version
  bumpchanges next-version . minor false

  # Promote the Unreleased section to 1.3.0
  bumpchanges promote-changelog CHANGELOG.md https://github.com/acme/widget 1.3.0

  # Rewrite version literals in two files
  bumpchanges update-version-files . 1.3.0 src/widget/__init__.py,plugin.yml

  # Move the v1 alias after a release is published
  bumpchanges resolve-alias . refs/tags/v1.3.0 --apply

  # Show the latest changelog entries
  bumpchanges changelog`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRelease, Title: "Release Steps:"},
		&cobra.Group{ID: GroupChangelog, Title: "Changelog:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
		&cobra.Group{ID: GroupInternal, Title: "Other Commands:"},
	)
	rootCmd.SetHelpCommandGroupID(GroupInternal)
	rootCmd.SetCompletionCommandGroupID(GroupInternal)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Project config file (default: ./.bumpchanges.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, notice, warn, error (overrides log_level)")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Step output file (default: $GITHUB_OUTPUT, else stdout)")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	return reportError(rootCmd.ErrOrStderr(), err)
}

// reportError prints err once and maps it to an exit code. Inside a workflow
// the report is an ::error:: annotation, elsewhere the colored terminal
// form. ExitErrors were already reported by the command that raised them.
func reportError(w io.Writer, err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	cliErr := classify(err)
	if actions.InWorkflow() {
		slog.New(actions.NewHandler(w, slog.LevelError)).Error(clierrors.FormatAnnotation(cliErr))
	} else {
		clierrors.FprintError(w, cliErr)
	}
	return exitCodeFor(cliErr)
}

// setup loads the configuration and installs the logger shared by every
// command.
func setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if logLevel != "" {
		if err := config.ValidateValue("log_level", logLevel); err != nil {
			return clierrors.NewArgumentError(
				fmt.Sprintf("invalid --log-level: %v", err),
				"Valid levels: debug, info, notice, warn, error",
			)
		}
	}

	loaded, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: configPath,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return clierrors.ConfigParseError(err)
	}
	cfg = loaded

	name := cfg.LogLevel
	if logLevel != "" {
		name = logLevel
	}
	if parsed, err := actions.ParseLevel(name); err == nil {
		level = parsed
	}

	logger = slog.New(actions.NewHandler(cmd.ErrOrStderr(), level))
	slog.SetDefault(logger)
	git.SetDebugLogger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	})

	for _, key := range cfg.UnknownKeys {
		logger.Warn("unknown configuration key ignored", "key", key)
	}
	return nil
}

// stepOutputPath returns where step outputs go: --output, then
// $GITHUB_OUTPUT. Empty means stdout.
func stepOutputPath() string {
	if outputPath != "" {
		return outputPath
	}
	return os.Getenv(actions.OutputEnv)
}

// flushOutputs writes outs to the step output file, or to the command's
// stdout when there is none.
func flushOutputs(cmd *cobra.Command, outs *actions.Outputs) error {
	path := stepOutputPath()
	if err := outs.Flush(path, cmd.OutOrStdout()); err != nil {
		return clierrors.FileNotWritable(path, err)
	}
	return nil
}

// ExitError carries an exit code for a failure the command already reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError returns an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}
