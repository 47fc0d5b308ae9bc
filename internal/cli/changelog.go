package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/changelog"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
)

var (
	changelogFileFlag   string
	changelogLastFlag   int
	changelogPlainFlag  bool
	changelogFormatFlag string
)

var changelogCmd = &cobra.Command{
	Use:   "changelog [version]",
	Short: "View changelog entries",
	Long: `View the entries of a Keep a Changelog file.

By default, shows the 5 most recent entries. Use a version argument to
see all entries for a specific version, or use --last to control entry count.
With --format yaml or json the whole changelog is exported instead.

The file defaults to the changelog setting of the configuration.`,
	Example: `  bumpchanges changelog              # Show 5 most recent entries
  bumpchanges changelog v0.6.0       # Show all entries for version 0.6.0
  bumpchanges changelog 0.6.0        # Same (v prefix optional)
  bumpchanges changelog unreleased   # Show unreleased changes
  bumpchanges changelog --last 10    # Show 10 most recent entries
  bumpchanges changelog --plain      # Plain output (no colors/icons)
  bumpchanges changelog --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelogView(cmd, args)
	},
}

func init() {
	changelogCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(changelogCmd)

	changelogCmd.PersistentFlags().StringVarP(&changelogFileFlag, "file", "f", "", "Changelog file (default: changelog from the configuration)")
	changelogCmd.Flags().IntVar(&changelogLastFlag, "last", 5, "Number of entries to show")
	changelogCmd.Flags().BoolVar(&changelogPlainFlag, "plain", false, "Plain text output (no colors/icons)")
	changelogCmd.Flags().StringVar(&changelogFormatFlag, "format", "text", "Output format: text, yaml or json")
}

// changelogPath returns the file the changelog commands operate on.
func changelogPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if changelogFileFlag != "" {
		return changelogFileFlag
	}
	return cfg.Changelog
}

// loadChangelog parses path and logs the repairs the parser noted.
func loadChangelog(path string) (*changelog.Changelog, error) {
	log, err := changelog.Load(path)
	if err != nil {
		return nil, classifyChangelog(path, err)
	}
	for _, w := range log.Warnings {
		logger.Warn(w, "file", path)
	}
	return log, nil
}

func runChangelogView(cmd *cobra.Command, args []string) error {
	log, err := loadChangelog(changelogPath(nil))
	if err != nil {
		return err
	}

	switch changelogFormatFlag {
	case "text":
	case "yaml", "json":
		return changelog.WriteExport(changelog.Export(log), changelogFormatFlag, cmd.OutOrStdout())
	default:
		return clierrors.NewArgumentError(
			fmt.Sprintf("invalid --format %q", changelogFormatFlag),
			"Valid formats: text, yaml, json",
		)
	}

	opts := changelog.FormatOptions{
		Plain: changelogPlainFlag,
	}

	if len(args) == 1 {
		return showVersion(log, args[0], cmd, opts)
	}
	return showLastEntries(log, changelogLastFlag, cmd, opts)
}

// findSection looks version up, listing what exists when it is missing.
func findSection(log *changelog.Changelog, version string, cmd *cobra.Command) (*changelog.Section, error) {
	s, err := log.GetVersion(version)
	if err != nil {
		var notFound *changelog.VersionNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Version %q not found.\n\n", version)
			fmt.Fprintf(cmd.ErrOrStderr(), "Available versions:\n")
			for _, ver := range notFound.AvailableVersions {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", ver)
			}
			return nil, NewExitError(ExitInvalidArguments)
		}
		return nil, fmt.Errorf("getting version: %w", err)
	}
	return s, nil
}

func showVersion(log *changelog.Changelog, version string, cmd *cobra.Command, opts changelog.FormatOptions) error {
	s, err := findSection(log, version, cmd)
	if err != nil {
		return err
	}
	return changelog.FormatSection(s, cmd.OutOrStdout(), opts)
}

func showLastEntries(log *changelog.Changelog, n int, cmd *cobra.Command, opts changelog.FormatOptions) error {
	entries := log.GetLastN(n)
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No changelog entries found.")
		return nil
	}

	if err := changelog.FormatEntries(log, entries, cmd.OutOrStdout(), opts); err != nil {
		return fmt.Errorf("formatting entries: %w", err)
	}

	total := log.GetEntryCount()
	if total > len(entries) {
		fmt.Fprintf(cmd.OutOrStdout(), "\n(%d of %d entries shown. Use --last %d to see all)\n",
			len(entries), total, total)
	}
	return nil
}
