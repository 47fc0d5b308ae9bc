package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/changelog"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
)

var changelogCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate that a changelog parses and is in canonical form",
	Long: `Validate a Keep a Changelog file.

The file must parse: one Unreleased section at most, release headings with
versions and ISO dates, and no duplicate releases. It must also be in the
canonical form that promote-changelog writes, with repaired headings,
canonical change group labels and regenerated reference links. Returns exit
code 0 when both hold, or exit code 1 with a useful message otherwise.`,
	Example: `  bumpchanges changelog check
  bumpchanges changelog check docs/CHANGELOG.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelogCheck(cmd, changelogPath(args))
	},
}

func init() {
	changelogCmd.AddCommand(changelogCheckCmd)
}

func runChangelogCheck(cmd *cobra.Command, path string) error {
	log, err := loadChangelog(path)
	if err != nil {
		return err
	}

	expected, err := changelog.RenderMarkdownString(log)
	if err != nil {
		return fmt.Errorf("rendering expected markdown: %w", err)
	}

	actual, err := os.ReadFile(path)
	if err != nil {
		return clierrors.FileNotFound(path)
	}

	if expected != string(actual) {
		return reportNotCanonical(path, log, cmd)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d releases, %d entries)\n",
		path, len(log.Releases()), log.GetEntryCount())
	return nil
}

func reportNotCanonical(path string, log *changelog.Changelog, cmd *cobra.Command) error {
	fmt.Fprintf(cmd.OutOrStdout(), "✗ %s is not in canonical form\n", path)
	for _, w := range log.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", w)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nTo fix, run:\n  bumpchanges changelog fmt %s\n", path)
	return NewExitError(ExitValidationFailed)
}
