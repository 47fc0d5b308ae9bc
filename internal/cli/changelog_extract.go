package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/changelog"
)

var changelogExtractCmd = &cobra.Command{
	Use:   "extract <version>",
	Short: "Extract release notes for a specific version",
	Long: `Extract release notes for a specific version in markdown format.

The section is written to stdout, heading included, exactly as it appears
in the normalized changelog. The output suits GitHub release notes.`,
	Example: `  bumpchanges changelog extract v0.6.0     # Extract notes for version 0.6.0
  bumpchanges changelog extract 0.6.0      # Same (v prefix optional)
  bumpchanges changelog extract unreleased # Extract unreleased changes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelogExtract(cmd, args[0])
	},
}

func init() {
	changelogCmd.AddCommand(changelogExtractCmd)
}

func runChangelogExtract(cmd *cobra.Command, version string) error {
	log, err := loadChangelog(changelogPath(nil))
	if err != nil {
		return err
	}

	s, err := findSection(log, version, cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), changelog.RenderSection(s))
	return err
}
