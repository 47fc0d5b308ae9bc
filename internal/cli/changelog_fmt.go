package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/changelog"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
)

var changelogFmtCmd = &cobra.Command{
	Use:   "fmt [path]",
	Short: "Rewrite a changelog in canonical form",
	Long: `Rewrite a Keep a Changelog file in the canonical form that
promote-changelog writes.

Headings are repaired, change group labels are canonicalized and the
reference links are regenerated. The file is replaced atomically, and
running fmt again leaves it unchanged.`,
	Example: `  bumpchanges changelog fmt
  bumpchanges changelog fmt docs/CHANGELOG.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangelogFmt(cmd, changelogPath(args))
	},
}

func init() {
	changelogCmd.AddCommand(changelogFmtCmd)
}

func runChangelogFmt(cmd *cobra.Command, path string) error {
	log, err := loadChangelog(path)
	if err != nil {
		return err
	}

	if err := changelog.WriteFile(log, path); err != nil {
		return clierrors.FileNotWritable(path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Formatted %s\n", path)
	return nil
}
