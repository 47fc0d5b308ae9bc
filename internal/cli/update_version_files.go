package cli

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/actions"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
	"github.com/ariel-frischer/bumpchanges/internal/versionfile"
)

var updateDryRun bool

var updateVersionFilesCmd = &cobra.Command{
	Use:   "update-version-files <repo> <version> [comma-separated-files]",
	Short: "Rewrite hard-coded version literals in source files",
	Long: `Rewrite the hard-coded version literal in each listed file.

Every file must hold exactly one line that assigns a digit-led version to a
key ending in "version", such as:

  __version__ = "1.1.0"
  version: 1.2.3
  "version": "1.2.3",
  Plugin-Version: 0.6.0

Only the value is replaced; quoting, spacing and line endings are kept.
All files are checked before the first write, so a file with no match or
several matches leaves every file unchanged. Paths must stay inside the
repository and must not match protected_paths.

When the file list argument is omitted, version_files from the
configuration is used.

Outputs:
  changed_files  the rewritten paths, one per line`,
	Example: `  bumpchanges update-version-files . 1.3.0 src/widget/__init__.py,plugin.yml
  bumpchanges update-version-files . 1.3.0 --dry-run`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if len(args) == 3 {
			files = versionfile.SplitList(args[2])
		} else {
			files = cfg.VersionFiles
		}
		return runUpdateVersionFiles(cmd, args[0], args[1], files)
	},
}

func init() {
	updateVersionFilesCmd.GroupID = GroupRelease
	rootCmd.AddCommand(updateVersionFilesCmd)

	updateVersionFilesCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Check the files and report the changes without writing")
}

func runUpdateVersionFiles(cmd *cobra.Command, root, target string, files []string) error {
	updater, err := versionfile.NewUpdater(root,
		versionfile.WithProtected(cfg.ProtectedPaths),
		versionfile.WithLogger(logger),
	)
	if errors.Is(err, fs.ErrNotExist) {
		return clierrors.FileNotFound(root)
	}
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration,
			"cannot update version files",
			"Check protected_paths for invalid glob patterns",
		)
	}

	changes, err := updater.Plan(target, files)
	if err != nil {
		return classify(err)
	}
	if !updateDryRun {
		if err := updater.Apply(changes); err != nil {
			return clierrors.Wrap(err, clierrors.Runtime)
		}
	}

	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		paths = append(paths, c.Path)
		if updateDryRun {
			logger.Info("would update version", "file", c.Path, "line", c.Line, "from", c.OldValue, "to", c.NewValue)
		}
	}

	outs := actions.NewOutputs()
	outs.Set("changed_files", strings.Join(paths, "\n"))
	return flushOutputs(cmd, outs)
}
