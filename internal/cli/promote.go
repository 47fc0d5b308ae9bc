package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/actions"
	"github.com/ariel-frischer/bumpchanges/internal/changelog"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
	"github.com/ariel-frischer/bumpchanges/internal/git"
	"github.com/ariel-frischer/bumpchanges/internal/release"
	"github.com/ariel-frischer/bumpchanges/internal/version"
)

var (
	promoteDate     string
	promoteBodyFile string
)

var promoteCmd = &cobra.Command{
	Use:   "promote-changelog <changelog> <repo-url> <version>",
	Short: "Promote the Unreleased changelog section to a dated release",
	Long: `Promote the Unreleased section of a Keep a Changelog file to a release.

The Unreleased entries move under a new "## [<version>] - <date>" heading,
a fresh empty Unreleased section is inserted above it, and the reference
links at the bottom are regenerated from the repository URL. The file is
normalized on the way (heading repairs, canonical subsection labels) and
rewritten atomically. Nothing is written when the Unreleased section is
missing or empty, or when the version does not sort above the latest
release.

An empty repo-url falls back to repo_url from the configuration, which
defaults to $GITHUB_SERVER_URL/$GITHUB_REPOSITORY. The release date uses
the configured timezone (CHANGELOG_TIMEZONE is honored).

The pull request summary table is filled from GITHUB_ACTOR,
GITHUB_TRIGGERING_ACTOR, GITHUB_REF_NAME, BUMP_TYPE and EXACT_VERSION.

Outputs:
  version         the promoted version
  commit_message  Update CHANGELOG for version ` + "`<version>`" + `
  pr_title        Prepare for version ` + "`<version>`" + `
  pr_body         the pull request body
  pr_bodyfile     a file holding the pull request body`,
	Example: `  bumpchanges promote-changelog CHANGELOG.md https://github.com/acme/widget 1.3.0
  bumpchanges promote-changelog CHANGELOG.md "" 2.0.0-rc.1 --date 2024-06-01`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPromote(cmd, args[0], args[1], args[2])
	},
}

func init() {
	promoteCmd.GroupID = GroupRelease
	rootCmd.AddCommand(promoteCmd)

	promoteCmd.Flags().StringVar(&promoteDate, "date", "", "Release date as YYYY-MM-DD (default: today in the configured timezone)")
	promoteCmd.Flags().StringVar(&promoteBodyFile, "body-file", "", "Where to write the pull request body (default: a new file in $GITHUB_WORKSPACE or the temp dir)")
}

func runPromote(cmd *cobra.Command, path, repoURL, raw string) error {
	v, err := version.ParseLenient(version.StripTagPrefix(raw))
	if err != nil {
		return clierrors.InvalidVersion(err)
	}
	if repoURL == "" {
		repoURL = cfg.RepoURL
	}

	date, err := releaseDate()
	if err != nil {
		return err
	}

	doc, err := changelog.Load(path)
	if err != nil {
		return classifyChangelog(path, err)
	}
	for _, w := range doc.Warnings {
		logger.Warn(w, "file", path)
	}

	section, err := doc.Promote(v, repoURL, date)
	if err != nil {
		return classifyChangelog(path, err)
	}
	if err := changelog.WriteFile(doc, path); err != nil {
		return clierrors.FileNotWritable(path, err)
	}
	logger.Log(cmd.Context(), actions.LevelNotice, "changelog promoted",
		"file", path, "version", v.String(), "date", date, "entries", section.EntryCount())

	details := release.NewDetails(v, bumpInputs(filepath.Dir(path)), section)
	bodyFile, err := writeBodyFile(details.PRBody)
	if err != nil {
		return err
	}

	outs := actions.NewOutputs()
	outs.Set("version", v.String())
	outs.Set("commit_message", details.CommitMessage)
	outs.Set("pr_title", details.PRTitle)
	outs.Set("pr_body", details.PRBody)
	outs.Set("pr_bodyfile", bodyFile)
	return flushOutputs(cmd, outs)
}

// releaseDate returns --date, or today's date in the configured timezone.
func releaseDate() (string, error) {
	if promoteDate != "" {
		if _, err := time.Parse(time.DateOnly, promoteDate); err != nil {
			return "", clierrors.NewArgumentError(
				fmt.Sprintf("invalid --date %q", promoteDate),
				"Use the YYYY-MM-DD format, e.g. --date 2024-06-01",
			)
		}
		return promoteDate, nil
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Warn(err.Error())
	}
	return changelog.ReleaseDate(time.Now(), loc), nil
}

// bumpInputs collects the workflow context for the pull request summary.
// The branch falls back to the checked-out branch of the repository at dir.
func bumpInputs(dir string) release.BumpInputs {
	in := release.BumpInputs{
		Actor:           os.Getenv("GITHUB_ACTOR"),
		TriggeringActor: os.Getenv("GITHUB_TRIGGERING_ACTOR"),
		Branch:          os.Getenv("GITHUB_REF_NAME"),
		BumpType:        os.Getenv("BUMP_TYPE"),
		ExactVersion:    os.Getenv("EXACT_VERSION"),
	}
	if in.Branch == "" {
		if repo, err := git.Open(dir); err == nil {
			if branch, err := repo.CurrentBranch(); err == nil {
				in.Branch = branch
			}
		}
	}
	return in
}

// writeBodyFile stores the pull request body for tools that take a file.
func writeBodyFile(body string) (string, error) {
	if promoteBodyFile != "" {
		if err := os.WriteFile(promoteBodyFile, []byte(body), 0o644); err != nil {
			return "", clierrors.FileNotWritable(promoteBodyFile, err)
		}
		return promoteBodyFile, nil
	}

	dir := os.Getenv("GITHUB_WORKSPACE")
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "bumpchanges-pr-body-*.md")
	if err != nil {
		return "", clierrors.FileNotWritable(dir, err)
	}
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return "", clierrors.FileNotWritable(f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return "", clierrors.FileNotWritable(f.Name(), err)
	}
	return f.Name(), nil
}
