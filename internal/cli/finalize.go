package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/actions"
	"github.com/ariel-frischer/bumpchanges/internal/changelog"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
	"github.com/ariel-frischer/bumpchanges/internal/git"
	"github.com/ariel-frischer/bumpchanges/internal/release"
	"github.com/ariel-frischer/bumpchanges/internal/resolver"
)

var (
	finalizeEventPath  string
	finalizeHeadRef    string
	finalizeRepo       string
	finalizeDraft      bool
	finalizeIneligible []string
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize-release",
	Short: "Derive the release to publish from a merged release pull request",
	Long: `Derive the release to publish once a release pull request is merged.

Reads the pull_request event payload ($GITHUB_EVENT_PATH). The pull request
must be closed and merged, must come from a branch named
automation-create-release-<version> ($GITHUB_HEAD_REF), and must have been
opened by the release automation: a Bot account or one of
automation_actors. The release tag must not exist yet.

Outputs:
  version      the released version
  tag          the tag to create, v<version>
  prerelease   true for semantic prerelease versions
  target       the merge commit the tag points at
  title        Release <version>
  pr_number    the merged pull request
  prior_tag    the newest older release tag, for generated notes
  notes        the release notes header
  changelog    the release's changelog section, when the changelog has it
  draft        whether the release should be created as a draft`,
	Example: `  bumpchanges finalize-release
  bumpchanges finalize-release --event-path event.json --head-ref automation-create-release-1.2.0
  bumpchanges finalize-release --draft --ineligible v1.2.0-rc.1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFinalize(cmd)
	},
}

func init() {
	finalizeCmd.GroupID = GroupRelease
	rootCmd.AddCommand(finalizeCmd)

	finalizeCmd.Flags().StringVar(&finalizeEventPath, "event-path", "", "Event payload file (default: $GITHUB_EVENT_PATH)")
	finalizeCmd.Flags().StringVar(&finalizeHeadRef, "head-ref", "", "Head branch of the pull request (default: $GITHUB_HEAD_REF, then the payload)")
	finalizeCmd.Flags().StringVar(&finalizeRepo, "repo", ".", "Repository holding the release tags")
	finalizeCmd.Flags().BoolVar(&finalizeDraft, "draft", false, "Mark the release as a draft")
	finalizeCmd.Flags().StringSliceVar(&finalizeIneligible, "ineligible", nil, "Tags never used as the prior release (drafts)")
}

func runFinalize(cmd *cobra.Command) error {
	if name := os.Getenv("GITHUB_EVENT_NAME"); name != "" && name != "pull_request" {
		return clierrors.NotAMergedAutomationPR(
			fmt.Errorf("%w: workflow requires pull_request events, got %s", release.ErrNotAMergedAutomationPR, name))
	}

	eventPath := finalizeEventPath
	if eventPath == "" {
		eventPath = os.Getenv("GITHUB_EVENT_PATH")
	}
	if eventPath == "" {
		return clierrors.NewPrerequisiteError(
			"no event payload",
			"Run inside a pull_request workflow, or pass --event-path",
		)
	}
	ev, err := release.LoadEvent(eventPath)
	if err != nil {
		return classify(err)
	}

	headRef := finalizeHeadRef
	if headRef == "" {
		headRef = os.Getenv("GITHUB_HEAD_REF")
	}
	prepared, err := release.Prepare(ev, headRef, release.Policy{AutomationActors: cfg.AutomationActors})
	if err != nil {
		return classify(err)
	}

	repo, err := git.Open(finalizeRepo)
	if err != nil {
		return clierrors.GitNotRepository(finalizeRepo, err)
	}
	exists, err := repo.TagExists(prepared.Tag)
	if err != nil {
		return err
	}
	if exists {
		return classify(fmt.Errorf("%w: %s", resolver.ErrTagExists, prepared.Tag))
	}
	tags, err := repo.Tags()
	if err != nil {
		return err
	}
	prior := prepared.PriorTag(tags, finalizeIneligible)
	if prior == "" {
		logger.Info("no prior release tag found")
	} else {
		logger.Info("the most recent prior release tag is " + prior)
	}

	logger.Log(cmd.Context(), actions.LevelNotice, "release prepared",
		"tag", prepared.Tag, "target", prepared.Target, "prerelease", prepared.Prerelease)

	outs := actions.NewOutputs()
	outs.Set("version", prepared.Version.String())
	outs.Set("tag", prepared.Tag)
	outs.Set("prerelease", strconv.FormatBool(prepared.Prerelease))
	outs.Set("target", prepared.Target)
	outs.Set("title", prepared.Title)
	outs.Set("pr_number", strconv.Itoa(prepared.PRNumber))
	outs.Set("prior_tag", prior)
	outs.Set("notes", fmt.Sprintf("Automatically generated after merging #%d.", prepared.PRNumber))
	if section := releaseSection(repo.Root(), prepared); section != nil {
		outs.Set("changelog", changelog.RenderSection(section))
	}
	outs.Set("draft", strconv.FormatBool(finalizeDraft))
	return flushOutputs(cmd, outs)
}

// releaseSection looks the release up in the configured changelog. A missing
// changelog or section is not an error; the notes are then generated from
// the commit history alone.
func releaseSection(root string, prepared *release.Prepared) *changelog.Section {
	path := cfg.Changelog
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	doc, err := changelog.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		logger.Warn("cannot read changelog for release notes", "file", path, "error", err.Error())
		return nil
	}
	section, err := doc.GetVersion(prepared.Version.String())
	if err != nil {
		logger.Warn("release missing from changelog", "file", path, "version", prepared.Version.String())
		return nil
	}
	return section
}
