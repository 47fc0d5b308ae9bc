package cli

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/actions"
	"github.com/ariel-frischer/bumpchanges/internal/alias"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
	"github.com/ariel-frischer/bumpchanges/internal/git"
)

// aliasTagMessage is the annotation of every alias tag bumpchanges writes.
const aliasTagMessage = "Update major tag"

var (
	aliasEvent       string
	aliasIneligible  []string
	aliasApply       bool
	aliasTaggerName  string
	aliasTaggerEmail string
)

var resolveAliasCmd = &cobra.Command{
	Use:   "resolve-alias <repo> <changed-ref>",
	Short: "Decide where the major alias tag (v1, v2, ...) must point",
	Long: `Decide where the floating major alias of a changed release tag must point.

The changed ref is GITHUB_REF of a release or tag event (refs/tags/<tag>)
or a bare tag name. Its major version selects the alias; the alias target
is the newest semantic version tag with that major that is not a
prerelease and not listed with --ineligible. For a deleted release the
changed tag itself is excluded. Tags that are not semantic versions, and
majors below 1, have no alias and are skipped.

With --apply the local alias tag is moved (as an annotated tag) or
deleted. Pushing is left to the workflow.

Outputs:
  alias    the alias tag, e.g. v2
  target   the tag the alias must point at (empty when none remains)
  action   update, delete, up_to_date or none`,
	Example: `  bumpchanges resolve-alias . refs/tags/v2.5.1
  bumpchanges resolve-alias . v2.5.1 --event deleted --apply
  bumpchanges resolve-alias . refs/tags/v2.6.0 --ineligible v2.6.0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolveAlias(cmd, args[0], args[1])
	},
}

func init() {
	resolveAliasCmd.GroupID = GroupRelease
	rootCmd.AddCommand(resolveAliasCmd)

	resolveAliasCmd.Flags().StringVar(&aliasEvent, "event", "published", "Release event that changed the tag: published or deleted")
	resolveAliasCmd.Flags().StringSliceVar(&aliasIneligible, "ineligible", nil, "Tags that must not be aliased (drafts, releases flagged as prereleases)")
	resolveAliasCmd.Flags().BoolVar(&aliasApply, "apply", false, "Move or delete the local alias tag")
	resolveAliasCmd.Flags().StringVar(&aliasTaggerName, "tagger-name", "github-actions[bot]", "Tagger name for alias tags written with --apply")
	resolveAliasCmd.Flags().StringVar(&aliasTaggerEmail, "tagger-email", "41898282+github-actions[bot]@users.noreply.github.com", "Tagger email for alias tags written with --apply")
}

func runResolveAlias(cmd *cobra.Command, repoPath, ref string) error {
	if aliasEvent != "published" && aliasEvent != "deleted" {
		return clierrors.NewArgumentError(
			fmt.Sprintf("invalid --event %q", aliasEvent),
			"Valid events: published, deleted",
		)
	}

	tag, err := alias.ChangedTag(ref)
	if err != nil {
		return classify(err)
	}

	outs := actions.NewOutputs()
	major, ok := alias.MajorOf(tag)
	if !ok {
		logger.Log(cmd.Context(), actions.LevelNotice,
			fmt.Sprintf("Tag %s is not a semantic version of v1 or above, no alias to update", tag))
		outs.Set("action", string(alias.ActionNone))
		return flushOutputs(cmd, outs)
	}

	repo, err := git.Open(repoPath)
	if err != nil {
		return clierrors.GitNotRepository(repoPath, err)
	}
	commits, err := repo.TagCommits()
	if err != nil {
		return err
	}
	tags := make([]string, 0, len(commits))
	for name := range commits {
		tags = append(tags, name)
	}
	sort.Strings(tags)

	ineligible := slices.Clone(aliasIneligible)
	if aliasEvent == "deleted" {
		ineligible = append(ineligible, tag)
	}

	target, err := alias.Resolve(tags, major, ineligible)
	if err != nil {
		return classify(err)
	}
	plan := alias.Decide(target, commits)
	logPlan(cmd, plan)

	if aliasApply {
		if err := applyPlan(cmd, repo, plan); err != nil {
			return err
		}
	}

	outs.Set("alias", plan.Alias)
	outs.Set("target", plan.Tag)
	outs.Set("action", string(plan.Action))
	return flushOutputs(cmd, outs)
}

func logPlan(cmd *cobra.Command, plan alias.Plan) {
	switch plan.Action {
	case alias.ActionUpToDate:
		logger.Log(cmd.Context(), actions.LevelNotice, fmt.Sprintf("Alias %s is already up-to-date", plan.Alias), "target", plan.Tag)
	case alias.ActionUpdate:
		if plan.Current != "" {
			logger.Info(fmt.Sprintf("Alias %s currently points to commit %s", plan.Alias, plan.Current))
		} else {
			logger.Info(fmt.Sprintf("Alias %s does not exist", plan.Alias))
		}
		logger.Log(cmd.Context(), actions.LevelNotice, fmt.Sprintf("Alias %s should point to %s", plan.Alias, plan.Tag))
	case alias.ActionDelete:
		logger.Log(cmd.Context(), actions.LevelNotice, fmt.Sprintf("No eligible release remains for alias %s, it should be deleted", plan.Alias))
	case alias.ActionNone:
		logger.Info(fmt.Sprintf("No eligible release for alias %s", plan.Alias))
	}
}

func applyPlan(cmd *cobra.Command, repo *git.Repository, plan alias.Plan) error {
	switch plan.Action {
	case alias.ActionUpdate:
		tagger := &object.Signature{Name: aliasTaggerName, Email: aliasTaggerEmail, When: time.Now()}
		if err := repo.MoveTag(plan.Alias, plan.Tag, tagger, aliasTagMessage); err != nil {
			return err
		}
		logger.Log(cmd.Context(), actions.LevelNotice, fmt.Sprintf("Alias %s updated to %s", plan.Alias, plan.Tag))
	case alias.ActionDelete:
		if err := repo.DeleteTag(plan.Alias); err != nil {
			return err
		}
		logger.Log(cmd.Context(), actions.LevelNotice, fmt.Sprintf("Alias %s deleted", plan.Alias))
	default:
		return nil
	}
	logger.Info("push the alias with: git push --force origin " + pushRefspec(plan))
	return nil
}

func pushRefspec(plan alias.Plan) string {
	if plan.Action == alias.ActionDelete {
		return ":refs/tags/" + plan.Alias
	}
	return "refs/tags/" + plan.Alias
}
