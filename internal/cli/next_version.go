package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/actions"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
	"github.com/ariel-frischer/bumpchanges/internal/git"
	"github.com/ariel-frischer/bumpchanges/internal/resolver"
)

var nextVersionCmd = &cobra.Command{
	Use:   "next-version <repo> <bump-kind> <prerelease> [exact-version]",
	Short: "Compute the next release version from the repository's tags",
	Long: `Compute the next release version from the repository's tags.

The bump kind is one of major, minor, patch, prerelease or exact. Relative
bumps start from the highest released semantic version tag; prerelease tags
and free-form tags (v2024.1) are never used as the baseline. With prerelease
set to true a major, minor or patch bump gets the first unused
"<identifier>.N" suffix. The exact kind takes the version verbatim.

Outputs:
  next_version   the computed version, without the "v" prefix
  next_tag       the tag the release will receive
  branch_name    the release branch, automation-create-release-<version>
  prerelease     true when the version carries a prerelease suffix
  baseline       the release the bump started from (relative bumps only)`,
	Example: `  bumpchanges next-version . minor false
  bumpchanges next-version . major true
  bumpchanges next-version . prerelease false
  bumpchanges next-version . exact false 2.0.0`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNextVersion(cmd, args)
	},
}

func init() {
	nextVersionCmd.GroupID = GroupRelease
	rootCmd.AddCommand(nextVersionCmd)
}

func runNextVersion(cmd *cobra.Command, args []string) error {
	bump, err := resolver.ParseBump(args[1])
	if err != nil {
		return clierrors.UnknownBumpKind(err)
	}
	prerelease, err := parseBool(args[2])
	if err != nil {
		return clierrors.InvalidBoolArgument("prerelease flag", args[2])
	}
	var exact string
	if len(args) == 4 {
		exact = strings.TrimSpace(args[3])
	}
	if bump == resolver.BumpExact && exact == "" {
		return clierrors.MissingExactVersion()
	}

	repo, err := git.Open(args[0])
	if err != nil {
		return clierrors.GitNotRepository(args[0], err)
	}
	tags, err := repo.Tags()
	if err != nil {
		return err
	}
	logger.Debug("tags loaded", "count", len(tags))

	res, err := resolver.Resolve(tags, resolver.Request{
		Bump:         bump,
		Prerelease:   prerelease,
		Exact:        exact,
		PrereleaseID: cfg.PrereleaseIdentifier,
	})
	if err != nil {
		return classify(err)
	}

	attrs := []any{"version", res.Next.String(), "bump", string(bump)}
	if res.Baseline != nil {
		attrs = append(attrs, "baseline", res.Baseline.String())
	}
	logger.Log(cmd.Context(), actions.LevelNotice, "next version computed", attrs...)

	outs := actions.NewOutputs()
	outs.Set("next_version", res.Next.String())
	outs.Set("next_tag", res.Tag())
	outs.Set("branch_name", res.Branch)
	outs.Set("prerelease", strconv.FormatBool(res.Next.IsPrerelease()))
	if res.Baseline != nil {
		outs.Set("baseline", res.Baseline.String())
	}
	return flushOutputs(cmd, outs)
}

// parseBool accepts the boolean spellings workflow inputs arrive in.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off", "":
		return false, nil
	default:
		return false, strconv.ErrSyntax
	}
}
