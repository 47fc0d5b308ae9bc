package cli

import (
	"errors"
	"io/fs"

	"github.com/ariel-frischer/bumpchanges/internal/alias"
	"github.com/ariel-frischer/bumpchanges/internal/changelog"
	clierrors "github.com/ariel-frischer/bumpchanges/internal/errors"
	"github.com/ariel-frischer/bumpchanges/internal/release"
	"github.com/ariel-frischer/bumpchanges/internal/resolver"
	"github.com/ariel-frischer/bumpchanges/internal/version"
	"github.com/ariel-frischer/bumpchanges/internal/versionfile"
)

// classify turns an error from a release step into a CLIError with
// remediation. Errors that are already CLIErrors pass through.
func classify(err error) *clierrors.CLIError {
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var eventErr *release.EventError
	switch {
	case errors.Is(err, resolver.ErrUnknownBump):
		return clierrors.UnknownBumpKind(err)
	case errors.Is(err, resolver.ErrNoBaseline):
		return clierrors.NoBaselineVersion(err)
	case errors.Is(err, resolver.ErrTagExists):
		return clierrors.TagExists(err)
	case errors.Is(err, version.ErrInvalidFormat), errors.Is(err, version.ErrNotAVersionTag):
		return clierrors.InvalidVersion(err)
	case errors.Is(err, versionfile.ErrAmbiguousLiteral):
		return clierrors.AmbiguousVersionLiteral(err)
	case errors.Is(err, versionfile.ErrUnsafePath):
		return clierrors.UnsafeVersionFile(err)
	case errors.Is(err, alias.ErrNotATag):
		return clierrors.NotATag(err)
	case errors.Is(err, alias.ErrAmbiguous):
		return clierrors.AliasAmbiguous(err)
	case errors.Is(err, release.ErrNotAMergedAutomationPR):
		return clierrors.NotAMergedAutomationPR(err)
	case errors.As(err, &eventErr):
		return clierrors.EventPayloadError(err)
	case errors.Is(err, fs.ErrNotExist):
		return clierrors.Wrap(err, clierrors.Prerequisite,
			"Check that the path is correct and relative to the working directory")
	default:
		return clierrors.Wrap(err, clierrors.Runtime)
	}
}

// classifyChangelog maps changelog failures for the file at path.
func classifyChangelog(path string, err error) error {
	switch {
	case errors.Is(err, changelog.ErrMissingUnreleased):
		return clierrors.MissingUnreleasedSection(path, err)
	case errors.Is(err, changelog.ErrNothingToRelease):
		return clierrors.NothingToRelease(path, err)
	case errors.Is(err, changelog.ErrReleaseOrder):
		return clierrors.ReleaseOrder(path, err)
	case errors.Is(err, changelog.ErrNoRepoURL):
		return clierrors.MissingRepoURL(path, err)
	case errors.Is(err, changelog.ErrMalformed):
		return clierrors.MalformedChangelog(path, err)
	case errors.Is(err, fs.ErrNotExist):
		return clierrors.FileNotFound(path)
	default:
		return err
	}
}

// exitCodeFor maps an error category to the process exit code.
func exitCodeFor(err *clierrors.CLIError) int {
	switch err.Category {
	case clierrors.Argument, clierrors.Configuration:
		return ExitInvalidArguments
	case clierrors.Prerequisite:
		return ExitMissingDependencies
	default:
		return ExitValidationFailed
	}
}
