package resolver

import (
	"strings"

	"github.com/ariel-frischer/bumpchanges/internal/version"
)

// BranchPrefix marks branches opened by the release automation. The finalize
// step recovers the version from the branch name, so the prefix is a contract
// between the two.
const BranchPrefix = "automation-create-release-"

// BranchName returns the release branch for v.
func BranchName(v *version.Version) string {
	return BranchPrefix + v.String()
}

// VersionFromBranch extracts the version string from a release branch name.
// A leading "refs/heads/" is tolerated. It returns false when the branch does
// not follow the contract or carries an empty version.
func VersionFromBranch(ref string) (string, bool) {
	name := strings.TrimPrefix(ref, "refs/heads/")
	v, ok := strings.CutPrefix(name, BranchPrefix)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
