package release

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/bumpchanges/internal/changelog"
	"github.com/ariel-frischer/bumpchanges/internal/version"
)

// BumpInputs records who asked for the release and how, for the pull
// request summary table.
type BumpInputs struct {
	Actor           string
	TriggeringActor string
	Branch          string
	BumpType        string
	ExactVersion    string
}

// Details is the text the promote step hands to the pull request tooling.
type Details struct {
	CommitMessage string
	PRTitle       string
	PRBody        string
}

// NewDetails builds the commit message, pull request title and body for the
// release of v. The promoted section, when given, is appended to the body.
func NewDetails(v *version.Version, in BumpInputs, section *changelog.Section) Details {
	return Details{
		CommitMessage: fmt.Sprintf("Update CHANGELOG for version `%s`", v),
		PRTitle:       fmt.Sprintf("Prepare for version `%s`", v),
		PRBody:        prBody(v, in, section),
	}
}

func prBody(v *version.Version, in BumpInputs, section *changelog.Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Update CHANGELOG in preparation for release **%s**.\n\n", v)
	fmt.Fprintf(&b, "Merging this PR will trigger another workflow to create the release tag **%s**.\n\n", v.Tag())

	b.WriteString("| Input | Value |\n| ----- | ----- |\n")
	for _, row := range inputRows(in) {
		fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
	}

	if section != nil {
		b.WriteString("\n")
		b.WriteString(changelog.RenderSection(section))
	}
	return b.String()
}

func inputRows(in BumpInputs) [][2]string {
	var rows [][2]string
	if in.Actor != "" {
		rows = append(rows, [2]string{"Actor", "@" + in.Actor})
	}
	if in.TriggeringActor != "" && in.TriggeringActor != in.Actor {
		rows = append(rows, [2]string{"Triggering Actor", "@" + in.TriggeringActor})
	}
	if in.Branch != "" {
		rows = append(rows, [2]string{"Branch", "`" + in.Branch + "`"})
	}
	if in.BumpType != "" {
		rows = append(rows, [2]string{"Bump Type", "`" + in.BumpType + "`"})
	}
	if in.BumpType == "exact" && in.ExactVersion != "" {
		rows = append(rows, [2]string{"Exact version", in.ExactVersion})
	}
	return rows
}
