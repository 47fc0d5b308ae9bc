package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/bumpchanges/internal/build"
)

// SourceURL is the project source URL
const SourceURL = "https://github.com/ariel-frischer/bumpchanges"

var versionPlain bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for bumpchanges",
	Example: `  # Show version info
  bumpchanges version

  # Plain output (for scripts)
  bumpchanges version --plain`,
	Args: cobra.NoArgs,
	// The version must print even when the project config is broken.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if versionPlain {
			printPlainVersion(cmd.OutOrStdout())
		} else {
			printPrettyVersion(cmd.OutOrStdout())
		}
	},
}

func init() {
	versionCmd.GroupID = GroupInternal
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(w io.Writer) {
	fmt.Fprintf(w, "bumpchanges %s\n", build.Version)
	fmt.Fprintf(w, "commit: %s\n", build.Commit)
	fmt.Fprintf(w, "built: %s\n", build.BuildDate)
	fmt.Fprintf(w, "go: %s\n", runtime.Version())
	fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func printPrettyVersion(w io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(w, "%s %s\n\n", cyan("bumpchanges"), build.Version)
	info := []struct {
		label string
		value string
	}{
		{"Commit", build.ShortCommit()},
		{"Built", build.BuildDate},
		{"Go", runtime.Version()},
		{"Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
	}
	for _, item := range info {
		fmt.Fprintf(w, "  %s  %s\n", yellow(fmt.Sprintf("%-8s", item.label)), item.value)
	}
	fmt.Fprintf(w, "\n%s\n", dim(SourceURL))
}
