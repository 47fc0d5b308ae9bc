// Package cli tests shared command execution helpers.
// Related: internal/cli/root.go
// Tags: cli, testing, helpers

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

var testSignature = &object.Signature{
	Name:  "Release Bot",
	Email: "bot@example.com",
	When:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

// cliResult is the observable effect of one command run.
type cliResult struct {
	code    int
	stdout  string
	stderr  string
	outputs map[string]string
}

// runCLI executes rootCmd with args the way main does. Step outputs go to a
// temporary file and are decoded into the result. Tests using it share
// rootCmd and must not run in parallel.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIWithEnv(t, nil, args...)
}

// runCLIWithEnv is runCLI with workflow variables set for the run.
func runCLIWithEnv(t *testing.T, env map[string]string, args ...string) cliResult {
	t.Helper()

	clearWorkflowEnv(t)
	for name, value := range env {
		t.Setenv(name, value)
	}
	resetFlags(rootCmd)

	tmp := t.TempDir()
	outFile := filepath.Join(tmp, "github_output")
	base := []string{
		"--output", outFile,
		"--config", filepath.Join(tmp, ".bumpchanges.yml"),
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(base, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	code := Execute()

	res := cliResult{code: code, stdout: stdout.String(), stderr: stderr.String(), outputs: map[string]string{}}
	if data, err := os.ReadFile(outFile); err == nil {
		res.outputs = parseOutputs(string(data))
	}
	return res
}

// clearWorkflowEnv removes the runner variables the commands read so the
// host environment cannot leak into a test.
func clearWorkflowEnv(t *testing.T) {
	t.Helper()

	names := []string{
		"GITHUB_ACTIONS", "GITHUB_OUTPUT", "GITHUB_ACTOR", "GITHUB_TRIGGERING_ACTOR", "GITHUB_REF_NAME",
		"GITHUB_EVENT_NAME", "GITHUB_EVENT_PATH", "GITHUB_HEAD_REF", "GITHUB_WORKSPACE",
		"GITHUB_SERVER_URL", "GITHUB_REPOSITORY", "BUMP_TYPE", "EXACT_VERSION", "CHANGELOG_TIMEZONE",
	}
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "BUMPCHANGES_") {
			names = append(names, name)
		}
	}
	for _, name := range names {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

// resetFlags restores every flag of cmd and its subcommands to its default.
// Slice flags append on Set, so they are replaced instead.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// parseOutputs decodes "key=value" lines and "key<<DELIM" heredocs.
func parseOutputs(data string) map[string]string {
	out := map[string]string{}
	lines := strings.Split(data, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		eq := strings.Index(line, "=")
		if heredoc := strings.Index(line, "<<"); heredoc > 0 && (eq < 0 || heredoc < eq) {
			key, delim := line[:heredoc], line[heredoc+2:]
			var body []string
			for i++; i < len(lines) && lines[i] != delim; i++ {
				body = append(body, lines[i])
			}
			out[key] = strings.Join(body, "\n")
			continue
		}
		if eq > 0 {
			out[line[:eq]] = line[eq+1:]
		}
	}
	return out
}

// initRepo creates a repository with one commit and the given lightweight
// tags on it.
func initRepo(t *testing.T, tags ...string) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("widget\n"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	head, err := wt.Commit("initial", &git.CommitOptions{Author: testSignature})
	require.NoError(t, err)

	for _, tag := range tags {
		_, err := repo.CreateTag(tag, head, nil)
		require.NoError(t, err)
	}
	return dir, repo
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
