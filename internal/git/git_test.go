// Package git tests tag listing and annotated tag dereferencing.
// Related: internal/git/git.go
// Tags: git, tags, go-git

package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSignature = &object.Signature{
	Name:  "Release Bot",
	Email: "bot@example.com",
	When:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

// initRepo creates a repository with one commit per message and returns the
// commit hashes in order.
func initRepo(t *testing.T, messages ...string) (string, *git.Repository, []plumbing.Hash) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	hashes := make([]plumbing.Hash, 0, len(messages))
	for _, msg := range messages {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "CHANGELOG.md"), []byte(msg+"\n"), 0o644))
		_, err := wt.Add("CHANGELOG.md")
		require.NoError(t, err)
		hash, err := wt.Commit(msg, &git.CommitOptions{Author: testSignature})
		require.NoError(t, err)
		hashes = append(hashes, hash)
	}
	return dir, repo, hashes
}

func TestOpen(t *testing.T) {
	t.Parallel()

	dir, _, _ := initRepo(t, "initial")
	sub := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	r, err := Open(sub)
	require.NoError(t, err)
	assert.Equal(t, dir, r.Root())

	_, err = Open(t.TempDir())
	assert.Error(t, err)
}

func TestTagCommits(t *testing.T) {
	t.Parallel()

	dir, repo, hashes := initRepo(t, "first", "second")

	_, err := repo.CreateTag("v1.0.0", hashes[0], nil)
	require.NoError(t, err)
	_, err = repo.CreateTag("v1.1.0", hashes[1], &git.CreateTagOptions{
		Tagger:  testSignature,
		Message: "Release 1.1.0",
	})
	require.NoError(t, err)
	_, err = repo.CreateTag("v1", hashes[1], &git.CreateTagOptions{
		Tagger:  testSignature,
		Message: "Update major tag",
	})
	require.NoError(t, err)

	r, err := Open(dir)
	require.NoError(t, err)

	commits, err := r.TagCommits()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"v1.0.0": hashes[0].String(),
		"v1.1.0": hashes[1].String(),
		"v1":     hashes[1].String(),
	}, commits)

	tags, err := r.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v1.0.0", "v1.1.0"}, tags)
}

func TestTagExists(t *testing.T) {
	t.Parallel()

	dir, repo, hashes := initRepo(t, "first")
	_, err := repo.CreateTag("v0.1.0", hashes[0], nil)
	require.NoError(t, err)

	r, err := Open(dir)
	require.NoError(t, err)

	exists, err := r.TagExists("v0.1.0")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = r.TagExists("v0.2.0")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHeadAndBranch(t *testing.T) {
	t.Parallel()

	dir, repo, hashes := initRepo(t, "first", "second")

	r, err := Open(dir)
	require.NoError(t, err)

	head, err := r.HeadCommit()
	require.NoError(t, err)
	assert.Equal(t, hashes[1].String(), head)

	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "master", branch)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: hashes[0]}))

	branch, err = r.CurrentBranch()
	require.NoError(t, err)
	assert.Empty(t, branch)
}

func TestSetDebugLogger(t *testing.T) {
	var lines []string
	SetDebugLogger(func(format string, args ...any) {
		lines = append(lines, format)
	})
	defer SetDebugLogger(nil)

	dir, _, _ := initRepo(t, "first")
	_, err := Open(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}

func TestMoveTag(t *testing.T) {
	t.Parallel()

	dir, repo, hashes := initRepo(t, "first", "second")
	_, err := repo.CreateTag("v1.0.0", hashes[0], nil)
	require.NoError(t, err)
	_, err = repo.CreateTag("v1.1.0", hashes[1], &git.CreateTagOptions{
		Tagger:  testSignature,
		Message: "Release 1.1.0",
	})
	require.NoError(t, err)

	r, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, r.MoveTag("v1", "v1.0.0", testSignature, "Update major tag"))
	commits, err := r.TagCommits()
	require.NoError(t, err)
	assert.Equal(t, hashes[0].String(), commits["v1"])

	require.NoError(t, r.MoveTag("v1", "v1.1.0", testSignature, "Update major tag"))
	commits, err = r.TagCommits()
	require.NoError(t, err)
	assert.Equal(t, hashes[1].String(), commits["v1"])

	assert.Error(t, r.MoveTag("v2", "v2.0.0", testSignature, "Update major tag"))

	require.NoError(t, r.DeleteTag("v1"))
	require.NoError(t, r.DeleteTag("v1"))
	exists, err := r.TagExists("v1")
	require.NoError(t, err)
	assert.False(t, exists)
}
