// Package git reads the tag set of a repository with go-git: tag names,
// the commits they point at (annotated tags dereferenced), and HEAD.
package git

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Repository is an opened repository and its worktree root.
type Repository struct {
	repo *git.Repository
	root string
}

// Open opens the repository containing path, walking up to find the .git
// directory. An empty path means the current working directory.
func Open(path string) (*Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	logDebug("[git] repository opened at root %s", root)
	return &Repository{repo: repo, root: root}, nil
}

// Root returns the worktree root directory.
func (r *Repository) Root() string {
	return r.root
}

// Tags returns every tag name, sorted.
func (r *Repository) Tags() ([]string, error) {
	commits, err := r.TagCommits()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(commits))
	for name := range commits {
		names = append(names, name)
	}
	sort.Strings(names)

	logDebug("[git] Tags: found %d tags", len(names))
	return names, nil
}

// TagCommits maps every tag to the commit hash it points at. Annotated tags
// are dereferenced to their target commit.
func (r *Repository) TagCommits() (map[string]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	commits := make(map[string]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash, err := r.peel(ref.Hash())
		if err != nil {
			return fmt.Errorf("resolving tag %s: %w", ref.Name().Short(), err)
		}
		commits[ref.Name().Short()] = hash.String()
		logDebug("[git] tag %s -> %s", ref.Name().Short(), hash)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

// TagExists reports whether a tag with the given name exists.
func (r *Repository) TagExists(name string) (bool, error) {
	_, err := r.repo.Tag(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, git.ErrTagNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("looking up tag %s: %w", name, err)
	}
}

// HeadCommit returns the commit hash HEAD points at.
func (r *Repository) HeadCommit() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the checked-out branch, or "" on a detached HEAD.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD state")
		return "", nil
	}
	return head.Name().Short(), nil
}

// MoveTag points the annotated tag name at the commit of targetTag,
// replacing any existing tag of that name. Nothing is pushed.
func (r *Repository) MoveTag(name, targetTag string, tagger *object.Signature, message string) error {
	ref, err := r.repo.Tag(targetTag)
	if err != nil {
		return fmt.Errorf("looking up tag %s: %w", targetTag, err)
	}
	hash, err := r.peel(ref.Hash())
	if err != nil {
		return fmt.Errorf("resolving tag %s: %w", targetTag, err)
	}

	if err := r.DeleteTag(name); err != nil {
		return err
	}

	logDebug("[git] MoveTag: %s -> %s (%s)", name, targetTag, hash)
	if _, err := r.repo.CreateTag(name, hash, &git.CreateTagOptions{
		Tagger:  tagger,
		Message: message,
	}); err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}
	return nil
}

// DeleteTag removes the local tag name. A missing tag is not an error.
func (r *Repository) DeleteTag(name string) error {
	err := r.repo.DeleteTag(name)
	if err == nil || errors.Is(err, git.ErrTagNotFound) {
		return nil
	}
	return fmt.Errorf("deleting tag %s: %w", name, err)
}

// peel follows annotated tag objects, including tags of tags, down to the
// tagged object. Lightweight tags already name it.
func (r *Repository) peel(hash plumbing.Hash) (plumbing.Hash, error) {
	for {
		tag, err := r.repo.TagObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return hash, nil
		}
		if err != nil {
			return plumbing.ZeroHash, err
		}
		if tag.TargetType != plumbing.TagObject {
			return tag.Target, nil
		}
		hash = tag.Target
	}
}
