package versionfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ariel-frischer/bumpchanges/internal/actions"
	"github.com/ariel-frischer/bumpchanges/internal/fsutil"
	"github.com/ariel-frischer/bumpchanges/internal/version"
)

var (
	// ErrAmbiguousLiteral is returned when a file holds zero or several
	// version literals.
	ErrAmbiguousLiteral = errors.New("ambiguous version literal")

	// ErrUnsafePath is returned for paths outside the repository, inside a
	// protected directory, or not naming a regular file.
	ErrUnsafePath = errors.New("unsafe version file path")
)

// DefaultProtected lists the globs a version file may never match.
var DefaultProtected = []string{"**/.git/**", "**/.github/**"}

// LiteralError reports every line of Path that looked like a version literal.
// An empty Lines means nothing matched.
type LiteralError struct {
	Path  string
	Lines []int
}

func (e *LiteralError) Error() string {
	if len(e.Lines) == 0 {
		return fmt.Sprintf("no version literal found in %s", e.Path)
	}
	lines := make([]string, len(e.Lines))
	for i, n := range e.Lines {
		lines[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("%d version literals found in %s (lines %s)", len(e.Lines), e.Path, strings.Join(lines, ", "))
}

func (e *LiteralError) Unwrap() error {
	return ErrAmbiguousLiteral
}

// PathError describes why a version file path was refused.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("version file %s %s", e.Path, e.Reason)
}

func (e *PathError) Unwrap() error {
	return ErrUnsafePath
}

// Change is one planned literal rewrite.
type Change struct {
	Path     string // relative to the repository root, slash separated
	Line     int
	OldValue string
	NewValue string

	abs     string
	content []byte
}

// Updater plans and applies version literal rewrites below a repository root.
type Updater struct {
	root      string
	protected []string
	logger    *slog.Logger
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithProtected replaces the protected path globs.
func WithProtected(globs []string) UpdaterOption {
	return func(u *Updater) {
		u.protected = globs
	}
}

// WithLogger sets the logger used to report updates.
func WithLogger(logger *slog.Logger) UpdaterOption {
	return func(u *Updater) {
		u.logger = logger
	}
}

// NewUpdater resolves root to an absolute, symlink-free path.
func NewUpdater(root string, opts ...UpdaterOption) (*Updater, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}

	u := &Updater{
		root:      resolved,
		protected: DefaultProtected,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	for _, g := range u.protected {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid protected path glob %q", g)
		}
	}
	return u, nil
}

// SplitList splits a comma-separated file list, dropping empty items.
func SplitList(s string) []string {
	var files []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			files = append(files, item)
		}
	}
	return files
}

// Update rewrites the version literal in every file, or in none of them:
// all files are checked before the first write.
func (u *Updater) Update(target string, files []string) ([]*Change, error) {
	changes, err := u.Plan(target, files)
	if err != nil {
		return nil, err
	}
	if err := u.Apply(changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// Plan validates every file and computes its rewrite without touching disk.
func (u *Updater) Plan(target string, files []string) ([]*Change, error) {
	if len(files) == 0 {
		u.logger.Debug("no version files need to be updated")
		return nil, nil
	}

	v, err := version.ParseLenient(version.StripTagPrefix(target))
	if err != nil {
		return nil, err
	}

	changes := make([]*Change, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, file := range files {
		abs, rel, err := u.resolve(file)
		if err != nil {
			return nil, err
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true

		change, err := planFile(abs, rel, v.String())
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// Apply writes planned changes. Each file is replaced atomically.
func (u *Updater) Apply(changes []*Change) error {
	for _, c := range changes {
		if err := fsutil.WriteFileAtomic(c.abs, c.content); err != nil {
			return fmt.Errorf("updating %s: %w", c.Path, err)
		}
		u.logger.Log(context.Background(), actions.LevelNotice, "version updated",
			"file", c.Path, "line", c.Line, "from", c.OldValue, "to", c.NewValue)
	}
	return nil
}

// resolve maps a user-supplied path to its absolute location and checks it
// is a regular file inside the root and outside every protected glob.
func (u *Updater) resolve(file string) (string, string, error) {
	joined := file
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(u.root, file)
	}

	abs, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", &PathError{Path: file, Reason: "does not exist"}
		}
		return "", "", fmt.Errorf("resolving %s: %w", file, err)
	}

	rel, err := filepath.Rel(u.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", &PathError{Path: file, Reason: "is not within the repository"}
	}
	rel = filepath.ToSlash(rel)

	for _, g := range u.protected {
		if ok, _ := doublestar.Match(g, rel); ok {
			return "", "", &PathError{Path: file, Reason: fmt.Sprintf("is within a protected path (%s)", g)}
		}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", "", fmt.Errorf("checking %s: %w", file, err)
	}
	if !info.Mode().IsRegular() {
		return "", "", &PathError{Path: file, Reason: "is not a regular file"}
	}
	return abs, rel, nil
}

func planFile(abs, rel, target string) (*Change, error) {
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}

	found := FindLiterals(content)
	if len(found) != 1 {
		lineNos := make([]int, len(found))
		for i, m := range found {
			lineNos[i] = m.Line
		}
		return nil, &LiteralError{Path: rel, Lines: lineNos}
	}

	m := found[0]
	lines := splitLines(content)
	line := lines[m.Line-1]
	eol := line[len(trimEOL(line)):]

	var buf bytes.Buffer
	buf.Grow(len(content) + len(target))
	for i, l := range lines {
		if i == m.Line-1 {
			buf.WriteString(m.Replace(target))
			buf.Write(eol)
			continue
		}
		buf.Write(l)
	}

	return &Change{
		Path:     rel,
		Line:     m.Line,
		OldValue: m.Value,
		NewValue: target,
		abs:      abs,
		content:  buf.Bytes(),
	}, nil
}
