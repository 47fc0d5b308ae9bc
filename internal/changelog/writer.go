package changelog

import (
	"fmt"

	"github.com/ariel-frischer/bumpchanges/internal/fsutil"
)

// WriteFile renders c and atomically replaces the file at path.
func WriteFile(c *Changelog, path string) error {
	content, err := RenderMarkdownString(c)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, []byte(content)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
