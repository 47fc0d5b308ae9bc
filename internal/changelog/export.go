package changelog

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ExportedSection is the serializable view of a section used by
// "changelog show --format yaml|json".
type ExportedSection struct {
	Version string          `yaml:"version" json:"version"`
	Date    string          `yaml:"date,omitempty" json:"date,omitempty"`
	Link    string          `yaml:"link,omitempty" json:"link,omitempty"`
	Notices []string        `yaml:"notices,omitempty" json:"notices,omitempty"`
	Changes []ExportedGroup `yaml:"changes" json:"changes"`
}

// ExportedGroup is the serializable view of a change group.
type ExportedGroup struct {
	Kind    string   `yaml:"kind" json:"kind"`
	Entries []string `yaml:"entries" json:"entries"`
}

// Export converts the sections of c into their serializable form.
func Export(c *Changelog) []ExportedSection {
	out := make([]ExportedSection, len(c.Sections))
	for i, s := range c.Sections {
		out[i] = ExportedSection{
			Version: s.Name(),
			Date:    s.Date,
			Link:    c.SectionLink(i),
			Notices: s.Notices,
			Changes: make([]ExportedGroup, 0, len(s.Groups)),
		}
		for _, g := range s.Groups {
			out[i].Changes = append(out[i].Changes, ExportedGroup{Kind: g.Label, Entries: g.Entries})
		}
	}
	return out
}

// WriteExport encodes sections as "yaml" or "json".
func WriteExport(sections []ExportedSection, format string, w io.Writer) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sections); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sections); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q (valid: yaml, json)", format)
	}
}
