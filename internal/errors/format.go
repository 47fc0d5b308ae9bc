package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// palette decorates the parts of a formatted error. The zero value leaves
// text unchanged.
type palette struct {
	label, message, category, fix, bullet, usage func(a ...any) string
}

var colored = palette{
	label:    color.New(color.FgRed, color.Bold).SprintFunc(),
	message:  color.New(color.FgRed).SprintFunc(),
	category: color.New(color.FgYellow).SprintFunc(),
	fix:      color.New(color.FgGreen, color.Bold).SprintFunc(),
	bullet:   color.New(color.FgGreen).SprintFunc(),
	usage:    color.New(color.FgCyan).SprintFunc(),
}

func (p palette) paint(f func(a ...any) string, s string) string {
	if f == nil {
		return s
	}
	return f(s)
}

// FormatError formats a CLIError for a terminal. Colors follow
// color.NoColor, which is off when stderr is not a terminal.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}
	return format(err, colored)
}

// FormatErrorPlain formats a CLIError without colors.
func FormatErrorPlain(err *CLIError) string {
	if err == nil {
		return ""
	}
	return format(err, palette{})
}

func format(err *CLIError, p palette) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s [%s]: %s\n",
		p.paint(p.label, "Error"), p.paint(p.category, err.Category.String()), p.paint(p.message, err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s %s\n", p.paint(p.usage, "Usage:"), p.paint(p.usage, err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", p.paint(p.fix, "To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", p.paint(p.bullet, "•"), step)
		}
	}

	return sb.String()
}

// FormatAnnotation renders a CLIError as the text of a single workflow
// annotation: the category and message on the first line, then one line
// per remediation step. Annotations never carry colors.
func FormatAnnotation(err *CLIError) string {
	if err == nil {
		return ""
	}
	lines := make([]string, 0, len(err.Remediation)+2)
	lines = append(lines, err.Category.String()+": "+err.Message)
	if err.Usage != "" {
		lines = append(lines, "Usage: "+err.Usage)
	}
	for _, step := range err.Remediation {
		lines = append(lines, "Fix: "+step)
	}
	return strings.Join(lines, "\n")
}

// FprintError prints a formatted CLIError to the given writer.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}
