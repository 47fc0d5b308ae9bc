package actions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// OutputEnv names the file the runner collects step outputs from.
const OutputEnv = "GITHUB_OUTPUT"

// Outputs collects named step outputs in insertion order.
type Outputs struct {
	keys   []string
	values map[string]string
}

// NewOutputs returns an empty output set.
func NewOutputs() *Outputs {
	return &Outputs{values: make(map[string]string)}
}

// Set records key=value, replacing an earlier value for the same key.
func (o *Outputs) Set(key, value string) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value recorded for key.
func (o *Outputs) Get(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the recorded keys in insertion order.
func (o *Outputs) Keys() []string {
	return append([]string(nil), o.keys...)
}

// WriteTo encodes the outputs in the runner's format: "key=value" lines, and
// "key<<DELIM" heredocs for values spanning several lines.
func (o *Outputs) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for _, key := range o.keys {
		value := o.values[key]
		if !strings.ContainsAny(value, "\r\n") {
			fmt.Fprintf(&b, "%s=%s\n", key, value)
			continue
		}

		delim := heredocDelimiter(value)
		fmt.Fprintf(&b, "%s<<%s\n%s\n%s\n", key, delim, strings.TrimSuffix(value, "\n"), delim)
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Flush appends the outputs to path, or writes them to fallback when path is
// empty.
func (o *Outputs) Flush(path string, fallback io.Writer) error {
	if len(o.keys) == 0 {
		return nil
	}
	if path == "" {
		_, err := o.WriteTo(fallback)
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening step output file: %w", err)
	}
	if _, err := o.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing step outputs: %w", err)
	}
	return f.Close()
}

// heredocDelimiter picks a delimiter that does not occur in value.
func heredocDelimiter(value string) string {
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			return "EOF_BUMPCHANGES"
		}
		delim := "ghadelimiter_" + hex.EncodeToString(buf)
		if !strings.Contains(value, delim) {
			return delim
		}
	}
}
