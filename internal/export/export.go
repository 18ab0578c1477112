// Package export renders parsed seasons as the JSON documents the league
// site consumes.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/fortuna/rinkstats/internal/parser"
)

// Options controls rendering.
type Options struct {
	// ASCII escapes every non-ASCII character as \uXXXX.
	ASCII bool
}

// Marshal renders seasons as an object keyed by label, in chronological
// order, indented two spaces.
func Marshal(seasons parser.Seasons, opts Options) ([]byte, error) {
	labels := seasons.Labels()
	if len(labels) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, label := range labels {
		key, err := encode(label, "")
		if err != nil {
			return nil, err
		}
		value, err := encode(seasons[label], "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", label, err)
		}

		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(labels)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')

	if opts.ASCII {
		return escapeNonASCII(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

func encode(v any, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// escapeNonASCII rewrites runes above U+007F as \u escapes, using surrogate
// pairs outside the BMP. Valid JSON only carries such runes inside strings.
func escapeNonASCII(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r < utf8.RuneSelf {
			out = append(out, byte(r))
			continue
		}
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
			continue
		}
		out = fmt.Appendf(out, `\u%04x`, r)
	}
	return out
}

// Write renders seasons to w.
func Write(w io.Writer, seasons parser.Seasons, opts Options) error {
	data, err := Marshal(seasons, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile renders seasons to path, replacing it atomically.
func WriteFile(path string, seasons parser.Seasons, opts Options) error {
	data, err := Marshal(seasons, opts)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
