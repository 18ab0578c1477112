// Package ingest reads league reports from files, saved pages and live
// sites, parses them, and hands the seasons to the cache, the store and the
// event publishers.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInputUnavailable is wrapped by every Source that cannot produce its text.
var ErrInputUnavailable = errors.New("input unavailable")

// Source produces raw report text.
type Source interface {
	Name() string
	Read(ctx context.Context) (string, error)
}

// Fetcher returns the rendered HTML of a page. browser.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TextSource is report text already in memory.
type TextSource struct {
	Label string
	Text  string
}

func (s TextSource) Name() string {
	if s.Label == "" {
		return "text"
	}
	return s.Label
}

func (s TextSource) Read(context.Context) (string, error) {
	return s.Text, nil
}

// FileSource reads a plain text report.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Read(context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	return string(data), nil
}

// HTMLFileSource reads a saved standings page and converts it to text.
type HTMLFileSource struct {
	Path string
}

func (s HTMLFileSource) Name() string { return s.Path }

func (s HTMLFileSource) Read(context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	text, err := TextFromHTML(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInputUnavailable, s.Path, err)
	}
	return text, nil
}

// URLSource renders a live page. The text starts with the URL on its own
// line, so URL segmentation treats each fetched page as one season.
type URLSource struct {
	URL     string
	Fetcher Fetcher
}

func (s URLSource) Name() string { return s.URL }

func (s URLSource) Read(ctx context.Context) (string, error) {
	if s.Fetcher == nil {
		return "", fmt.Errorf("%w: no fetcher configured for %s", ErrInputUnavailable, s.URL)
	}
	html, err := s.Fetcher.Fetch(ctx, s.URL)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	text, err := TextFromHTML(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInputUnavailable, s.URL, err)
	}
	return s.URL + "\n" + text, nil
}

// MultiSource concatenates its sources in order. Any failing source fails
// the whole read.
type MultiSource []Source

func (m MultiSource) Name() string {
	names := make([]string, len(m))
	for i, s := range m {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

func (m MultiSource) Read(ctx context.Context) (string, error) {
	var b strings.Builder
	for _, s := range m {
		text, err := s.Read(ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// SourceFor picks a Source for a reference: http(s) URLs are fetched, .html
// and .htm files are converted, anything else is read as text.
func SourceFor(ref string, fetcher Fetcher) Source {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return URLSource{URL: ref, Fetcher: fetcher}
	case filepath.Ext(lower) == ".html", filepath.Ext(lower) == ".htm":
		return HTMLFileSource{Path: ref}
	}
	return FileSource{Path: ref}
}
