// Package pagescan pulls JSON-like blobs out of sportsbook HTML pages.
package pagescan

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Vodeneev/propline/internal/pkg/extract"
)

const (
	defaultMinLength = 20
	defaultMaxLength = 4 << 20
	defaultMaxBlobs  = 64
)

// Options bounds how much of a page is decoded.
type Options struct {
	MinLength int // blobs shorter than this are ignored
	MaxLength int // blobs longer than this are ignored
	MaxBlobs  int // stop after this many decoded blobs
}

func (o Options) withDefaults() Options {
	if o.MinLength <= 0 {
		o.MinLength = defaultMinLength
	}
	if o.MaxLength <= 0 {
		o.MaxLength = defaultMaxLength
	}
	if o.MaxBlobs <= 0 {
		o.MaxBlobs = defaultMaxBlobs
	}
	return o
}

// data: [...]  or  window.__STATE__ = {...}
var blobStart = regexp.MustCompile(`(?:\bdata\s*:|=)\s*([\[{])`)

// Blobs returns every decodable JSON blob embedded in the page's <script>
// elements, in page order. Script bodies that are JSON as a whole (for example
// application/json or __NEXT_DATA__ scripts) are decoded directly; otherwise
// "data: [...]" arrays and "= {...}" assignments are cut out and decoded
// leniently. Blobs that do not decode are skipped.
func Blobs(html string, opts Options) []extract.Value {
	opts = opts.withDefaults()

	var out []extract.Value
	for _, script := range scripts(html) {
		if len(out) >= opts.MaxBlobs {
			break
		}
		out = append(out, scriptBlobs(script, opts, opts.MaxBlobs-len(out))...)
	}
	return out
}

func scripts(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Debug("pagescan: html parse failed, scanning raw text", "error", err)
		return []string{html}
	}
	var out []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func scriptBlobs(text string, opts Options, limit int) []extract.Value {
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		if len(text) <= opts.MaxLength {
			if v, err := extract.DecodeLenient([]byte(text)); err == nil {
				return []extract.Value{v}
			}
		}
	}

	var out []extract.Value
	next := 0
	for _, loc := range blobStart.FindAllStringSubmatchIndex(text, -1) {
		if len(out) >= limit {
			break
		}
		start := loc[2]
		if start < next {
			// inside a blob that was already taken
			continue
		}
		blob, ok := Balanced(text, start)
		if !ok || len(blob) < opts.MinLength || len(blob) > opts.MaxLength {
			continue
		}
		v, err := extract.DecodeLenient([]byte(blob))
		if err != nil {
			continue
		}
		out = append(out, v)
		next = start + len(blob)
	}
	return out
}

// Balanced returns the bracketed text starting at s[start], which must be
// '{' or '['. Brackets inside quoted strings are ignored. ok is false when the
// text is not closed.
func Balanced(s string, start int) (string, bool) {
	if start < 0 || start >= len(s) || (s[start] != '{' && s[start] != '[') {
		return "", false
	}
	depth := 0
	var quote byte
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
