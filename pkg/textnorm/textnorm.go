// Package textnorm prepares pasted notice text for parsing: transcoding,
// newline unification, Unicode composition and whitespace collapsing.
package textnorm

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reSpaces     = regexp.MustCompile(`[\s\x{00A0}\x{202F}]+`)
)

// Decode reads r fully and returns its content as UTF-8. An empty or UTF-8
// encoding name means no transcoding.
func Decode(r io.Reader, encoding string) (string, error) {
	var reader io.Reader = r
	if !isUTF8(encoding) {
		e, err := htmlindex.Get(encoding)
		if err != nil {
			return "", fmt.Errorf("unsupported encoding %q: %w", encoding, err)
		}
		reader = transform.NewReader(r, e.NewDecoder())
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return Newlines(string(data)), nil
}

// Newlines unifies line endings to \n and composes decomposed accents (NFC),
// so "é" typed as e + U+0301 matches the labels.
func Newlines(s string) string {
	if s == "" {
		return s
	}
	s = strings.TrimPrefix(s, "\ufeff")
	return norm.NFC.String(reCRLF.ReplaceAllString(s, "\n"))
}

// Collapse replaces every whitespace run (newlines, tabs, non-breaking
// spaces included) with one space and trims the result.
func Collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// FoldAccents lowercases and strips accents (e.g. Février -> fevrier).
func FoldAccents(s string) string {
	result, _, _ := transform.String(stripAccents, strings.ToLower(s))
	return result
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
