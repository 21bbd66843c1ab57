// Package notice splits pasted INHA biography notices into records and
// extracts their fields.
package notice

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/notice-registry/pkg/textnorm"
)

var (
	// reName reads the surname run and the given names that follow it on the
	// name line, stopping at the life-span parenthesis.
	reName = regexp.MustCompile(`^(` + upperRun + `)(?:,[ \t]*([^\n(]*)|[ \t]*(?:\n|$))`)

	reLastUpdate = regexp.MustCompile(`(?:Derni[èe]re mise|Mise?) à jour(?: le)?[ \t]*:?[ \t]*([^\n]+)`)

	// reLifeSpan matches the first parenthesized group holding a dash.
	reLifeSpan = regexp.MustCompile(`\(([^()]*[–—-][^()]*)\)`)
)

// bodyGroup names the captured value of a line label, so that groups inside
// a user-supplied regex do not shift it.
const bodyGroup = "label_body"

type compiledLabel struct {
	field Field
	kind  Kind
	re    *regexp.Regexp
	body  int
}

// Extractor reads records with a fixed Vocabulary. It is safe for
// concurrent use.
type Extractor struct {
	vocab  *Vocabulary
	labels []compiledLabel
	stops  []*regexp.Regexp
}

// NewExtractor compiles v. A nil v selects DefaultVocabulary.
func NewExtractor(v *Vocabulary) (*Extractor, error) {
	if v == nil {
		v = DefaultVocabulary()
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{vocab: v}
	for i, l := range v.Labels {
		expr := l.Regex
		if expr == "" {
			expr = phrases(l.Patterns)
		}
		stop, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		e.stops = append(e.stops, stop)

		var re *regexp.Regexp
		switch l.Kind {
		case KindLine:
			re, err = regexp.Compile(`(?m)^[ \t]*(?:` + expr + `)[ \t]*:?[ \t]*(?P<` + bodyGroup + `>[^\n]*)`)
		case KindBlock:
			re, err = regexp.Compile(`(?:` + expr + `)[ \t]*:?`)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		e.labels = append(e.labels, compiledLabel{field: l.Field, kind: l.Kind, re: re, body: re.SubexpIndex(bodyGroup)})
	}
	return e, nil
}

// MustNewExtractor is like NewExtractor but panics on error.
func MustNewExtractor(v *Vocabulary) *Extractor {
	e, err := NewExtractor(v)
	if err != nil {
		panic(err)
	}
	return e
}

// Vocabulary returns the vocabulary e was built from.
func (e *Extractor) Vocabulary() *Vocabulary { return e.vocab }

var defaultExtractor = MustNewExtractor(nil)

// Default returns the Extractor for DefaultVocabulary.
func Default() *Extractor { return defaultExtractor }

// Extract reads one record with the default vocabulary.
func Extract(text string) Record { return defaultExtractor.Extract(text) }

// ExtractAll segments text and extracts every record.
func ExtractAll(text string, limit int) []Record { return defaultExtractor.ExtractAll(text, limit) }

// ExtractSingle treats text as one record.
func ExtractSingle(text string) Record { return defaultExtractor.ExtractSingle(text) }

// Extract reads the fields of one record. Values are raw: dates are not
// normalized. A field with no match is left empty.
func (e *Extractor) Extract(text string) Record {
	text = textnorm.Newlines(text)
	trimmed := strings.TrimSpace(text)

	var r Record
	r.Name = extractName(trimmed)
	if m := reLastUpdate.FindStringSubmatch(text); m != nil {
		r.LastUpdate = textnorm.Collapse(m[1])
	}
	if m := reLifeSpan.FindStringSubmatch(text); m != nil {
		birth, death := splitSpan(m[1])
		r.BirthDate, r.BirthPlace = splitEvent(birth)
		r.DeathDate, r.DeathPlace = splitEvent(death)
	}

	for _, l := range e.labels {
		if r.Get(l.field) != "" {
			continue
		}
		var v string
		switch l.kind {
		case KindLine:
			// The value ends at the end of its line or at the next label,
			// whichever comes first.
			if m := l.re.FindStringSubmatchIndex(text); m != nil && m[2*l.body] >= 0 {
				start, end := m[2*l.body], m[2*l.body+1]
				v = text[start:min(end, e.nextLabel(text, start))]
			}
		case KindBlock:
			if loc := l.re.FindStringIndex(text); loc != nil {
				v = text[loc[1]:e.nextLabel(text, loc[1])]
			}
		}
		r.set(l.field, textnorm.Collapse(v))
	}
	return r
}

// ExtractAll segments text and extracts every record, in input order.
func (e *Extractor) ExtractAll(text string, limit int) []Record {
	segments := Segment(text, limit)
	records := make([]Record, 0, len(segments))
	for _, s := range segments {
		records = append(records, e.Extract(s))
	}
	return records
}

// ExtractSingle treats text as a single record. When no name line is found
// the first non-empty line is used as the name.
func (e *Extractor) ExtractSingle(text string) Record {
	seg := SegmentSingle(text)
	r := e.Extract(seg)
	if r.Name == "" {
		r.Name = firstLine(seg)
	}
	return r
}

// nextLabel returns the offset of the earliest label occurrence at or after
// from, or len(text).
func (e *Extractor) nextLabel(text string, from int) int {
	end := len(text)
	rest := text[from:]
	for _, re := range e.stops {
		if loc := re.FindStringIndex(rest); loc != nil && from+loc[0] < end {
			end = from + loc[0]
		}
	}
	return end
}

func extractName(text string) string {
	m := reName.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	surname := textnorm.Collapse(m[1])
	given := strings.TrimRight(textnorm.Collapse(m[2]), ",; ")
	if given == "" {
		return surname
	}
	return surname + ", " + given
}

// splitSpan cuts a life span on its first en or em dash, else on the first
// spaced hyphen, else on the first hyphen.
func splitSpan(s string) (string, string) {
	if i := strings.IndexAny(s, "–—"); i >= 0 {
		_, size := utf8.DecodeRuneInString(s[i:])
		return s[:i], s[i+size:]
	}
	if i := strings.Index(s, " - "); i >= 0 {
		return s[:i], s[i+3:]
	}
	if i := strings.Index(s, "-"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// splitEvent separates "date, place" on the first comma.
func splitEvent(s string) (date, place string) {
	if i := strings.Index(s, ","); i >= 0 {
		return textnorm.Collapse(s[:i]), textnorm.Collapse(s[i+1:])
	}
	return textnorm.Collapse(s), ""
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if l := textnorm.Collapse(line); l != "" {
			return l
		}
	}
	return ""
}

// phrases builds an alternation from literal label phrases.
func phrases(patterns []string) string {
	alts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		words := strings.Fields(p)
		for i, w := range words {
			words[i] = apostrophes.Replace(regexp.QuoteMeta(w))
		}
		if len(words) > 0 {
			alts = append(alts, strings.Join(words, `\s+`))
		}
	}
	return strings.Join(alts, "|")
}

var apostrophes = strings.NewReplacer("'", "['’]", "’", "['’]")
