// Package datenorm converts free-form French or English date expressions
// ("26 février 1781", "1er mars 1900", "26/02/1781") into DD/MM/YYYY.
package datenorm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	gocache "github.com/patrickmn/go-cache"

	"github.com/hazyhaar/notice-registry/pkg/textnorm"
)

// Invalid marks a value that could not be normalized in Sentinel mode.
const Invalid = "DATE_INVALID"

// Layout is the canonical output format.
const Layout = "02/01/2006"

// ErrUnparsed is returned by Parse when no date could be recognized.
var ErrUnparsed = errors.New("unparsed date")

// Policy selects what Normalize returns on failure.
type Policy int

const (
	// Passthrough returns the cleaned input unchanged (single field display).
	Passthrough Policy = iota
	// Sentinel returns Invalid (bulk column conversion, flagged for review).
	Sentinel
)

// ParsePolicy maps "passthrough" / "sentinel" to a Policy. Empty means Passthrough.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "passthrough":
		return Passthrough, nil
	case "sentinel", "strict":
		return Sentinel, nil
	default:
		return Passthrough, fmt.Errorf("unknown date policy %q", s)
	}
}

func (p Policy) String() string {
	if p == Sentinel {
		return "sentinel"
	}
	return "passthrough"
}

// Precision tells how much of the date the input actually carried.
type Precision int

const (
	PrecisionDay Precision = iota
	PrecisionMonth
	PrecisionYear
)

// PartialPolicy decides how month/year-only and year-only dates are rendered.
type PartialPolicy int

const (
	// PartialKeep leaves partial dates unnormalized: no day is invented.
	PartialKeep PartialPolicy = iota
	// PartialFirstDay completes missing day and month with 01.
	PartialFirstDay
)

// Normalizer holds the parsing options. The zero value is not usable; call New.
type Normalizer struct {
	partial PartialPolicy
	cache   *gocache.Cache
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithPartialDates sets the rendering policy for dates missing a day.
func WithPartialDates(p PartialPolicy) Option {
	return func(n *Normalizer) { n.partial = p }
}

// WithCache memoizes results for ttl, for spreadsheets that repeat values.
func WithCache(ttl time.Duration) Option {
	return func(n *Normalizer) {
		if ttl > 0 {
			n.cache = gocache.New(ttl, 2*ttl)
		}
	}
}

// New returns a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{partial: PartialKeep}
	for _, o := range opts {
		o(n)
	}
	return n
}

var defaultNormalizer = New()

// Normalize normalizes input with the default Normalizer.
func Normalize(input string, onFailure Policy) string {
	return defaultNormalizer.Normalize(input, onFailure)
}

type result struct {
	canonical string
	ok        bool
}

// Normalize returns input as DD/MM/YYYY, or on failure the whitespace-cleaned
// input (Passthrough) or Invalid (Sentinel).
func (n *Normalizer) Normalize(input string, onFailure Policy) string {
	cleaned := textnorm.Collapse(input)
	if canonical, ok := n.Canonical(cleaned); ok {
		return canonical
	}
	if onFailure == Sentinel {
		return Invalid
	}
	return cleaned
}

// Canonical reports the DD/MM/YYYY form of input if one can be derived
// under the partial-date policy.
func (n *Normalizer) Canonical(input string) (string, bool) {
	cleaned := textnorm.Collapse(input)
	if n.cache != nil {
		if v, found := n.cache.Get(cleaned); found {
			r := v.(result)
			return r.canonical, r.ok
		}
	}

	r := result{}
	if t, prec, err := n.Parse(cleaned); err == nil {
		if prec == PrecisionDay || n.partial == PartialFirstDay {
			r = result{canonical: t.Format(Layout), ok: true}
		}
	}

	if n.cache != nil {
		n.cache.SetDefault(cleaned, r)
	}
	return r.canonical, r.ok
}

// Parse recognizes a date in input. Missing day or month are set to 1 in the
// returned time; Precision says which parts were present.
func (n *Normalizer) Parse(input string) (time.Time, Precision, error) {
	raw := textnorm.Collapse(input)
	s := translate(raw)
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, 0, fmt.Errorf("%w: %q", ErrUnparsed, input)
	}

	if t, prec, ok := parseLayouts(s); ok {
		return t, prec, nil
	}
	if t, prec, ok := parseFuzzy(s, dayFuzzySpans); ok {
		return t, prec, nil
	}
	// dateparse is case-sensitive on ISO markers (T, Z), so the untranslated
	// input goes first.
	for _, candidate := range []string{raw, s} {
		if t, err := dateparse.ParseIn(candidate, time.UTC, dateparse.PreferMonthFirst(false)); err == nil {
			return t, PrecisionDay, nil
		}
	}
	if t, prec, ok := parseFuzzy(s, partialFuzzySpans); ok {
		return t, prec, nil
	}
	return time.Time{}, 0, fmt.Errorf("%w: %q", ErrUnparsed, input)
}

type layout struct {
	layout    string
	precision Precision
}

// Day-first layouts, tried in order. Month names are matched case-insensitively
// by the time package.
var layouts = []layout{
	{"2 January 2006", PrecisionDay},
	{"2 Jan 2006", PrecisionDay},
	{"2/1/2006", PrecisionDay},
	{"2-1-2006", PrecisionDay},
	{"2.1.2006", PrecisionDay},
	{"2006-1-2", PrecisionDay},
	{"January 2006", PrecisionMonth},
	{"1/2006", PrecisionMonth},
	{"2006", PrecisionYear},
}

func parseLayouts(s string) (time.Time, Precision, bool) {
	for _, l := range layouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.precision, true
		}
	}
	return time.Time{}, 0, false
}

const monthAlt = `(january|february|march|april|may|june|july|august|september|october|november|december)`

// Spans searched inside noisy strings, most precise first. Month and year
// spans are only tried once the tolerant parser has failed.
var (
	dayFuzzySpans = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2} ` + monthAlt + `,? \d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}[/.-]\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`),
	}
	partialFuzzySpans = []*regexp.Regexp{
		regexp.MustCompile(`\b` + monthAlt + `,? \d{4}\b`),
		regexp.MustCompile(`\b\d{4}\b`),
	}
)

func parseFuzzy(s string, spans []*regexp.Regexp) (time.Time, Precision, bool) {
	for _, re := range spans {
		span := re.FindString(s)
		if span == "" {
			continue
		}
		span = strings.ReplaceAll(span, ",", "")
		if t, prec, ok := parseLayouts(span); ok {
			return t, prec, true
		}
	}
	return time.Time{}, 0, false
}
