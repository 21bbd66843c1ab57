package datenorm

import (
	"regexp"

	"github.com/hazyhaar/notice-registry/pkg/textnorm"
)

// frenchMonths maps accent-folded French month names and their usual
// abbreviations to English.
var frenchMonths = map[string]string{
	"janvier":   "january",
	"fevrier":   "february",
	"mars":      "march",
	"avril":     "april",
	"mai":       "may",
	"juin":      "june",
	"juillet":   "july",
	"aout":      "august",
	"septembre": "september",
	"octobre":   "october",
	"novembre":  "november",
	"decembre":  "december",
	"janv":      "january",
	"fev":       "february",
	"fevr":      "february",
	"avr":       "april",
	"juil":      "july",
	"sept":      "september",
	"oct":       "october",
	"nov":       "november",
	"dec":       "december",
}

var (
	reFrenchMonth = regexp.MustCompile(`\b(janvier|fevrier|mars|avril|mai|juin|juillet|aout|septembre|octobre|novembre|decembre|janv|fevr|fev|avr|juil|sept|oct|nov|dec)\b\.?`)
	reOrdinal     = regexp.MustCompile(`\b(\d{1,2})(?:er|e|eme)\b`)
)

// translate lowercases s, folds accents, turns French month names into
// English ones and "1er" into "1".
func translate(s string) string {
	s = textnorm.FoldAccents(s)
	s = reFrenchMonth.ReplaceAllStringFunc(s, func(m string) string {
		sub := reFrenchMonth.FindStringSubmatch(m)
		return frenchMonths[sub[1]]
	})
	return reOrdinal.ReplaceAllString(s, "$1")
}
