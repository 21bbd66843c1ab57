package notice

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/notice-registry/pkg/textnorm"
)

const (
	upperClass = `A-ZÀÂÄÇÉÈÊËÎÏÔÖÙÛÜŸŒÆ`
	upperRun   = `[` + upperClass + `][` + upperClass + `' ’-]*`
)

// reNameLine matches the start of a record: an uppercase surname run
// followed by a comma at the beginning of a line.
var reNameLine = regexp.MustCompile(`(?m)^` + upperRun + `,`)

// Segment splits pasted text into record substrings, one per name line.
// Each record runs from its name line up to the next one or end of text.
// Text before the first name line is dropped. limit <= 0 means no limit.
func Segment(text string, limit int) []string {
	text = textnorm.Newlines(text)
	locs := reNameLine.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	records := make([]string, 0, len(locs))
	for i, loc := range locs {
		if limit > 0 && i == limit {
			break
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		records = append(records, text[loc[0]:end])
	}
	return records
}

// SegmentSingle returns the first record of text. Without any name line
// the whole trimmed input is treated as one record.
func SegmentSingle(text string) string {
	if records := Segment(text, 1); len(records) == 1 {
		return records[0]
	}
	return strings.TrimSpace(textnorm.Newlines(text))
}

// Count returns the number of name lines in text.
func Count(text string) int {
	return len(reNameLine.FindAllStringIndex(textnorm.Newlines(text), -1))
}
