// Package pipeline turns pasted notice text into output rows: segment,
// extract, then optionally normalize the date fields.
package pipeline

import (
	"log/slog"

	"github.com/hazyhaar/notice-registry/pkg/datenorm"
	"github.com/hazyhaar/notice-registry/pkg/notice"
)

// Pipeline holds the collaborators used to build rows. Zero fields fall back
// to the package defaults.
type Pipeline struct {
	Extractor      *notice.Extractor
	Normalizer     *datenorm.Normalizer
	NormalizeDates bool
	Logger         *slog.Logger
}

// New returns a Pipeline with the default extractor and normalizer.
func New(normalizeDates bool) *Pipeline {
	return &Pipeline{
		Extractor:      notice.Default(),
		Normalizer:     datenorm.New(),
		NormalizeDates: normalizeDates,
	}
}

// Rows segments text and extracts up to limit records (limit <= 0: all).
func (p *Pipeline) Rows(text string, limit int) []notice.Record {
	recs := p.extractor().ExtractAll(text, limit)
	for i := range recs {
		p.normalize(&recs[i])
	}
	p.logSummary("pipeline.rows", recs)
	return recs
}

// Single treats text as one record, as pasted from a single notice page.
func (p *Pipeline) Single(text string) notice.Record {
	r := p.extractor().ExtractSingle(text)
	p.normalize(&r)
	p.logSummary("pipeline.single", []notice.Record{r})
	return r
}

// Texts extracts every record from each text in order, e.g. the notices
// accumulated in a session.
func (p *Pipeline) Texts(texts []string) []notice.Record {
	var recs []notice.Record
	for _, t := range texts {
		if notice.Count(t) == 0 {
			recs = append(recs, p.Single(t))
			continue
		}
		recs = append(recs, p.Rows(t, 0)...)
	}
	return recs
}

func (p *Pipeline) normalize(r *notice.Record) {
	if !p.NormalizeDates {
		return
	}
	n := p.Normalizer
	if n == nil {
		n = datenorm.New()
	}
	r.LastUpdate = normalizeField(n, r.LastUpdate)
	r.BirthDate = normalizeField(n, r.BirthDate)
	r.DeathDate = normalizeField(n, r.DeathDate)
}

// normalizeField keeps absent values absent.
func normalizeField(n *datenorm.Normalizer, v string) string {
	if v == "" {
		return ""
	}
	return n.Normalize(v, datenorm.Passthrough)
}

func (p *Pipeline) extractor() *notice.Extractor {
	if p.Extractor == nil {
		return notice.Default()
	}
	return p.Extractor
}

func (p *Pipeline) logSummary(msg string, recs []notice.Record) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fields := 0
	for _, r := range recs {
		fields += r.Found()
	}
	logger.Debug(msg, "records", len(recs), "fields", fields, "normalize_dates", p.NormalizeDates)
}
