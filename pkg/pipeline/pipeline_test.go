package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/notice-registry/pkg/notice"
)

const text = "DUPONT, Jean (1 janvier 1900, Paris – 2 février 1980, Lyon)\n" +
	"Dernière mise à jour le 14 octobre 2020\n" +
	"Profession ou activité principale\nPeintre\n" +
	"MARTIN, Marie (vers 1850 – 3 mars 1921)\n" +
	"Autres activités\nGraveuse\n"

func TestRows_NormalizeDates(t *testing.T) {
	recs := New(true).Rows(text, 0)
	require.Len(t, recs, 2)

	assert.Equal(t, "01/01/1900", recs[0].BirthDate)
	assert.Equal(t, "02/02/1980", recs[0].DeathDate)
	assert.Equal(t, "14/10/2020", recs[0].LastUpdate)
	assert.Equal(t, "Paris", recs[0].BirthPlace)

	// Unparseable or partial values pass through cleaned.
	assert.Equal(t, "vers 1850", recs[1].BirthDate)
	assert.Equal(t, "03/03/1921", recs[1].DeathDate)
	assert.Equal(t, "", recs[1].LastUpdate)
}

func TestRows_RawDates(t *testing.T) {
	recs := New(false).Rows(text, 1)
	require.Len(t, recs, 1)
	assert.Equal(t, "1 janvier 1900", recs[0].BirthDate)
	assert.Equal(t, "14 octobre 2020", recs[0].LastUpdate)
}

func TestRows_ZeroPipeline(t *testing.T) {
	var p Pipeline
	recs := p.Rows(text, 0)
	require.Len(t, recs, 2)
	assert.Equal(t, "2 février 1980", recs[0].DeathDate)
}

func TestSingle(t *testing.T) {
	r := New(true).Single("Jean Dupont\nProfession ou activité principale\nPeintre")
	assert.Equal(t, "Jean Dupont", r.Name)
	assert.Equal(t, "Peintre", r.Profession)
}

func TestTexts(t *testing.T) {
	recs := New(true).Texts([]string{text, "Notice sans en-tête\nAutres activités\nDoreur"})
	require.Len(t, recs, 3)
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"DUPONT, Jean", "MARTIN, Marie", "Notice sans en-tête"}, names)
	assert.Equal(t, "Doreur", recs[2].OtherActivities)

	assert.Empty(t, New(true).Texts(nil))
	assert.Equal(t, []notice.Record(nil), New(true).Texts(nil))
}
