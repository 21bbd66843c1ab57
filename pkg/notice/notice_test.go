package notice

import (
	"strings"
	"testing"
)

const dupont = "DUPONT, Jean (1 janvier 1900, Paris – 2 février 1980, Lyon)\n" +
	"Profession ou activité principale\nPeintre\n" +
	"Autres activités\nGraveur\n"

const martin = "MARTIN, Marie (12 mai 1850, Rouen – 3 mars 1921, Nice)\n" +
	"Dernière mise à jour le 14 octobre 2020\n" +
	"Auteur de la notice : Claire Lefèvre\n" +
	"Profession ou activité principale\n" +
	"Collectionneuse, marchande\n" +
	"d’estampes\n" +
	"Sujets d’étude\n" +
	"Gravure japonaise\n"

func TestSegment_TwoRecords(t *testing.T) {
	text := "Résultats de la recherche\n\n" + dupont + martin

	records := Segment(text, 0)
	if len(records) != 2 {
		t.Fatalf("Segment = %d records, want 2", len(records))
	}
	if !strings.HasPrefix(records[0], "DUPONT, Jean") {
		t.Errorf("records[0] starts with %q", records[0][:20])
	}
	if !strings.HasPrefix(records[1], "MARTIN, Marie") {
		t.Errorf("records[1] starts with %q", records[1][:20])
	}
	if records[0] != dupont {
		t.Errorf("records[0] = %q, want it to end where MARTIN begins", records[0])
	}
	if records[1] != martin {
		t.Errorf("records[1] = %q, want rest of text", records[1])
	}
}

func TestSegment_Limit(t *testing.T) {
	text := dupont + martin + "DURAND, Paul\nSculpteur\n"

	if got := len(Segment(text, 0)); got != 3 {
		t.Errorf("Segment(limit 0) = %d, want 3", got)
	}
	got := Segment(text, 2)
	if len(got) != 2 {
		t.Fatalf("Segment(limit 2) = %d, want 2", len(got))
	}
	if got[1] != martin {
		t.Errorf("second record = %q, want it to stop at DURAND", got[1])
	}
	if n := Count(text); n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestSegment_NoNameLine(t *testing.T) {
	text := "Aucune notice ici.\nProfession ou activité principale\nPeintre"
	if got := Segment(text, 0); len(got) != 0 {
		t.Errorf("Segment = %v, want empty", got)
	}
	if got := SegmentSingle("  " + text + "\n\n"); got != text {
		t.Errorf("SegmentSingle = %q, want trimmed input", got)
	}
}

func TestSegment_NameVariants(t *testing.T) {
	text := "DE LA TOUR, Georges\nx\nD’ANGIVILLER, Charles\ny\nSAINT-AUBIN, Gabriel\nz\nÉLUARD, Paul\n"
	if got := len(Segment(text, 0)); got != 4 {
		t.Errorf("Segment = %d, want 4", got)
	}

	// Lowercase or indented lines do not start a record.
	text = "Dupont, Jean\n  DUPONT, Jean\nParis, 1900\n"
	if got := Segment(text, 0); len(got) != 0 {
		t.Errorf("Segment = %v, want empty", got)
	}
}

func TestSegment_CRLF(t *testing.T) {
	text := strings.ReplaceAll(dupont+martin, "\n", "\r\n")
	records := Segment(text, 0)
	if len(records) != 2 {
		t.Fatalf("Segment = %d, want 2", len(records))
	}
	if strings.Contains(records[0], "\r") {
		t.Error("records keep carriage returns")
	}
}

func TestExtract_Dupont(t *testing.T) {
	r := Extract(dupont)

	want := Record{
		Name:            "DUPONT, Jean",
		BirthDate:       "1 janvier 1900",
		BirthPlace:      "Paris",
		DeathDate:       "2 février 1980",
		DeathPlace:      "Lyon",
		Profession:      "Peintre",
		OtherActivities: "Graveur",
	}
	if r != want {
		t.Errorf("Extract =\n%+v\nwant\n%+v", r, want)
	}
}

func TestExtract_AllLabels(t *testing.T) {
	r := Extract(martin)

	tests := []struct {
		field Field
		want  string
	}{
		{FieldName, "MARTIN, Marie"},
		{FieldLastUpdate, "14 octobre 2020"},
		{FieldBirthDate, "12 mai 1850"},
		{FieldBirthPlace, "Rouen"},
		{FieldDeathDate, "3 mars 1921"},
		{FieldDeathPlace, "Nice"},
		{FieldNoticeAuthor, "Claire Lefèvre"},
		{FieldProfession, "Collectionneuse, marchande d’estampes"},
		{FieldOtherActivities, ""},
		{FieldStudySubjects, "Gravure japonaise"},
	}
	for _, tt := range tests {
		if got := r.Get(tt.field); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestExtract_LabelVariants(t *testing.T) {
	text := "BERNARD, Louis (1800-1870)\n" +
		"Mis à jour le : 2 juin 2019\n" +
		"Auteur(s) de la notice : A. Roy, B. Noël\n" +
		"Sujets d'étude : Architecture   gothique\n" +
		"Autres activités:\tÉditeur\n"

	r := Extract(text)
	if r.LastUpdate != "2 juin 2019" {
		t.Errorf("LastUpdate = %q", r.LastUpdate)
	}
	if r.NoticeAuthor != "A. Roy, B. Noël" {
		t.Errorf("NoticeAuthor = %q", r.NoticeAuthor)
	}
	if r.StudySubjects != "Architecture gothique" {
		t.Errorf("StudySubjects = %q", r.StudySubjects)
	}
	if r.OtherActivities != "Éditeur" {
		t.Errorf("OtherActivities = %q", r.OtherActivities)
	}
	if r.BirthDate != "1800" || r.DeathDate != "1870" {
		t.Errorf("life span = %q / %q, want 1800 / 1870", r.BirthDate, r.DeathDate)
	}
	if r.BirthPlace != "" || r.DeathPlace != "" {
		t.Errorf("places = %q / %q, want empty", r.BirthPlace, r.DeathPlace)
	}
}

func TestExtract_LifeSpan(t *testing.T) {
	tests := []struct {
		text                                       string
		birthDate, birthPlace, deathDate, deathPlace string
	}{
		{"X, A (1900 – 1980)", "1900", "", "1980", ""},
		{"X, A (vers 1750, Paris - 1801, Saint-Denis)", "vers 1750", "Paris", "1801", "Saint-Denis"},
		{"X, A (1750, Saint-Omer–1801)", "1750", "Saint-Omer", "1801", ""},
		{"X, A (1750 — 1801, Paris, France)", "1750", "", "1801", "Paris, France"},
		{"X, A (dit Le Jeune)\n(1750–1801)", "1750", "", "1801", ""},
	}
	for _, tt := range tests {
		r := Extract(tt.text)
		got := []string{r.BirthDate, r.BirthPlace, r.DeathDate, r.DeathPlace}
		want := []string{tt.birthDate, tt.birthPlace, tt.deathDate, tt.deathPlace}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("Extract(%q) = %q, want %q", tt.text, got, want)
				break
			}
		}
	}
}

func TestExtract_NoLabels(t *testing.T) {
	r := Extract("DURAND, Paul")
	if r.Name != "DURAND, Paul" {
		t.Errorf("Name = %q", r.Name)
	}
	if r.Found() != 1 {
		t.Errorf("Found = %d, want 1: %+v", r.Found(), r)
	}

	if r := Extract(""); !r.IsEmpty() {
		t.Errorf("Extract(\"\") = %+v, want empty", r)
	}
}

func TestExtract_LabelsOnOneLine(t *testing.T) {
	r := Extract("DUPONT, Jean\nAuteur de la notice : Claire Lefèvre Profession ou activité principale Peintre Autres activités Graveur")
	if r.NoticeAuthor != "Claire Lefèvre" {
		t.Errorf("NoticeAuthor = %q, want Claire Lefèvre", r.NoticeAuthor)
	}
	if r.Profession != "Peintre" {
		t.Errorf("Profession = %q, want Peintre", r.Profession)
	}
	if r.OtherActivities != "Graveur" {
		t.Errorf("OtherActivities = %q, want Graveur", r.OtherActivities)
	}
}

func TestExtract_EmptyBlockIsAbsent(t *testing.T) {
	r := Extract("DURAND, Paul\nProfession ou activité principale\n\n   \nAutres activités\nSculpteur")
	if r.Profession != "" {
		t.Errorf("Profession = %q, want empty", r.Profession)
	}
	if r.OtherActivities != "Sculpteur" {
		t.Errorf("OtherActivities = %q", r.OtherActivities)
	}
}

func TestExtract_NameWithoutGivenNames(t *testing.T) {
	if got := Extract("ANONYME\nGraveur").Name; got != "ANONYME" {
		t.Errorf("Name = %q, want ANONYME", got)
	}
	if got := Extract("Profession ou activité principale\nPeintre").Name; got != "" {
		t.Errorf("Name = %q, want empty", got)
	}
}

func TestExtractAll(t *testing.T) {
	records := ExtractAll("intro\n"+dupont+martin, 0)
	if len(records) != 2 {
		t.Fatalf("ExtractAll = %d, want 2", len(records))
	}
	if records[0].Name != "DUPONT, Jean" || records[1].Name != "MARTIN, Marie" {
		t.Errorf("names = %q, %q", records[0].Name, records[1].Name)
	}
	if records[0].NoticeAuthor != "" {
		t.Errorf("labels leaked across records: %q", records[0].NoticeAuthor)
	}

	if got := ExtractAll("nothing to see", 0); len(got) != 0 {
		t.Errorf("ExtractAll = %v, want empty", got)
	}
}

func TestExtractSingle_Fallback(t *testing.T) {
	r := ExtractSingle("\n  Jean Dupont, peintre  \nProfession ou activité principale\nPeintre\n")
	if r.Name != "Jean Dupont, peintre" {
		t.Errorf("Name = %q, want first line", r.Name)
	}
	if r.Profession != "Peintre" {
		t.Errorf("Profession = %q", r.Profession)
	}

	r = ExtractSingle(dupont + martin)
	if r.Name != "DUPONT, Jean" || r.NoticeAuthor != "" {
		t.Errorf("ExtractSingle read past the first record: %+v", r)
	}
}

func TestRecord_RowAndMap(t *testing.T) {
	r := Extract(dupont)
	row := r.Row()
	if len(row) != len(Columns) {
		t.Fatalf("Row = %d cells, want %d", len(row), len(Columns))
	}
	if row[0] != "DUPONT, Jean" || row[7] != "Peintre" {
		t.Errorf("Row = %q", row)
	}

	m := r.Map()
	if len(m) != len(Columns) {
		t.Errorf("Map = %d keys, want %d", len(m), len(Columns))
	}
	if v, ok := m["Lieu décès"]; !ok || v != "Lyon" {
		t.Errorf("Map[Lieu décès] = %q, %v", v, ok)
	}
	if v, ok := m["Sujets d’étude"]; !ok || v != "" {
		t.Errorf("Map[Sujets d’étude] = %q, %v, want present and empty", v, ok)
	}
}
