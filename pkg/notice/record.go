package notice

// Field is the stable machine key of a record field.
type Field string

const (
	FieldName            Field = "name"
	FieldLastUpdate      Field = "last_update"
	FieldBirthDate       Field = "birth_date"
	FieldBirthPlace      Field = "birth_place"
	FieldDeathDate       Field = "death_date"
	FieldDeathPlace      Field = "death_place"
	FieldNoticeAuthor    Field = "notice_author"
	FieldProfession      Field = "profession"
	FieldOtherActivities Field = "other_activities"
	FieldStudySubjects   Field = "study_subjects"
)

// Fields lists every field in output order.
var Fields = []Field{
	FieldName,
	FieldLastUpdate,
	FieldBirthDate,
	FieldBirthPlace,
	FieldDeathDate,
	FieldDeathPlace,
	FieldNoticeAuthor,
	FieldProfession,
	FieldOtherActivities,
	FieldStudySubjects,
}

// Columns are the spreadsheet headers, aligned with Fields.
var Columns = []string{
	"Nom",
	"Dernière mise à jour",
	"Date naissance",
	"Lieu naissance",
	"Date décès",
	"Lieu décès",
	"Auteur de la notice",
	"Profession ou activité principale",
	"Autres activités",
	"Sujets d’étude",
}

// Record is one biography entry. An absent field is the empty string.
type Record struct {
	Name            string `json:"name"`
	LastUpdate      string `json:"last_update"`
	BirthDate       string `json:"birth_date"`
	BirthPlace      string `json:"birth_place"`
	DeathDate       string `json:"death_date"`
	DeathPlace      string `json:"death_place"`
	NoticeAuthor    string `json:"notice_author"`
	Profession      string `json:"profession"`
	OtherActivities string `json:"other_activities"`
	StudySubjects   string `json:"study_subjects"`
}

// Get returns the value of f.
func (r Record) Get(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldLastUpdate:
		return r.LastUpdate
	case FieldBirthDate:
		return r.BirthDate
	case FieldBirthPlace:
		return r.BirthPlace
	case FieldDeathDate:
		return r.DeathDate
	case FieldDeathPlace:
		return r.DeathPlace
	case FieldNoticeAuthor:
		return r.NoticeAuthor
	case FieldProfession:
		return r.Profession
	case FieldOtherActivities:
		return r.OtherActivities
	case FieldStudySubjects:
		return r.StudySubjects
	}
	return ""
}

func (r *Record) set(f Field, v string) {
	switch f {
	case FieldName:
		r.Name = v
	case FieldLastUpdate:
		r.LastUpdate = v
	case FieldBirthDate:
		r.BirthDate = v
	case FieldBirthPlace:
		r.BirthPlace = v
	case FieldDeathDate:
		r.DeathDate = v
	case FieldDeathPlace:
		r.DeathPlace = v
	case FieldNoticeAuthor:
		r.NoticeAuthor = v
	case FieldProfession:
		r.Profession = v
	case FieldOtherActivities:
		r.OtherActivities = v
	case FieldStudySubjects:
		r.StudySubjects = v
	}
}

// Row renders the record in Columns order.
func (r Record) Row() []string {
	row := make([]string, len(Fields))
	for i, f := range Fields {
		row[i] = r.Get(f)
	}
	return row
}

// Map renders the record keyed by column header. Every key is present.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(Fields))
	for i, f := range Fields {
		m[Columns[i]] = r.Get(f)
	}
	return m
}

// Found counts the populated fields.
func (r Record) Found() int {
	n := 0
	for _, f := range Fields {
		if r.Get(f) != "" {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no field was recovered.
func (r Record) IsEmpty() bool {
	return r.Found() == 0
}
