package notice

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind tells how the body following a label is captured.
type Kind string

const (
	// KindLine captures the rest of the label's line.
	KindLine Kind = "line"
	// KindBlock captures everything up to the next known label or end of record.
	KindBlock Kind = "block"
	// KindStop is only a stop marker for block bodies.
	KindStop Kind = "stop"
)

// Label is one recognized section marker. Patterns are literal phrases:
// spaces match any whitespace run and apostrophes match ' or ’.
// Regex, when set, is used verbatim instead.
type Label struct {
	Field    Field    `yaml:"field,omitempty" json:"field,omitempty"`
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
	Kind     Kind     `yaml:"kind" json:"kind"`
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Regex    string   `yaml:"regex,omitempty" json:"regex,omitempty"`
}

// Vocabulary is the ordered label set driving label-bound extraction.
type Vocabulary struct {
	Version         string  `yaml:"version" json:"version"`
	InheritDefaults bool    `yaml:"inherit_defaults" json:"inherit_defaults"`
	Labels          []Label `yaml:"labels" json:"labels"`
}

// labelFields are the fields a line or block label may populate.
var labelFields = map[Field]bool{
	FieldNoticeAuthor:    true,
	FieldProfession:      true,
	FieldOtherActivities: true,
	FieldStudySubjects:   true,
}

// DefaultVocabulary returns the labels of the INHA dictionary notices.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Version: "builtin",
		Labels: []Label{
			{Field: FieldNoticeAuthor, Kind: KindLine, Patterns: []string{"Auteur(s) de la notice", "Auteurs de la notice", "Auteur de la notice"}},
			{Field: FieldProfession, Kind: KindBlock, Patterns: []string{"Profession ou activité principale"}},
			{Field: FieldOtherActivities, Kind: KindBlock, Patterns: []string{"Autres activités"}},
			{Field: FieldStudySubjects, Kind: KindBlock, Patterns: []string{"Sujets d’étude"}},
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file. With inherit_defaults, labels
// for a field already in the defaults replace them and the others are appended.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	if v.InheritDefaults {
		v.Labels = merge(DefaultVocabulary().Labels, v.Labels)
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return &v, nil
}

// Validate checks every label has a known kind, a target field when it
// captures a body, and at least one pattern.
func (v *Vocabulary) Validate() error {
	if len(v.Labels) == 0 {
		return fmt.Errorf("no labels defined")
	}
	for i, l := range v.Labels {
		switch l.Kind {
		case KindLine, KindBlock:
			if !labelFields[l.Field] {
				return fmt.Errorf("label %d: field %q cannot be label-bound", i, l.Field)
			}
		case KindStop:
		default:
			return fmt.Errorf("label %d: unknown kind %q", i, l.Kind)
		}
		if len(l.Patterns) == 0 && l.Regex == "" {
			return fmt.Errorf("label %d: no patterns", i)
		}
	}
	return nil
}

func merge(base, overrides []Label) []Label {
	out := make([]Label, 0, len(base)+len(overrides))
	replaced := make(map[Field]bool)
	for _, o := range overrides {
		if o.Field != "" {
			replaced[o.Field] = true
		}
	}
	for _, b := range base {
		if !replaced[b.Field] {
			out = append(out, b)
		}
	}
	return append(out, overrides...)
}
