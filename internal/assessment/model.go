// Package assessment derives a patient's constitutional (Prakriti) profile,
// health-concern profile and daily calorie plan from questionnaire answers
// and demographics. Everything in this package is pure: no I/O, no shared
// mutable state, safe for concurrent use.
package assessment

import "strings"

// Category is one of the three constitutional categories (doshas).
type Category string

const (
	Vata  Category = "vata"
	Pitta Category = "pitta"
	Kapha Category = "kapha"
)

// Categories lists the constitutional categories in enumeration order. The
// order drives tie-breaks, so it must not change.
var Categories = []Category{Vata, Pitta, Kapha}

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case Vata, Pitta, Kapha:
		return true
	}
	return false
}

// ParseCategory resolves a case-insensitive category name.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// Bucket is a health-domain category that concerns are classified into.
type Bucket string

const (
	Metabolic       Bucket = "metabolic"
	Digestive       Bucket = "digestive"
	Respiratory     Bucket = "respiratory"
	Musculoskeletal Bucket = "musculoskeletal"
	Mental          Bucket = "mental"
	Hormonal        Bucket = "hormonal"
	Immune          Bucket = "immune"
	Other           Bucket = "other"
)

// Buckets lists every concern bucket in output order.
var Buckets = []Bucket{
	Metabolic, Digestive, Respiratory, Musculoskeletal,
	Mental, Hormonal, Immune, Other,
}

func (b Bucket) index() int {
	for i, v := range Buckets {
		if v == b {
			return i
		}
	}
	return -1
}

// Valid reports whether b is a known bucket.
func (b Bucket) Valid() bool { return b.index() >= 0 }

// AnswerMode controls how many options an answer may select.
type AnswerMode string

const (
	SingleSelect AnswerMode = "single-select"
	MultiSelect  AnswerMode = "multi-select"
)

// NoIssue is the sentinel option value meaning "none of the above".
const NoIssue = "none"

// Option is a selectable answer. Constitution options carry the category
// they vote for; health options are routed through the concern rule table.
type Option struct {
	Value    string   `json:"value"`
	Label    string   `json:"label"`
	Category Category `json:"category,omitempty"`
}

// Question is a single catalog entry. Prompt is display-only.
type Question struct {
	ID      int        `json:"id"`
	Prompt  string     `json:"prompt"`
	Mode    AnswerMode `json:"mode"`
	Options []Option   `json:"options"`
}

func (q Question) option(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// Catalog is an ordered, versioned questionnaire.
type Catalog struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	Questions []Question `json:"questions"`
}

// Lookup returns the question with the given id.
func (c Catalog) Lookup(id int) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Answer is the set of option values selected for one question.
type Answer struct {
	QuestionID int      `json:"question_id"`
	Values     []string `json:"values"`
}

// normalize validates a against q and returns the selected values with
// duplicates collapsed and, for multi-select questions, the NoIssue sentinel
// dropped when a real concern is selected alongside it.
func normalize(q Question, a Answer) ([]string, error) {
	if q.Mode == SingleSelect && len(a.Values) != 1 {
		return nil, &InvalidAnswerError{
			QuestionID: q.ID,
			Reason:     "single-select question requires exactly one value",
		}
	}

	seen := make(map[string]bool, len(a.Values))
	values := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		if seen[v] {
			continue
		}
		if _, ok := q.option(v); !ok {
			return nil, &InvalidAnswerError{QuestionID: q.ID, Value: v, Reason: "not an option of this question"}
		}
		seen[v] = true
		values = append(values, v)
	}

	if q.Mode == SingleSelect {
		return values, nil
	}

	if seen[NoIssue] && len(values) > 1 {
		kept := values[:0]
		for _, v := range values {
			if v != NoIssue {
				kept = append(kept, v)
			}
		}
		values = kept
	}
	return values, nil
}
