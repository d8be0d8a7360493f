package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// concernRule routes one (question, value) pair to a bucket. A rule with a
// literal text always renders that text; otherwise the description is the
// selected value followed by suffix.
type concernRule struct {
	bucket Bucket
	text   string
	suffix string
}

func (r concernRule) describe(value string) string {
	if r.text != "" {
		return r.text
	}
	return value + " " + r.suffix
}

func literal(b Bucket, text string, values ...string) map[string]concernRule {
	m := make(map[string]concernRule, len(values))
	for _, v := range values {
		m[v] = concernRule{bucket: b, text: text}
	}
	return m
}

func listed(b Bucket, suffix string, values ...string) map[string]concernRule {
	m := make(map[string]concernRule, len(values))
	for _, v := range values {
		m[v] = concernRule{bucket: b, suffix: suffix}
	}
	return m
}

// concernRules is keyed by HealthCatalog question id, then option value.
// Values without a rule (and NoIssue) contribute nothing, so questions with
// no entry here never route and the immune and other buckets stay empty.
var concernRules = map[int]map[string]concernRule{
	1:  literal(Metabolic, "Blood sugar management needed", "prediabetic", "type2"),
	2:  literal(Metabolic, "Cardiovascular care required", "borderline", "hypertension", "heart"),
	3:  listed(Digestive, "management", "acidity", "bloating", "constipation", "diarrhea"),
	4:  listed(Respiratory, "care", "asthma", "allergies", "sinusitis"),
	5:  listed(Musculoskeletal, "support", "arthritis", "backpain", "muscle"),
	9:  literal(Mental, "Stress management needed", "high", "chronic"),
	10: listed(Hormonal, "balance", "thyroid", "pcos", "menopause"),
}

// BucketConcerns is one bucket of a ConcernProfile.
type BucketConcerns struct {
	Bucket   Bucket   `json:"bucket"`
	Concerns []string `json:"concerns"`
}

// ConcernProfile maps every bucket to its ordered concern descriptions.
// The zero value is an empty profile with all buckets present.
type ConcernProfile struct {
	lists [8][]string
}

// Concerns returns a copy of the concerns recorded for b, never nil.
func (p ConcernProfile) Concerns(b Bucket) []string {
	i := b.index()
	if i < 0 {
		return []string{}
	}
	out := make([]string, len(p.lists[i]))
	copy(out, p.lists[i])
	return out
}

// Entries lists every bucket in enumeration order, including empty ones.
func (p ConcernProfile) Entries() []BucketConcerns {
	out := make([]BucketConcerns, len(Buckets))
	for i, b := range Buckets {
		out[i] = BucketConcerns{Bucket: b, Concerns: p.Concerns(b)}
	}
	return out
}

// Total counts concerns across all buckets.
func (p ConcernProfile) Total() int {
	n := 0
	for _, l := range p.lists {
		n += len(l)
	}
	return n
}

// Assessment summarizes the profile the way the results screen labels it.
func (p ConcernProfile) Assessment() string {
	switch n := p.Total(); {
	case n == 0:
		return "Excellent Health Profile"
	case n <= 3:
		return "Good Health with Minor Concerns"
	case n <= 6:
		return "Moderate Health Management Needed"
	default:
		return "Comprehensive Care Required"
	}
}

func (p *ConcernProfile) add(b Bucket, concern string) {
	i := b.index()
	p.lists[i] = append(p.lists[i], concern)
}

// MarshalJSON writes an object keyed by bucket in enumeration order with an
// array (possibly empty) for every bucket.
func (p ConcernProfile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range Buckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(b))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Concerns(b))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form written by MarshalJSON. Missing
// buckets decode as empty; unknown buckets are rejected.
func (p *ConcernProfile) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out ConcernProfile
	for k, v := range raw {
		i := Bucket(k).index()
		if i < 0 {
			return fmt.Errorf("unknown concern bucket %q", k)
		}
		out.lists[i] = append([]string(nil), v...)
	}
	*p = out
	return nil
}

// Classify turns health-history answers into a concern profile. Questions
// may be left unanswered but not answered twice; answers are processed in
// the order given.
func Classify(answers []Answer) (ConcernProfile, error) {
	var profile ConcernProfile
	answered := make(map[int]bool, len(answers))
	for _, a := range answers {
		q, ok := HealthCatalog.Lookup(a.QuestionID)
		if !ok {
			return ConcernProfile{}, &InvalidAnswerError{QuestionID: a.QuestionID, Reason: "unknown question"}
		}
		if answered[q.ID] {
			return ConcernProfile{}, &InvalidAnswerError{QuestionID: q.ID, Reason: "question answered more than once"}
		}
		answered[q.ID] = true
		values, err := normalize(q, a)
		if err != nil {
			return ConcernProfile{}, err
		}
		rules := concernRules[q.ID]
		for _, v := range values {
			if v == NoIssue {
				continue
			}
			r, ok := rules[v]
			if !ok {
				continue
			}
			profile.add(r.bucket, r.describe(v))
		}
	}
	return profile, nil
}
