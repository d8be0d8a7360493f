package assessment

// Distribution holds one integer per constitutional category.
type Distribution struct {
	Vata  int `json:"vata"`
	Pitta int `json:"pitta"`
	Kapha int `json:"kapha"`
}

// Get returns the value for c, or 0 for an unknown category.
func (d Distribution) Get(c Category) int {
	switch c {
	case Vata:
		return d.Vata
	case Pitta:
		return d.Pitta
	case Kapha:
		return d.Kapha
	}
	return 0
}

func (d *Distribution) add(c Category, n int) {
	switch c {
	case Vata:
		d.Vata += n
	case Pitta:
		d.Pitta += n
	case Kapha:
		d.Kapha += n
	}
}

// Total sums the three values.
func (d Distribution) Total() int { return d.Vata + d.Pitta + d.Kapha }

// ConstitutionScore is the result of scoring the Prakriti questionnaire.
// Percentages are rounded independently and may not sum to exactly 100.
type ConstitutionScore struct {
	Counts      Distribution `json:"counts"`
	Percentages Distribution `json:"percentages"`
	Dominant    Category     `json:"dominant"`
	Secondary   Category     `json:"secondary,omitempty"`
}

// Score tallies one answer per PrakritiCatalog question into a constitution
// score. Every question must be answered exactly once with a single value.
func Score(answers []Answer) (ConstitutionScore, error) {
	answered := make(map[int]bool, len(answers))
	var counts Distribution

	for _, a := range answers {
		q, ok := PrakritiCatalog.Lookup(a.QuestionID)
		if !ok {
			return ConstitutionScore{}, &InvalidAnswerError{QuestionID: a.QuestionID, Reason: "unknown question"}
		}
		if answered[q.ID] {
			return ConstitutionScore{}, &InvalidAnswerError{QuestionID: q.ID, Reason: "question answered more than once"}
		}
		values, err := normalize(q, a)
		if err != nil {
			return ConstitutionScore{}, err
		}
		o, _ := q.option(values[0])
		counts.add(o.Category, 1)
		answered[q.ID] = true
	}

	var missing []int
	for _, q := range PrakritiCatalog.Questions {
		if !answered[q.ID] {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		return ConstitutionScore{}, &IncompleteInputError{Missing: missing}
	}

	return ScoreCounts(counts), nil
}

// ScoreCounts derives percentages and dominance from raw counts.
func ScoreCounts(counts Distribution) ConstitutionScore {
	total := counts.Total()
	var pct Distribution
	if total > 0 {
		for _, c := range Categories {
			pct.add(c, roundHalfUpRatio(counts.Get(c)*100, total))
		}
	}

	dominant := highest(counts, "")
	secondary := highest(counts, dominant)
	if counts.Get(secondary) == 0 {
		secondary = ""
	}

	return ConstitutionScore{
		Counts:      counts,
		Percentages: pct,
		Dominant:    dominant,
		Secondary:   secondary,
	}
}

// highest returns the category with the strictly highest count, skipping
// exclude. Equal counts keep the earlier category.
func highest(counts Distribution, exclude Category) Category {
	var best Category
	bestCount := -1
	for _, c := range Categories {
		if c == exclude {
			continue
		}
		if n := counts.Get(c); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// roundHalfUpRatio returns num/den rounded half up. Both must be
// non-negative and den positive.
func roundHalfUpRatio(num, den int) int {
	return (2*num + den) / (2 * den)
}
