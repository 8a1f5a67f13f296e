package evaluator

// AccuracyScorer assigns the coarse 0-2 accuracy score for a response.
//
// The lab report mixes heuristic and human-judged accuracy numbers, so the
// scoring strategy is injectable: automated runs use CoverageScorer, while
// manually judged scores can be replayed with FixedScorer.
type AccuracyScorer interface {
	// Score returns an accuracy score for the response. Implementations must
	// return a value in {0, 1, 2} for any input, including the empty string.
	Score(text string, criteria []string) int
}

// CoverageScorer scores accuracy from the fraction of key-concept criteria
// present in the response: >=80% coverage scores 2, >=40% scores 1, else 0.
type CoverageScorer struct{}

func (CoverageScorer) Score(text string, criteria []string) int {
	if len(criteria) == 0 {
		return 0
	}
	lower := lowercase(text)
	matched := 0
	for _, criterion := range criteria {
		if phraseMatches(lower, criterion) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(criteria))
	switch {
	case ratio >= 0.8:
		return 2
	case ratio >= 0.4:
		return 1
	default:
		return 0
	}
}

// FixedScorer returns a predetermined score regardless of input, clamped to
// the valid range. It carries human-judged scores through the pipeline.
type FixedScorer int

func (s FixedScorer) Score(string, []string) int {
	return clampScore(int(s))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 2 {
		return 2
	}
	return score
}
