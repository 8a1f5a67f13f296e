// Package evaluator scores LLM responses against an expected-topic checklist
// and detects failure behaviors (over-elaboration, missing hedging language,
// overconfident claims, unreferenced statistics).
//
// Evaluation is a pure function of its inputs: the same response text and
// checklist always produce an identical Result, and no state is carried
// between calls.
package evaluator

import (
	"math"
	"regexp"
	"strings"
)

// Evaluator computes metrics for response texts. The zero value is not
// usable; construct with New.
type Evaluator struct {
	scorer AccuracyScorer
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithScorer replaces the default coverage-based accuracy scorer.
func WithScorer(s AccuracyScorer) Option {
	return func(e *Evaluator) {
		e.scorer = s
	}
}

// New creates an Evaluator. Without options it scores accuracy with
// CoverageScorer.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{scorer: CoverageScorer{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores a single response text. An empty response is a valid
// observed outcome: it yields zero accuracy and completeness with no issue
// flags rather than an error.
func (e *Evaluator) Evaluate(text string, checklist Checklist, th Thresholds) Result {
	th = th.normalize()

	if strings.TrimSpace(text) == "" {
		return Result{
			MissingTopics: append([]string(nil), checklist.Topics...),
			Issues:        []Issue{},
		}
	}

	lower := lowercase(text)

	matched, missing := matchTopics(lower, checklist.Topics)
	completeness := 0.0
	if len(checklist.Topics) > 0 {
		completeness = round1(float64(len(matched)) / float64(len(checklist.Topics)) * 100)
	}

	words := len(strings.Fields(text))

	result := Result{
		Accuracy:      clampScore(e.scorer.Score(text, checklist.criteria())),
		Completeness:  completeness,
		WordCount:     words,
		MatchedTopics: matched,
		MissingTopics: missing,
		Issues:        []Issue{},
	}

	hasHedge := containsAny(lower, th.HedgePhrases)

	if words > th.WordLimit {
		result.Issues = append(result.Issues, IssueOverElaboration)
	}
	if !hasHedge {
		result.Issues = append(result.Issues, IssueMissingUncertainty)
	}
	if hasUnhedgedAbsolute(lower, th) {
		result.Issues = append(result.Issues, IssueOverconfidence)
	}
	if countUnreferencedStats(text, checklist.ReferenceContext) > th.StatThreshold {
		result.Issues = append(result.Issues, IssuePossibleHallucination)
	}

	return result
}

// matchTopics splits checklist topics into matched and missing sets,
// preserving checklist order.
func matchTopics(lower string, topics []string) (matched, missing []string) {
	for _, topic := range topics {
		if phraseMatches(lower, topic) {
			matched = append(matched, topic)
		} else {
			missing = append(missing, topic)
		}
	}
	return matched, missing
}

// phraseMatches reports whether a checklist phrase is present in the
// lowercased text. The whole phrase counts, as does any individual keyword
// of the phrase, mirroring the keyword matching of the lab's scoring sheet.
func phraseMatches(lower, phrase string) bool {
	p := lowercase(phrase)
	if p == "" {
		return false
	}
	if strings.Contains(lower, p) {
		return true
	}
	for _, kw := range strings.Fields(p) {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, lowercase(p)) {
			return true
		}
	}
	return false
}

// hasUnhedgedAbsolute reports whether any absolute-language phrase occurs
// without a hedge phrase inside the surrounding window.
func hasUnhedgedAbsolute(lower string, th Thresholds) bool {
	for _, phrase := range th.AbsolutePhrases {
		p := lowercase(phrase)
		if p == "" {
			continue
		}
		for from := 0; ; {
			idx := strings.Index(lower[from:], p)
			if idx < 0 {
				break
			}
			idx += from

			start := idx - th.HedgeWindow
			if start < 0 {
				start = 0
			}
			end := idx + len(p) + th.HedgeWindow
			if end > len(lower) {
				end = len(lower)
			}
			if !containsAny(lower[start:end], th.HedgePhrases) {
				return true
			}
			from = idx + len(p)
		}
	}
	return false
}

// statPattern matches specific numeric claims: multi-digit percentages and
// dollar amounts, optionally scaled by million/billion.
var statPattern = regexp.MustCompile(`\b\d{2,}\s*%|\$\d+(?:,\d+)*(?:\.\d+)?(?:\s*(?:million|billion))?`)

// countUnreferencedStats counts numeric claims in the response that do not
// appear verbatim in the supplied reference context.
func countUnreferencedStats(text, reference string) int {
	stats := statPattern.FindAllString(text, -1)
	if len(stats) == 0 {
		return 0
	}
	refLower := lowercase(reference)
	count := 0
	for _, stat := range stats {
		if refLower == "" || !strings.Contains(refLower, lowercase(stat)) {
			count++
		}
	}
	return count
}

func lowercase(s string) string {
	return strings.ToLower(s)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
