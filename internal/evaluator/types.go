package evaluator

// Issue identifies a detected response quality problem.
type Issue string

const (
	IssueOverElaboration       Issue = "OVER_ELABORATION"
	IssueMissingUncertainty    Issue = "MISSING_UNCERTAINTY"
	IssueOverconfidence        Issue = "OVERCONFIDENCE"
	IssuePossibleHallucination Issue = "POSSIBLE_HALLUCINATION"
)

// AllIssues lists every issue kind in report order.
var AllIssues = []Issue{
	IssueOverElaboration,
	IssueMissingUncertainty,
	IssueOverconfidence,
	IssuePossibleHallucination,
}

// Checklist holds the reference material a response is evaluated against.
type Checklist struct {
	// Topics are the expected-coverage phrases used for the completeness score.
	Topics []string

	// AccuracyCriteria are the key-concept phrases used by the accuracy scorer.
	// When empty, Topics are used for accuracy as well.
	AccuracyCriteria []string

	// ReferenceContext is the context text supplied with the query. Numeric
	// claims appearing here are not counted as potential hallucinations.
	ReferenceContext string
}

// criteria returns the phrases the accuracy scorer should check.
func (c Checklist) criteria() []string {
	if len(c.AccuracyCriteria) > 0 {
		return c.AccuracyCriteria
	}
	return c.Topics
}

// Thresholds configures the issue detection heuristics.
type Thresholds struct {
	// WordLimit is the word count above which a response is flagged as
	// over-elaborated.
	WordLimit int

	// HedgePhrases are the uncertainty markers whose complete absence raises
	// MISSING_UNCERTAINTY.
	HedgePhrases []string

	// AbsolutePhrases are the absolute-language markers that raise
	// OVERCONFIDENCE when they appear without a nearby hedge.
	AbsolutePhrases []string

	// HedgeWindow is the number of characters around an absolute phrase that
	// are searched for a hedge before it counts as overconfident.
	HedgeWindow int

	// StatThreshold is the number of unreferenced numeric claims above which
	// POSSIBLE_HALLUCINATION is raised.
	StatThreshold int
}

// DefaultThresholds returns the thresholds used by the supply-chain lab.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WordLimit: 600,
		HedgePhrases: []string{
			"may", "might", "could", "typically", "often",
			"generally", "can vary", "depends on", "depending on",
		},
		AbsolutePhrases: []string{
			"definitely", "certainly", "absolutely", "without a doubt",
			"always", "never", "guaranteed",
		},
		HedgeWindow:   80,
		StatThreshold: 3,
	}
}

// normalize fills zero-valued fields with defaults so a partially configured
// Thresholds behaves sensibly.
func (t Thresholds) normalize() Thresholds {
	d := DefaultThresholds()
	if t.WordLimit <= 0 {
		t.WordLimit = d.WordLimit
	}
	if len(t.HedgePhrases) == 0 {
		t.HedgePhrases = d.HedgePhrases
	}
	if len(t.AbsolutePhrases) == 0 {
		t.AbsolutePhrases = d.AbsolutePhrases
	}
	if t.HedgeWindow <= 0 {
		t.HedgeWindow = d.HedgeWindow
	}
	if t.StatThreshold <= 0 {
		t.StatThreshold = d.StatThreshold
	}
	return t
}

// Result holds the metrics computed for a single response. Instances are
// immutable after Evaluate returns them.
type Result struct {
	// Accuracy is the coarse correctness score: 0 (wrong), 1 (partial),
	// 2 (fully correct).
	Accuracy int `json:"accuracy"`

	// Completeness is the percentage of checklist topics covered, 0-100,
	// rounded to one decimal.
	Completeness float64 `json:"completeness"`

	WordCount  int `json:"word_count"`
	TokenCount int `json:"token_count,omitempty"`

	// WordsPerToken and EfficiencyRating are only set when a token count is
	// attached via WithTokenCount.
	WordsPerToken    float64 `json:"words_per_token,omitempty"`
	EfficiencyRating string  `json:"efficiency_rating,omitempty"`

	MatchedTopics []string `json:"matched_topics,omitempty"`
	MissingTopics []string `json:"missing_topics,omitempty"`

	Issues []Issue `json:"issues"`
}

// HasIssue reports whether the result contains the given issue flag.
func (r Result) HasIssue(issue Issue) bool {
	for _, i := range r.Issues {
		if i == issue {
			return true
		}
	}
	return false
}

// WithTokenCount returns a copy of the result annotated with the token count
// reported by the provider and the derived efficiency metrics.
func (r Result) WithTokenCount(tokens int) Result {
	r.TokenCount = tokens
	if tokens > 0 {
		r.WordsPerToken = round2(float64(r.WordCount) / float64(tokens))
	}
	r.EfficiencyRating = rateEfficiency(tokens)
	return r
}

// rateEfficiency buckets a token count into a conciseness rating.
func rateEfficiency(tokens int) string {
	switch {
	case tokens < 200:
		return "Concise"
	case tokens < 500:
		return "Moderate"
	default:
		return "Verbose"
	}
}
