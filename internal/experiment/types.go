package experiment

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can use values like "60s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Experiment is a loaded prompt engineering experiment: the query under
// study, the prompt variants to compare, and the evaluation criteria.
type Experiment struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`

	Query      Query       `yaml:"query"`
	Variants   []Variant   `yaml:"variants" validate:"required,min=1,dive"`
	Evaluation Evaluation  `yaml:"evaluation"`
	Model      ModelConfig `yaml:"model"`
}

// Query holds the base question and optional context block substituted into
// variant templates.
type Query struct {
	Base    string `yaml:"base" validate:"required"`
	Context string `yaml:"context"`
}

// Variant is one fixed prompt phrasing strategy. Variants are immutable
// configuration; they are never modified after loading.
type Variant struct {
	ID       string `yaml:"id" validate:"required"`
	Name     string `yaml:"name"`
	Design   string `yaml:"design"`
	Template string `yaml:"template" validate:"required"`
}

// Render substitutes the query and context into the variant template.
func (v Variant) Render(q Query) string {
	prompt := strings.ReplaceAll(v.Template, "{query}", q.Base)
	prompt = strings.ReplaceAll(prompt, "{context}", q.Context)
	return strings.TrimSpace(prompt)
}

// Preview returns the rendered prompt truncated for table display.
func (v Variant) Preview(q Query, maxLen int) string {
	prompt := v.Render(q)
	if maxLen > 0 && len(prompt) > maxLen {
		return prompt[:maxLen] + "..."
	}
	return prompt
}

// Evaluation configures the response evaluator for this experiment.
type Evaluation struct {
	CompletenessChecklist []string `yaml:"completeness_checklist" validate:"required,min=1"`
	AccuracyCriteria      []string `yaml:"accuracy_criteria"`
	WordLimit             int      `yaml:"word_limit"`
	HedgePhrases          []string `yaml:"hedge_phrases"`
	AbsolutePhrases       []string `yaml:"absolute_phrases"`
	StatThreshold         int      `yaml:"stat_threshold"`
}

// ModelConfig holds the generation settings for the experiment.
type ModelConfig struct {
	Name            string   `yaml:"name"`
	Temperature     float64  `yaml:"temperature"`
	MaxOutputTokens int      `yaml:"max_output_tokens"`
	CallTimeout     Duration `yaml:"call_timeout"`
}

// Variant returns the variant with the given id.
func (e *Experiment) Variant(id string) (*Variant, error) {
	for i := range e.Variants {
		if e.Variants[i].ID == id {
			return &e.Variants[i], nil
		}
	}
	return nil, fmt.Errorf("unknown variant: %s", id)
}

// VariantIDs returns the variant identifiers in declaration order.
func (e *Experiment) VariantIDs() []string {
	ids := make([]string, 0, len(e.Variants))
	for _, v := range e.Variants {
		ids = append(ids, v.ID)
	}
	return ids
}
