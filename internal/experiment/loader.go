// Package experiment loads prompt experiment definitions: the query under
// study, the prompt variants, and the evaluation criteria.
//
// Experiments are YAML files. A default supply-chain experiment is embedded
// in the binary; an external directory can supply additional ones.
package experiment

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed all:testdata
var embeddedExperiments embed.FS

// DefaultName is the experiment loaded when none is specified.
const DefaultName = "supply-chain"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load loads an experiment by name, searching first in the external
// directory (if provided), then in the embedded experiments.
func Load(name string, externalDir string) (*Experiment, error) {
	if externalDir != "" {
		dir := filepath.Join(externalDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return loadFromFS(os.DirFS(dir), name)
		}
	}

	// Use path.Join (not filepath.Join) because embed.FS always uses forward slashes.
	subFS, err := fs.Sub(embeddedExperiments, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("experiment %q not found: %w", name, err)
	}
	return loadFromFS(subFS, name)
}

// List returns the names of all available experiments.
func List(externalDir string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string

	entries, err := fs.ReadDir(embeddedExperiments, "testdata")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
				names = append(names, e.Name())
			}
		}
	}

	if externalDir != "" {
		entries, err := os.ReadDir(externalDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() && !seen[e.Name()] {
					names = append(names, e.Name())
				}
			}
		}
	}

	return names, nil
}

func loadFromFS(fsys fs.FS, name string) (*Experiment, error) {
	data, err := fs.ReadFile(fsys, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read config.yaml for experiment %q: %w", name, err)
	}

	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml for experiment %q: %w", name, err)
	}

	applyDefaults(&exp)

	if err := validateExperiment(&exp); err != nil {
		return nil, fmt.Errorf("invalid experiment %q: %w", name, err)
	}

	return &exp, nil
}

func applyDefaults(exp *Experiment) {
	if exp.Model.Name == "" {
		exp.Model.Name = "gemini-1.5-flash"
	}
	if exp.Model.Temperature == 0 {
		exp.Model.Temperature = 0.7
	}
	if exp.Model.MaxOutputTokens == 0 {
		exp.Model.MaxOutputTokens = 1024
	}
	if exp.Model.CallTimeout == 0 {
		exp.Model.CallTimeout = Duration(60 * time.Second)
	}
	if exp.Evaluation.WordLimit == 0 {
		exp.Evaluation.WordLimit = 600
	}
}

// validateExperiment checks required configuration keys and reports the
// missing key by name, so a bad config fails at startup with a clear message.
func validateExperiment(exp *Experiment) error {
	err := validate.Struct(exp)
	if err == nil {
		return checkVariantIDs(exp)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("missing or invalid required key %q", fieldKey(verrs[0]))
	}
	return err
}

// fieldKey maps a validator namespace like "Experiment.Query.Base" to the
// YAML key path the user sees.
func fieldKey(fe validator.FieldError) string {
	switch fe.StructNamespace() {
	case "Experiment.Name":
		return "name"
	case "Experiment.Query.Base":
		return "query.base"
	case "Experiment.Variants":
		return "variants"
	case "Experiment.Evaluation.CompletenessChecklist":
		return "evaluation.completeness_checklist"
	default:
		if fe.Field() == "ID" {
			return "variants[].id"
		}
		if fe.Field() == "Template" {
			return "variants[].template"
		}
		return fe.StructNamespace()
	}
}

func checkVariantIDs(exp *Experiment) error {
	seen := make(map[string]bool, len(exp.Variants))
	for _, v := range exp.Variants {
		if seen[v.ID] {
			return fmt.Errorf("duplicate variant id %q", v.ID)
		}
		seen[v.ID] = true
	}
	return nil
}
