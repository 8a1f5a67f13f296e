package experiment

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedExperiment(t *testing.T) {
	exp, err := Load("supply-chain", "")
	require.NoError(t, err)

	assert.Equal(t, "supply-chain", exp.Name)
	assert.Equal(t, "1", exp.Version)
	assert.Len(t, exp.Variants, 5)
	assert.Contains(t, exp.Query.Base, "seasonal demand")
	assert.Contains(t, exp.Query.Context, "Q4")
}

func TestLoadEmbeddedVariants(t *testing.T) {
	exp, err := Load("supply-chain", "")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"P1_direct", "P2_constrained", "P3_role", "P4_reasoning", "P5_context_first"},
		exp.VariantIDs(),
	)

	v, err := exp.Variant("P2_constrained")
	require.NoError(t, err)
	assert.Equal(t, "Constrained", v.Name)
	assert.Contains(t, v.Template, "250 words")
}

func TestLoadNonexistentExperiment(t *testing.T) {
	_, err := Load("no-such-experiment", "")
	assert.Error(t, err)
}

func TestListEmbeddedExperiments(t *testing.T) {
	names, err := List("")
	require.NoError(t, err)
	assert.Contains(t, names, "supply-chain")
}

func TestExperimentDefaults(t *testing.T) {
	exp, err := Load("supply-chain", "")
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-flash", exp.Model.Name)
	assert.Equal(t, 60*time.Second, exp.Model.CallTimeout.Std())
	assert.Equal(t, 600, exp.Evaluation.WordLimit)
}

func TestVariantRender(t *testing.T) {
	v := Variant{
		ID:       "test",
		Template: "Context:\n{context}\n\nGiven this context, {query}",
	}
	q := Query{Base: "what is safety stock?", Context: "a warehouse"}

	rendered := v.Render(q)
	assert.Contains(t, rendered, "a warehouse")
	assert.Contains(t, rendered, "what is safety stock?")
	assert.NotContains(t, rendered, "{query}")
	assert.NotContains(t, rendered, "{context}")
}

func TestVariantPreview(t *testing.T) {
	v := Variant{ID: "p", Template: "{query}"}
	q := Query{Base: "a fairly long question about inventory policy and planning"}

	assert.Equal(t, "a fairly lo...", v.Preview(q, 11))
	assert.Equal(t, q.Base, v.Preview(q, 500))
}

func TestUnknownVariant(t *testing.T) {
	exp, err := Load("supply-chain", "")
	require.NoError(t, err)

	_, err = exp.Variant("P9_unknown")
	assert.ErrorContains(t, err, "unknown variant")
}

func TestLoadExternalExperiment(t *testing.T) {
	dir := t.TempDir()
	expDir := filepath.Join(dir, "custom")
	require.NoError(t, os.MkdirAll(expDir, 0o755))

	config := `name: custom
query:
  base: what is a reorder point?
variants:
  - id: only
    template: "{query}"
evaluation:
  completeness_checklist:
    - reorder point
`
	require.NoError(t, os.WriteFile(filepath.Join(expDir, "config.yaml"), []byte(config), 0o644))

	exp, err := Load("custom", dir)
	require.NoError(t, err)
	assert.Equal(t, "custom", exp.Name)
	assert.Len(t, exp.Variants, 1)
}

func TestLoadMissingRequiredKey(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		config  string
		wantKey string
	}{
		{
			name: "missing query base",
			config: `name: broken
variants:
  - id: only
    template: "{query}"
evaluation:
  completeness_checklist: [x]
`,
			wantKey: "query.base",
		},
		{
			name: "missing variants",
			config: `name: broken
query:
  base: q
evaluation:
  completeness_checklist: [x]
`,
			wantKey: "variants",
		},
		{
			name: "missing checklist",
			config: `name: broken
query:
  base: q
variants:
  - id: only
    template: "{query}"
`,
			wantKey: "evaluation.completeness_checklist",
		},
		{
			name: "missing variant template",
			config: `name: broken
query:
  base: q
variants:
  - id: only
evaluation:
  completeness_checklist: [x]
`,
			wantKey: "variants[].template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expDir := filepath.Join(dir, "broken")
			require.NoError(t, os.MkdirAll(expDir, 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(expDir, "config.yaml"), []byte(tt.config), 0o644))

			_, err := Load("broken", dir)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantKey)
		})
	}
}

func TestLoadDuplicateVariantID(t *testing.T) {
	dir := t.TempDir()
	expDir := filepath.Join(dir, "dup")
	require.NoError(t, os.MkdirAll(expDir, 0o755))

	config := `name: dup
query:
  base: q
variants:
  - id: same
    template: "{query}"
  - id: same
    template: "{query} again"
evaluation:
  completeness_checklist: [x]
`
	require.NoError(t, os.WriteFile(filepath.Join(expDir, "config.yaml"), []byte(config), 0o644))

	_, err := Load("dup", dir)
	assert.ErrorContains(t, err, "duplicate variant id")
}
