package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.Equal(t, []string{"drawio"}, cfg.Output.Formats)
	assert.NotEmpty(t, cfg.Ignore)
}

func TestLoadYAML(t *testing.T) {
	root := t.TempDir()
	yaml := `ignore:
  - "dist/**"
grouping:
  - pattern: "src/payments/**"
    label: "Payments"
    color: "#112233"
styles:
  api: "#1abc9c"
  bad: "not-a-color"
extensions:
  - ts
  - ".py"
output:
  directory: out
  filename: deps
  formats: [drawio, mermaid]
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "archmap.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/**"}, cfg.Ignore)
	assert.Equal(t, []string{".ts", ".py"}, cfg.Extensions)
	assert.Equal(t, "out", cfg.Output.Directory)
	assert.Equal(t, "deps", cfg.Output.Filename)
	assert.Equal(t, []string{"drawio", "mermaid"}, cfg.Output.Formats)

	// Valid styles survive, invalid ones are dropped.
	assert.Equal(t, "#1abc9c", cfg.Styles["api"])
	_, ok := cfg.Styles["bad"]
	assert.False(t, ok)

	rules := cfg.GroupingRules()
	require.Len(t, rules, 1)
	assert.Equal(t, "src/payments/**", rules[0].Pattern)
	assert.Equal(t, "Payments", rules[0].Label)
	assert.Equal(t, "#112233", rules[0].Color)
}

func TestNormalizeDotsExtensions(t *testing.T) {
	cfg := Project{Extensions: []string{"TS", ".Py"}}
	normalize(&cfg)
	assert.Equal(t, []string{".ts", ".py"}, cfg.Extensions)
}
