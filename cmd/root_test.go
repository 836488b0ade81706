package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/income-predict/internal/config"
	"github.com/sells-group/income-predict/internal/controller"
)

// testConfig returns the default configuration pointed at baseURL.
func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Classifier: config.ClassifierConfig{
			BaseURL:      baseURL,
			TimeoutSecs:  5,
			DefaultModel: "log-reg",
			Endpoints: map[string]string{
				"rf":      "/predict/rf",
				"log-reg": "/predict/log-reg",
				"nn":      "/predict/nn",
			},
		},
		Form:  config.FormConfig{Variant: "full"},
		Batch: config.BatchConfig{Concurrency: 2},
		Log:   config.LogConfig{Level: "info", Format: "json"},
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"predict", "batch", "schema", "models"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "income-predict", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestPredictCommand_Flags(t *testing.T) {
	for _, name := range []string{"set", "values", "interactive", "model", "variant", "output"} {
		assert.NotNil(t, predictCmd.Flags().Lookup(name), "predict should have --%s flag", name)
	}
	assert.Equal(t, "text", predictCmd.Flags().Lookup("output").DefValue)
}

func TestBatchCommand_Flags(t *testing.T) {
	for _, name := range []string{"csv", "output", "variant", "model", "concurrency", "limit", "metrics-file"} {
		assert.NotNil(t, batchCmd.Flags().Lookup(name), "batch should have --%s flag", name)
	}
	assert.Equal(t, "0", batchCmd.Flags().Lookup("limit").DefValue)
}

func TestRootCmd_PersistentPreRunE_WithValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
classifier:
  default_model: nn
form:
  variant: minimal
log:
  level: info
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	// Reset cfg to nil so PersistentPreRunE repopulates it.
	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "nn", cfg.Classifier.DefaultModel)
	assert.Equal(t, "minimal", cfg.Form.Variant)
}

func TestRootCmd_PersistentPreRunE_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:8000", cfg.Classifier.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestRootCmd_PersistentPreRunE_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("form:\n  variant: wizard\n"), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	t.Setenv("INCOME_LOG_LEVEL", "loud")

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}

func TestResolveHelpers(t *testing.T) {
	c := testConfig("http://localhost:8000")

	v, err := resolveVariant(c, "")
	require.NoError(t, err)
	assert.Equal(t, "full", v.Name)

	v, err = resolveVariant(c, "minimal")
	require.NoError(t, err)
	assert.Equal(t, "minimal", v.Name)

	_, err = resolveVariant(c, "wizard")
	assert.Error(t, err)

	assert.Equal(t, controller.ModelLogisticRegression, resolveModel(c, ""))
	assert.Equal(t, controller.ModelRandomForest, resolveModel(c, "rf"))
	assert.NotNil(t, newClient(c))
}
