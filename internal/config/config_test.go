package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/masteryrank/internal/apperr"
)

// isolate points every lookup at a scratch directory so no real config,
// .env or environment leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{EnvConfig, EnvDB, EnvLogMode, EnvTopN, EnvDiversity, EnvHorizonDays} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "tuning.yaml")
	writeFile(t, path, `
db: /tmp/mr.db
top_n: 5
knowledge:
  p_learn: 0.4
  horizon: 72h
ranker:
  weights:
    cf: 0.5
    content: 0.3
    popularity: 0.2
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mr.db", cfg.DB)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 0.4, cfg.Knowledge.PLearn)
	assert.Equal(t, 0.1, cfg.Knowledge.PInit)
	assert.Equal(t, 72*time.Hour, cfg.Knowledge.Horizon)
	assert.Equal(t, 0.5, cfg.Ranker.Weights.CF)
	assert.Equal(t, 20, cfg.Ranker.Neighbors)
}

func TestLoadDefaultPathUsedWhenPresent(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "masteryrank", "config.yaml"), "top_n: 3\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TopN)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "tuning.yaml")
	writeFile(t, path, "top_n: 5\ndiversity: 0.1\n")
	t.Setenv(EnvTopN, "7")
	t.Setenv(EnvDiversity, "0.6")
	t.Setenv(EnvHorizonDays, "3")
	t.Setenv(EnvDB, "/data/x.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.TopN)
	assert.Equal(t, 0.6, cfg.Diversity)
	assert.Equal(t, 72*time.Hour, cfg.Knowledge.Horizon)
	assert.Equal(t, "/data/x.db", cfg.DB)
}

func TestDotEnvIsRead(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv(EnvTopN)
	writeFile(t, filepath.Join(dir, ".env"), EnvTopN+"=4\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.TopN)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		yaml string
	}{
		{"non-numeric top n", map[string]string{EnvTopN: "many"}, ""},
		{"zero top n", map[string]string{EnvTopN: "0"}, ""},
		{"diversity out of range", map[string]string{EnvDiversity: "1.5"}, ""},
		{"diversity NaN", map[string]string{EnvDiversity: "NaN"}, ""},
		{"diversity NaN in file", nil, "diversity: .nan\n"},
		{"forget rate NaN", nil, "knowledge:\n  p_forget: .nan\n"},
		{"slip NaN", nil, "knowledge:\n  p_slip: .nan\n"},
		{"weight NaN", nil, "ranker:\n  weights:\n    content: .nan\n"},
		{"negative weight", nil, "ranker:\n  weights:\n    cf: -1\n"},
		{"probability out of range", nil, "knowledge:\n  p_slip: 2\n"},
		{"malformed yaml", nil, "top_n: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = filepath.Join(dir, "c.yaml")
				writeFile(t, path, tt.yaml)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidateReportsValidationErrors(t *testing.T) {
	cfg := Default()
	cfg.SnapshotKeep = 0
	assert.True(t, apperr.IsValidation(cfg.Validate()))
}
