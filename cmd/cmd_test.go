package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recordsJSONL = `{"learnerId":"u1","skillId":"frac","skillName":"Fractions","timestamp":"2025-03-01T10:00:00Z","isCorrect":false,"responseTimeSeconds":40,"difficulty":3}
{"learnerId":"u1","skillId":"frac","skillName":"Fractions","timestamp":"2025-03-02T10:00:00Z","isCorrect":true,"responseTimeSeconds":35,"difficulty":3}
{"learnerId":"u1","skillId":"dec","timestamp":"2025-03-02T11:00:00Z","isCorrect":true,"responseTimeSeconds":20,"difficulty":2}
{"learnerId":"u2","skillId":"frac","timestamp":"2025-03-03T09:00:00Z","isCorrect":true,"responseTimeSeconds":25,"difficulty":3}
`

const eventsJSON = `[
  {"learnerId":"u1","itemId":"q1","itemType":"question","behaviorType":"correct","timestamp":"2025-03-02T10:00:00Z","score":90},
  {"learnerId":"u2","itemId":"q1","itemType":"question","behaviorType":"practice","timestamp":"2025-03-03T09:00:00Z"},
  {"learnerId":"u2","itemId":"q2","itemType":"question","behaviorType":"collect","timestamp":"2025-03-03T09:05:00Z"}
]`

const itemsJSON = `[
  {"id":"q1","type":"question","title":"Halves","difficulty":2,"subject":"math","tags":["fractions"],"skillRefs":["frac"],"practiceCount":10},
  {"id":"q2","type":"question","title":"Quarters","difficulty":3,"subject":"math","tags":["fractions"],"skillRefs":["frac"],"practiceCount":4},
  {"id":"c1","type":"course","title":"Decimals 101","difficulty":2,"subject":"math","tags":["decimals"],"skillRefs":["dec"]}
]`

type harness struct {
	t   *testing.T
	db  string
	cfg string
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("top_n: 5\nsnapshot_keep: 2\n"), 0o644))
	t.Setenv("MASTERYRANK_LOG_MODE", "quiet")
	return &harness{t: t, db: filepath.Join(dir, "test.db"), cfg: cfgPath, dir: dir}
}

func (h *harness) file(name, content string) string {
	h.t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--db", h.db, "--config", h.cfg, "--now", "2025-03-05T00:00:00Z"))
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores defaults; commands are package-level and keep
// flag values between Execute calls.
func resetFlags(c *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{c.PersistentFlags(), c.Flags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestEndToEnd(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("ingest", "--kind", "records", h.file("records.jsonl", recordsJSONL))
	assert.Contains(t, out, "Ingested 4 records from 1 file(s).")
	h.mustRun("ingest", "--kind", "events", h.file("events.json", eventsJSON))
	h.mustRun("ingest", "--kind", "items", h.file("items.json", itemsJSON))

	t.Run("learners", func(t *testing.T) {
		var learners []string
		require.NoError(t, json.Unmarshal([]byte(h.mustRun("learners", "--json")), &learners))
		assert.Equal(t, []string{"u1", "u2"}, learners)
	})

	t.Run("states", func(t *testing.T) {
		var states []map[string]any
		require.NoError(t, json.Unmarshal([]byte(h.mustRun("states", "--learner", "u1", "--json")), &states))
		require.Len(t, states, 2)
		assert.Equal(t, "dec", states[0]["skillId"])
		assert.Equal(t, "frac", states[1]["skillId"])
		assert.Less(t, states[1]["currentMastery"].(float64), states[1]["masteryLevel"].(float64)+1e-9)
	})

	t.Run("predict", func(t *testing.T) {
		var p map[string]any
		require.NoError(t, json.Unmarshal([]byte(h.mustRun("predict", "--learner", "u1", "--skill", "frac", "--json")), &p))
		assert.Equal(t, "frac", p["skillId"])
		assert.Contains(t, []any{"low", "medium", "high"}, p["riskLevel"])

		_, err := h.run("predict", "--learner", "u1", "--skill", "geometry", "--json")
		assert.Error(t, err)
	})

	t.Run("path", func(t *testing.T) {
		var steps []map[string]any
		require.NoError(t, json.Unmarshal([]byte(h.mustRun("path", "--learner", "u1", "--limit", "1", "--json")), &steps))
		require.Len(t, steps, 1)
	})

	t.Run("recommend", func(t *testing.T) {
		var results []map[string]any
		require.NoError(t, json.Unmarshal([]byte(h.mustRun("recommend", "--learner", "u1", "--top", "2", "--json")), &results))
		require.Len(t, results, 2)
		for _, r := range results {
			score := r["score"].(float64)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}

		require.NoError(t, json.Unmarshal([]byte(h.mustRun("recommend", "--learner", "u1", "--type", "course", "--top", "5", "--json")), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "c1", results[0]["item"].(map[string]any)["id"])

		_, err := h.run("recommend", "--learner", "u1", "--type", "podcast", "--json")
		assert.Error(t, err)
	})

	t.Run("stats", func(t *testing.T) {
		var v struct {
			Store struct {
				Records, Behaviors, Items, Snapshots int
			}
			Replay struct {
				SnapshotSequence int64
				Records          int
			}
		}
		require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "--json")), &v))
		assert.Equal(t, 4, v.Store.Records)
		assert.Equal(t, 3, v.Store.Behaviors)
		assert.Equal(t, 3, v.Store.Items)
		assert.Equal(t, 1, v.Store.Snapshots)
		assert.Equal(t, int64(4), v.Replay.SnapshotSequence)
		assert.Equal(t, 0, v.Replay.Records)
	})

	t.Run("text output", func(t *testing.T) {
		out := h.mustRun("states", "--learner", "u1")
		assert.Contains(t, out, "frac (Fractions)")
		assert.Contains(t, out, "%")
	})

	t.Run("reset", func(t *testing.T) {
		_, err := h.run("reset")
		assert.Error(t, err)

		assert.Contains(t, h.mustRun("reset", "--yes"), "All learner data deleted.")
		var learners []string
		require.NoError(t, json.Unmarshal([]byte(h.mustRun("learners", "--json")), &learners))
		assert.Empty(t, learners)
	})
}

func TestIngestRejectsInvalidFile(t *testing.T) {
	h := newHarness(t)
	bad := h.file("bad.jsonl", `{"learnerId":"u1","skillId":"frac","timestamp":"2025-03-01T10:00:00Z","isCorrect":true,"difficulty":9}`+"\n")

	_, err := h.run("ingest", "--kind", "records", bad)
	require.Error(t, err)

	var v struct{ Store struct{ Records int } }
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "--json")), &v))
	assert.Equal(t, 0, v.Store.Records)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("version"), "masteryrank")
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, isTerminal(f), "regular file")
	assert.False(t, isTerminal(nil))
}
