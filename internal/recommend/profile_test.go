package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/masteryrank/internal/behavior"
)

func testCatalog(t *testing.T, items ...behavior.Item) *behavior.Catalog {
	t.Helper()
	c := behavior.NewCatalog()
	for _, it := range items {
		require.NoError(t, c.Put(it))
	}
	return c
}

func TestBuildProfile(t *testing.T) {
	catalog := testCatalog(t,
		behavior.Item{ID: "q1", Type: behavior.ItemQuestion, Subject: "math", Difficulty: 2, Tags: []string{"algebra", "linear"}, SkillRefs: []string{"equations"}},
		behavior.Item{ID: "q2", Type: behavior.ItemQuestion, Subject: "physics", Difficulty: 4, Tags: []string{"algebra"}, SkillRefs: []string{"kinematics"}},
		behavior.Item{ID: "q3", Type: behavior.ItemQuestion, Subject: "math", Tags: []string{"geometry"}},
	)
	events := []behavior.Event{
		ev("alice", "q1", behavior.BehaviorView, t0),
		ev("alice", "q2", behavior.BehaviorView, t0),
		ev("alice", "q3", behavior.BehaviorView, t0),
		ev("alice", "unknown", behavior.BehaviorView, t0),
	}

	p, ok := BuildProfile(events, catalog, 5, 10)
	require.True(t, ok)
	assert.Equal(t, "math", p.Subject)
	assert.Equal(t, []string{"algebra", "geometry", "linear"}, p.Tags)
	assert.Equal(t, []string{"equations", "kinematics"}, p.Skills)
	assert.InDelta(t, 3, p.Difficulty, 1e-9)

	p, ok = BuildProfile(events, catalog, 1, 1)
	require.True(t, ok)
	assert.Equal(t, []string{"algebra"}, p.Tags)
	assert.Equal(t, []string{"equations"}, p.Skills)
}

func TestBuildProfileSubjectTieIsLexicographic(t *testing.T) {
	catalog := testCatalog(t,
		behavior.Item{ID: "q1", Subject: "physics"},
		behavior.Item{ID: "q2", Subject: "chemistry"},
	)
	events := []behavior.Event{ev("a", "q1", behavior.BehaviorView, t0), ev("a", "q2", behavior.BehaviorView, t0)}

	p, ok := BuildProfile(events, catalog, 5, 10)
	require.True(t, ok)
	assert.Equal(t, "chemistry", p.Subject)
	assert.Zero(t, p.Difficulty)
}

func TestBuildProfileWithoutKnownItems(t *testing.T) {
	_, ok := BuildProfile(nil, behavior.NewCatalog(), 5, 10)
	assert.False(t, ok)

	_, ok = BuildProfile([]behavior.Event{ev("a", "ghost", behavior.BehaviorView, t0)}, behavior.NewCatalog(), 5, 10)
	assert.False(t, ok)
}

func TestContentSimilarity(t *testing.T) {
	profile := Profile{Subject: "math", Tags: []string{"algebra", "linear"}, Skills: []string{"equations"}, Difficulty: 3}

	tests := []struct {
		name string
		item behavior.Item
		want float64
	}{
		{
			"perfect match",
			behavior.Item{ID: "a", Subject: "math", Tags: []string{"linear", "algebra"}, SkillRefs: []string{"equations"}, Difficulty: 3},
			1,
		},
		{
			"difficulty only",
			behavior.Item{ID: "b", Difficulty: 4},
			0.8,
		},
		{
			"subject mismatch with half tag overlap",
			behavior.Item{ID: "c", Subject: "physics", Tags: []string{"algebra"}},
			(0 + 0.3*0.5) / 0.6,
		},
		{
			"nothing comparable",
			behavior.Item{ID: "d"},
			0,
		},
		{
			"subject and difficulty only",
			behavior.Item{ID: "e", Subject: "math", Difficulty: 5},
			(0.3 + 0.1*0.6) / 0.4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContentSimilarity(profile, tt.item)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestContentSimilarityEmptyProfile(t *testing.T) {
	assert.Zero(t, ContentSimilarity(Profile{}, behavior.Item{ID: "x", Subject: "math", Difficulty: 2}))
}

func TestPopularity(t *testing.T) {
	items := []behavior.Item{
		{ID: "hot", PracticeCount: 99, AvgScore: f64(100)},
		{ID: "warm", PracticeCount: 9},
		{ID: "cold"},
	}
	got := Popularity(items)
	assert.InDelta(t, 1, got["hot"], 1e-9)
	assert.InDelta(t, 0.25, got["warm"], 1e-9)
	assert.Zero(t, got["cold"])
}

func TestPopularityAllZero(t *testing.T) {
	got := Popularity([]behavior.Item{{ID: "a"}, {ID: "b", AvgScore: f64(0), PracticeCount: 10}})
	assert.Equal(t, map[string]float64{"a": 0, "b": 0}, got)
}

func TestDiversity(t *testing.T) {
	items := []behavior.Item{
		{ID: "a", Tags: []string{"x", "y"}},
		{ID: "b", Tags: []string{"x", "y"}},
		{ID: "c", Tags: []string{"z"}},
		{ID: "d"},
	}
	got := Diversity(items)
	assert.InDelta(t, 0.5, got["a"], 1e-9)
	assert.InDelta(t, 0.5, got["b"], 1e-9)
	assert.InDelta(t, 1, got["c"], 1e-9)
	assert.Zero(t, got["d"])
	assert.Greater(t, got["c"], got["a"])
	assert.Greater(t, got["a"], got["d"])
}
