package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/masteryrank/internal/behavior"
)

func TestCosineIdenticalVectorsIsExactlyOne(t *testing.T) {
	store := behavior.NewStore()
	for _, learner := range []string{"alice", "bob"} {
		require.NoError(t, store.Add(ev(learner, "q1", behavior.BehaviorCorrect, t0.Add(-48*time.Hour))))
		require.NoError(t, store.Add(ev(learner, "q2", behavior.BehaviorView, t0)))
		require.NoError(t, store.Add(ev(learner, "q3", behavior.BehaviorCollect, t0.Add(-3*time.Hour))))
	}
	m := BuildMatrix(store, t0)

	assert.Equal(t, 1.0, Cosine(m["alice"], m["bob"]))
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]float64
		want float64
	}{
		{"orthogonal", map[string]float64{"x": 1}, map[string]float64{"y": 1}, 0},
		{"empty side", map[string]float64{}, map[string]float64{"y": 1}, 0},
		{"zero vector", map[string]float64{"x": 0}, map[string]float64{"x": 1}, 0},
		{"scaled", map[string]float64{"x": 1, "y": 2}, map[string]float64{"x": 2, "y": 4}, 1},
		{"partial overlap", map[string]float64{"x": 1, "y": 1}, map[string]float64{"x": 1, "y": 1, "z": 1}, 2 / math.Sqrt(6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-12)
		})
	}
}

func TestNeighbors(t *testing.T) {
	m := Matrix{
		"alice": {"q1": 5, "q2": 3},
		"bob":   {"q1": 5, "q2": 3},
		"carol": {"q1": 5, "q2": 3, "q3": 4},
		"dave":  {"q9": 1},
		"erin":  {"q1": 5, "q2": 3},
	}

	got := Neighbors(m, "alice", 20, 0.1)
	require.Len(t, got, 3)
	assert.Equal(t, "bob", got[0].LearnerID)
	assert.Equal(t, "erin", got[1].LearnerID)
	assert.Equal(t, "carol", got[2].LearnerID)
	assert.Greater(t, got[1].Similarity, got[2].Similarity)

	assert.Len(t, Neighbors(m, "alice", 2, 0.1), 2)
	assert.Empty(t, Neighbors(m, "nobody", 20, 0.1))
	assert.Empty(t, Neighbors(m, "dave", 20, 0.1))
}
