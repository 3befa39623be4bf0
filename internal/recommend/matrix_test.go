package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/masteryrank/internal/behavior"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func ev(learner, item string, bt behavior.BehaviorType, at time.Time) behavior.Event {
	return behavior.Event{
		LearnerID:    learner,
		ItemID:       item,
		ItemType:     behavior.ItemQuestion,
		BehaviorType: bt,
		Timestamp:    at,
	}
}

func TestImplicitRating(t *testing.T) {
	tests := []struct {
		name  string
		event behavior.Event
		want  float64
	}{
		{"fresh view", ev("a", "q1", behavior.BehaviorView, t0), 1},
		{"fresh wrong", ev("a", "q1", behavior.BehaviorWrong, t0), 2},
		{"fresh collect", ev("a", "q1", behavior.BehaviorCollect, t0), 4},
		{
			"correct with long study and half score",
			behavior.Event{
				LearnerID: "a", ItemID: "q1", ItemType: behavior.ItemQuestion,
				BehaviorType: behavior.BehaviorCorrect, Timestamp: t0,
				DurationSeconds: f64(600), Score: f64(50),
			},
			7,
		},
		{
			"short study earns partial bonus",
			behavior.Event{
				LearnerID: "a", ItemID: "q1", ItemType: behavior.ItemQuestion,
				BehaviorType: behavior.BehaviorPractice, Timestamp: t0,
				DurationSeconds: f64(150),
			},
			3.5,
		},
		{
			"thirty day old practice",
			ev("a", "q1", behavior.BehaviorPractice, t0.Add(-30*24*time.Hour)),
			3 * (0.5 + 0.5*math.Exp(-1)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ImplicitRating(tt.event, t0), 1e-9)
		})
	}
}

func TestImplicitRatingFloorsAtHalf(t *testing.T) {
	old := ev("a", "q1", behavior.BehaviorCorrect, t0.Add(-10*365*24*time.Hour))
	assert.InDelta(t, 2.5, ImplicitRating(old, t0), 1e-9)
}

func TestBuildMatrixAccumulates(t *testing.T) {
	store := behavior.NewStore()
	require.NoError(t, store.Add(ev("alice", "q1", behavior.BehaviorView, t0)))
	require.NoError(t, store.Add(ev("alice", "q1", behavior.BehaviorCorrect, t0)))
	require.NoError(t, store.Add(ev("alice", "q2", behavior.BehaviorWrong, t0)))
	require.NoError(t, store.Add(ev("bob", "q2", behavior.BehaviorPractice, t0)))

	m := BuildMatrix(store, t0)

	v, ok := m.Rating("alice", "q1")
	require.True(t, ok)
	assert.InDelta(t, 6, v, 1e-9)

	v, ok = m.Rating("alice", "q2")
	require.True(t, ok)
	assert.InDelta(t, 2, v, 1e-9)

	_, ok = m.Rating("bob", "q1")
	assert.False(t, ok)

	assert.Equal(t, []string{"alice", "bob"}, m.Learners())
}

func TestBuildMatrixEmptyStore(t *testing.T) {
	m := BuildMatrix(behavior.NewStore(), t0)
	assert.Empty(t, m)
	assert.Empty(t, m.Learners())
}
