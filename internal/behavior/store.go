package behavior

import (
	"math"
	"sort"

	"github.com/abhisek/masteryrank/internal/apperr"
)

// Store is the append-only, in-memory index of learner interaction events.
type Store struct {
	byLearner map[string][]Event
	total     int
}

// NewStore creates an empty behavior store.
func NewStore() *Store {
	return &Store{byLearner: make(map[string][]Event)}
}

// Add validates and appends an event. Invalid events leave the store untouched.
func (s *Store) Add(e Event) error {
	if err := Validate(e); err != nil {
		return err
	}
	s.byLearner[e.LearnerID] = append(s.byLearner[e.LearnerID], e)
	s.total++
	return nil
}

// Validate checks an event against the ingestion constraints.
func Validate(e Event) error {
	switch {
	case e.LearnerID == "":
		return apperr.Invalid("learnerId", "must not be empty")
	case e.ItemID == "":
		return apperr.Invalid("itemId", "must not be empty")
	case !e.ItemType.Valid():
		return apperr.Invalid("itemType", "unknown item type %q", e.ItemType)
	case !e.BehaviorType.Valid():
		return apperr.Invalid("behaviorType", "unknown behavior type %q", e.BehaviorType)
	case e.Timestamp.IsZero():
		return apperr.Invalid("timestamp", "must be set")
	}
	if e.DurationSeconds != nil && (*e.DurationSeconds < 0 || math.IsNaN(*e.DurationSeconds)) {
		return apperr.Invalid("durationSeconds", "must be >= 0, got %v", *e.DurationSeconds)
	}
	if e.Score != nil && (*e.Score < 0 || *e.Score > 100 || math.IsNaN(*e.Score)) {
		return apperr.Invalid("score", "must be within [0,100], got %v", *e.Score)
	}
	return nil
}

// Events returns a copy of a learner's events in append order.
func (s *Store) Events(learnerID string) []Event {
	evs := s.byLearner[learnerID]
	out := make([]Event, len(evs))
	copy(out, evs)
	return out
}

// Learners returns all learner IDs with at least one event, sorted.
func (s *Store) Learners() []string {
	ids := make([]string, 0, len(s.byLearner))
	for id := range s.byLearner {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Each calls fn for every event of every learner. Learners are visited
// in sorted order and events in append order.
func (s *Store) Each(fn func(Event)) {
	for _, id := range s.Learners() {
		for _, e := range s.byLearner[id] {
			fn(e)
		}
	}
}

// Len returns the total number of stored events.
func (s *Store) Len() int {
	return s.total
}

// Reset drops every event.
func (s *Store) Reset() {
	s.byLearner = make(map[string][]Event)
	s.total = 0
}
