// Package engine bundles the mastery tracker, the behavior log, the item
// catalog, the ranker and the planner behind a single lock.
package engine

import (
	"fmt"
	"sync"

	"github.com/abhisek/masteryrank/internal/apperr"
	"github.com/abhisek/masteryrank/internal/behavior"
	"github.com/abhisek/masteryrank/internal/clock"
	"github.com/abhisek/masteryrank/internal/knowledge"
	"github.com/abhisek/masteryrank/internal/planner"
	"github.com/abhisek/masteryrank/internal/recommend"
)

// Options configures a new Engine.
type Options struct {
	Params        knowledge.Params
	Ranker        recommend.Config
	Clock         clock.Clock
	Prerequisites map[string][]string
}

// DefaultOptions returns Options with the standard tuning and the system clock.
func DefaultOptions() Options {
	return Options{
		Params: knowledge.DefaultParams(),
		Ranker: recommend.DefaultConfig(),
	}
}

// Stats summarizes what an engine currently holds.
type Stats struct {
	Learners       int
	TrackedSkills  int
	BehaviorEvents int
	Items          int
}

// Engine is safe for concurrent use. Every operation holds the lock for
// its full duration, so reads never observe a half-applied update.
type Engine struct {
	mu        sync.Mutex
	tracker   *knowledge.Tracker
	behaviors *behavior.Store
	catalog   *behavior.Catalog
	ranker    *recommend.Ranker
	planner   *planner.Planner
}

// New creates an empty engine.
func New(opts Options) (*Engine, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("knowledge params: %w", err)
	}
	if err := opts.Ranker.Validate(); err != nil {
		return nil, fmt.Errorf("ranker config: %w", err)
	}

	now := clock.Or(opts.Clock)
	tracker := knowledge.NewTracker(opts.Params, now)
	behaviors := behavior.NewStore()
	catalog := behavior.NewCatalog()

	return &Engine{
		tracker:   tracker,
		behaviors: behaviors,
		catalog:   catalog,
		ranker:    recommend.NewRanker(behaviors, catalog, now, opts.Ranker),
		planner:   planner.New(tracker).WithPrerequisites(opts.Prerequisites),
	}, nil
}

// AddRecord folds a learning record into the tracker.
func (e *Engine) AddRecord(r knowledge.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Apply(r)
}

// AddBehavior appends a behavior event.
func (e *Engine) AddBehavior(ev behavior.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.behaviors.Add(ev)
}

// PutItem inserts or replaces a catalog item.
func (e *Engine) PutItem(it behavior.Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Put(it)
}

// Predict forecasts a learner's performance on a skill.
func (e *Engine) Predict(learnerID, skillID string) (knowledge.Prediction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Predict(learnerID, skillID)
}

// Path returns the learner's prioritized study plan.
func (e *Engine) Path(learnerID string) []planner.Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.planner.GeneratePath(learnerID)
}

// Recommend ranks the given candidates for a learner.
func (e *Engine) Recommend(learnerID string, candidates []behavior.Item, topN int, diversityWeight float64) ([]recommend.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ranker.Recommend(learnerID, candidates, topN, diversityWeight)
}

// RecommendFromCatalog ranks catalog items for a learner. An empty
// itemType considers the whole catalog.
func (e *Engine) RecommendFromCatalog(learnerID string, itemType behavior.ItemType, topN int, diversityWeight float64) ([]recommend.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if itemType != "" && !itemType.Valid() {
		return nil, apperr.Invalid("itemType", "unknown item type %q", itemType)
	}
	return e.ranker.Recommend(learnerID, e.catalog.OfType(itemType), topN, diversityWeight)
}

// States returns the learner's knowledge states ordered by skill.
func (e *Engine) States(learnerID string) []knowledge.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.States(learnerID)
}

// WeakSkills returns skills below the weak threshold, weakest first.
func (e *Engine) WeakSkills(learnerID string) []knowledge.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.WeakSkills(learnerID)
}

// ReviewNeeded returns idle, unmastered skills.
func (e *Engine) ReviewNeeded(learnerID string) []knowledge.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.ReviewNeeded(learnerID)
}

// Params returns the tracker constants.
func (e *Engine) Params() knowledge.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Params()
}

// CurrentMastery returns the decayed mastery of a state as of now.
func (e *Engine) CurrentMastery(st knowledge.State) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.CurrentMastery(st)
}

// Learners returns every learner known to the tracker or the behavior log.
func (e *Engine) Learners() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return mergeSorted(e.tracker.Learners(), e.behaviors.Learners())
}

// Stats reports the engine's sizes.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Learners:       len(mergeSorted(e.tracker.Learners(), e.behaviors.Learners())),
		TrackedSkills:  e.tracker.Len(),
		BehaviorEvents: e.behaviors.Len(),
		Items:          e.catalog.Len(),
	}
}

// Snapshot exports the tracker state.
func (e *Engine) Snapshot() *knowledge.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Snapshot()
}

// Restore replaces the tracker state with a snapshot.
func (e *Engine) Restore(snap *knowledge.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracker.Restore(snap)
}

// Reset clears all tracker, behavior and catalog state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracker.Reset()
	e.behaviors.Reset()
	e.catalog.Reset()
}

// mergeSorted unions two sorted, duplicate-free slices.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
