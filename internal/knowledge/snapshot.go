package knowledge

import (
	"sort"
	"time"
)

// SnapshotVersion is bumped whenever Snapshot's shape changes.
const SnapshotVersion = 1

// Snapshot is a serializable copy of the tracker's state.
type Snapshot struct {
	Version int             `json:"version"`
	Entries []SnapshotEntry `json:"entries"`
}

// SnapshotEntry captures one pair and the history summary its update
// rules depend on.
type SnapshotEntry struct {
	State         State     `json:"state"`
	FirstPractice time.Time `json:"firstPractice"`
	LastRecord    time.Time `json:"lastRecord"`
	Records       int       `json:"records"`
	Recent        []bool    `json:"recent"`
	DifficultySum float64   `json:"difficultySum"`
}

// Snapshot exports the tracker state, ordered by learner then skill.
func (t *Tracker) Snapshot() *Snapshot {
	snap := &Snapshot{Version: SnapshotVersion}
	for key, st := range t.states {
		e := SnapshotEntry{State: *st}
		if h := t.history[key]; h != nil {
			e.FirstPractice = h.first
			e.LastRecord = h.last
			e.Records = h.records
			e.Recent = append([]bool(nil), h.recent...)
			e.DifficultySum = h.difficultySum
		}
		snap.Entries = append(snap.Entries, e)
	}
	sort.Slice(snap.Entries, func(i, j int) bool {
		a, b := snap.Entries[i].State, snap.Entries[j].State
		if a.LearnerID != b.LearnerID {
			return a.LearnerID < b.LearnerID
		}
		return a.SkillID < b.SkillID
	})
	return snap
}

// Restore replaces the tracker state with the snapshot's contents.
// A nil snapshot or one from another version leaves the tracker empty.
func (t *Tracker) Restore(snap *Snapshot) {
	t.Reset()
	if snap == nil || snap.Version != SnapshotVersion {
		return
	}
	for _, e := range snap.Entries {
		st := e.State
		key := Key{Learner: st.LearnerID, Skill: st.SkillID}
		t.states[key] = &st
		t.history[key] = &history{
			first:         e.FirstPractice,
			last:          e.LastRecord,
			records:       e.Records,
			recent:        append([]bool(nil), e.Recent...),
			difficultySum: e.DifficultySum,
		}
	}
}
