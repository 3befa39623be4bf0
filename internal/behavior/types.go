package behavior

import "time"

// ItemType identifies the kind of learning item.
type ItemType string

const (
	ItemQuestion       ItemType = "question"
	ItemCourse         ItemType = "course"
	ItemKnowledgePoint ItemType = "knowledgePoint"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemQuestion, ItemCourse, ItemKnowledgePoint:
		return true
	}
	return false
}

// BehaviorType identifies what the learner did with an item.
type BehaviorType string

const (
	BehaviorView     BehaviorType = "view"
	BehaviorPractice BehaviorType = "practice"
	BehaviorCollect  BehaviorType = "collect"
	BehaviorCorrect  BehaviorType = "correct"
	BehaviorWrong    BehaviorType = "wrong"
)

// Valid reports whether b is a known behavior type.
func (b BehaviorType) Valid() bool {
	switch b {
	case BehaviorView, BehaviorPractice, BehaviorCollect, BehaviorCorrect, BehaviorWrong:
		return true
	}
	return false
}

// Event is a single learner interaction. Immutable once appended.
type Event struct {
	LearnerID       string       `json:"learnerId"`
	ItemID          string       `json:"itemId"`
	ItemType        ItemType     `json:"itemType"`
	BehaviorType    BehaviorType `json:"behaviorType"`
	Timestamp       time.Time    `json:"timestamp"`
	DurationSeconds *float64     `json:"durationSeconds,omitempty"`
	Score           *float64     `json:"score,omitempty"` // 0-100
}

// Item is a catalog entry supplied by content management. Read-only to
// the engine.
type Item struct {
	ID            string   `json:"id"`
	Type          ItemType `json:"type"`
	Title         string   `json:"title"`
	Difficulty    float64  `json:"difficulty,omitempty"` // 1-5, 0 when unknown
	Subject       string   `json:"subject,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	SkillRefs     []string `json:"skillRefs,omitempty"`
	AvgScore      *float64 `json:"avgScore,omitempty"` // 0-100
	PracticeCount int      `json:"practiceCount,omitempty"`
}

// HasDifficulty reports whether the item carries a difficulty rating.
func (it Item) HasDifficulty() bool {
	return it.Difficulty > 0
}
