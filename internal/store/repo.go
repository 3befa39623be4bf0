package store

import (
	"context"
	"time"

	"github.com/abhisek/masteryrank/internal/behavior"
	"github.com/abhisek/masteryrank/internal/knowledge"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int    // max results (0 = unlimited)
	After     int64  // sequence > After
	LearnerID string // only this learner's events when set
}

// Appended identifies a freshly appended event.
type Appended struct {
	EventID  string
	Sequence int64
}

// StoredRecord is a learning record together with its log position.
type StoredRecord struct {
	EventID  string
	Sequence int64
	Record   knowledge.Record
}

// StoredBehavior is a behavior event together with its log position.
type StoredBehavior struct {
	EventID  string
	Sequence int64
	Event    behavior.Event
}

// SnapshotData captures the full engine state at a point in time.
type SnapshotData struct {
	Version int                 `json:"version"`
	Params  string              `json:"params,omitempty"` // knowledge.Params.Fingerprint at save time
	Tracker *knowledge.Snapshot `json:"tracker,omitempty"`
}

// Snapshot represents a point-in-time capture of tracker state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages tracker snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Counts reports the number of rows per event table.
type Counts struct {
	Records     int
	Behaviors   int
	Items       int
	Snapshots   int
	LLMRequests int
	Sequence    int64
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendRecord appends a learning record.
	AppendRecord(ctx context.Context, r knowledge.Record) (Appended, error)

	// AppendBehavior appends a behavior event.
	AppendBehavior(ctx context.Context, e behavior.Event) (Appended, error)

	// PutItem inserts or replaces a catalog item.
	PutItem(ctx context.Context, it behavior.Item) error

	// Records returns learning records in sequence order.
	Records(ctx context.Context, opts QueryOpts) ([]StoredRecord, error)

	// Behaviors returns behavior events in sequence order.
	Behaviors(ctx context.Context, opts QueryOpts) ([]StoredBehavior, error)

	// Items returns every catalog item ordered by id.
	Items(ctx context.Context) ([]behavior.Item, error)

	// LastSequence returns the highest sequence issued so far.
	LastSequence(ctx context.Context) (int64, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// Counts reports table sizes.
	Counts(ctx context.Context) (Counts, error)

	// Reset deletes all records, behaviors, items and snapshots.
	// LLM usage history is kept.
	Reset(ctx context.Context) error
}
