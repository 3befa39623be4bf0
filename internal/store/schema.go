package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	recordsTable   = "learning_records"
	behaviorsTable = "behavior_events"
	itemsTable     = "items"
	snapshotsTable = "snapshots"
	llmTable       = "llm_request_events"
)

var (
	// LearningRecordsColumns holds the columns for the "learning_records" table.
	LearningRecordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "event_id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeString},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "skill_id", Type: field.TypeString},
		{Name: "skill_name", Type: field.TypeString, Default: ""},
		{Name: "occurred_at", Type: field.TypeString},
		{Name: "correct", Type: field.TypeBool},
		{Name: "response_time_seconds", Type: field.TypeFloat64},
		{Name: "difficulty", Type: field.TypeFloat64},
		{Name: "attempt_count", Type: field.TypeInt},
		{Name: "hint_used", Type: field.TypeBool},
	}
	// LearningRecordsTable holds the schema information for the "learning_records" table.
	LearningRecordsTable = &schema.Table{
		Name:       recordsTable,
		Columns:    LearningRecordsColumns,
		PrimaryKey: []*schema.Column{LearningRecordsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "learningrecord_learner_id_skill_id", Columns: []*schema.Column{LearningRecordsColumns[4], LearningRecordsColumns[5]}},
		},
	}

	// BehaviorEventsColumns holds the columns for the "behavior_events" table.
	BehaviorEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "event_id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeString},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeString},
		{Name: "item_type", Type: field.TypeString},
		{Name: "behavior_type", Type: field.TypeString},
		{Name: "occurred_at", Type: field.TypeString},
		{Name: "duration_seconds", Type: field.TypeFloat64, Nullable: true},
		{Name: "score", Type: field.TypeFloat64, Nullable: true},
	}
	// BehaviorEventsTable holds the schema information for the "behavior_events" table.
	BehaviorEventsTable = &schema.Table{
		Name:       behaviorsTable,
		Columns:    BehaviorEventsColumns,
		PrimaryKey: []*schema.Column{BehaviorEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "behaviorevent_learner_id", Columns: []*schema.Column{BehaviorEventsColumns[4]}},
		},
	}

	// ItemsColumns holds the columns for the "items" table.
	ItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "item_type", Type: field.TypeString, Default: ""},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "difficulty", Type: field.TypeFloat64},
		{Name: "subject", Type: field.TypeString, Default: ""},
		{Name: "tags", Type: field.TypeJSON},
		{Name: "skill_refs", Type: field.TypeJSON},
		{Name: "avg_score", Type: field.TypeFloat64, Nullable: true},
		{Name: "practice_count", Type: field.TypeInt},
		{Name: "updated_at", Type: field.TypeString},
	}
	// ItemsTable holds the schema information for the "items" table.
	ItemsTable = &schema.Table{
		Name:       itemsTable,
		Columns:    ItemsColumns,
		PrimaryKey: []*schema.Column{ItemsColumns[0]},
	}

	// SnapshotsColumns holds the columns for the "snapshots" table.
	SnapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeString},
		{Name: "data", Type: field.TypeJSON},
	}
	// SnapshotsTable holds the schema information for the "snapshots" table.
	SnapshotsTable = &schema.Table{
		Name:       snapshotsTable,
		Columns:    SnapshotsColumns,
		PrimaryKey: []*schema.Column{SnapshotsColumns[0]},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "event_id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeString},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       llmTable,
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LearningRecordsTable,
		BehaviorEventsTable,
		ItemsTable,
		SnapshotsTable,
		LlmRequestEventsTable,
	}
)

// migrate creates missing tables and columns. It never drops anything.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
