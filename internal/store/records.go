package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/masteryrank/internal/behavior"
	"github.com/abhisek/masteryrank/internal/knowledge"
)

// eventRepo implements EventRepo on the ent SQL driver and the global
// sequence counter.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
	now func() time.Time
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *eventRepo) exec(ctx context.Context, query string, args []any) error {
	return r.drv.Exec(ctx, query, args, nil)
}

func (r *eventRepo) AppendRecord(ctx context.Context, rec knowledge.Record) (Appended, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return Appended{}, fmt.Errorf("next sequence: %w", err)
	}

	id := uuid.NewString()
	q, args := builder().Insert(recordsTable).
		Columns("event_id", "sequence", "created_at", "learner_id", "skill_id", "skill_name",
			"occurred_at", "correct", "response_time_seconds", "difficulty", "attempt_count", "hint_used").
		Values(id, seqNum, formatTime(r.now()), rec.LearnerID, rec.SkillID, rec.SkillName,
			formatTime(rec.Timestamp), rec.Correct, rec.ResponseTimeSeconds, rec.Difficulty, rec.AttemptCount, rec.HintUsed).
		Query()
	if err := r.exec(ctx, q, args); err != nil {
		return Appended{}, fmt.Errorf("save learning record: %w", err)
	}
	return Appended{EventID: id, Sequence: seqNum}, nil
}

func (r *eventRepo) AppendBehavior(ctx context.Context, e behavior.Event) (Appended, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return Appended{}, fmt.Errorf("next sequence: %w", err)
	}

	id := uuid.NewString()
	q, args := builder().Insert(behaviorsTable).
		Columns("event_id", "sequence", "created_at", "learner_id", "item_id", "item_type",
			"behavior_type", "occurred_at", "duration_seconds", "score").
		Values(id, seqNum, formatTime(r.now()), e.LearnerID, e.ItemID, string(e.ItemType),
			string(e.BehaviorType), formatTime(e.Timestamp), nullable(e.DurationSeconds), nullable(e.Score)).
		Query()
	if err := r.exec(ctx, q, args); err != nil {
		return Appended{}, fmt.Errorf("save behavior event: %w", err)
	}
	return Appended{EventID: id, Sequence: seqNum}, nil
}

func (r *eventRepo) PutItem(ctx context.Context, it behavior.Item) error {
	tags, err := json.Marshal(nonNil(it.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	refs, err := json.Marshal(nonNil(it.SkillRefs))
	if err != nil {
		return fmt.Errorf("marshal skill refs: %w", err)
	}

	q, args := builder().Insert(itemsTable).
		Columns("id", "item_type", "title", "difficulty", "subject", "tags", "skill_refs",
			"avg_score", "practice_count", "updated_at").
		Values(it.ID, string(it.Type), it.Title, it.Difficulty, it.Subject, string(tags), string(refs),
			nullable(it.AvgScore), it.PracticeCount, formatTime(r.now())).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("upsert item %s: %w", it.ID, err)
	}
	return nil
}

// filter applies the common sequence, learner and limit options.
func filter(sel *entsql.Selector, opts QueryOpts) *entsql.Selector {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.LearnerID != "" {
		preds = append(preds, entsql.EQ("learner_id", opts.LearnerID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

func (r *eventRepo) Records(ctx context.Context, opts QueryOpts) ([]StoredRecord, error) {
	sel := builder().Select("event_id", "sequence", "learner_id", "skill_id", "skill_name",
		"occurred_at", "correct", "response_time_seconds", "difficulty", "attempt_count", "hint_used").
		From(entsql.Table(recordsTable)).
		OrderBy("sequence")
	q, args := filter(sel, opts).Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query learning records: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var (
			sr StoredRecord
			at string
		)
		rec := &sr.Record
		if err := rows.Scan(&sr.EventID, &sr.Sequence, &rec.LearnerID, &rec.SkillID, &rec.SkillName,
			&at, &rec.Correct, &rec.ResponseTimeSeconds, &rec.Difficulty, &rec.AttemptCount, &rec.HintUsed); err != nil {
			return nil, fmt.Errorf("scan learning record: %w", err)
		}
		ts, err := parseTime(at)
		if err != nil {
			return nil, err
		}
		rec.Timestamp = ts
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (r *eventRepo) Behaviors(ctx context.Context, opts QueryOpts) ([]StoredBehavior, error) {
	sel := builder().Select("event_id", "sequence", "learner_id", "item_id", "item_type",
		"behavior_type", "occurred_at", "duration_seconds", "score").
		From(entsql.Table(behaviorsTable)).
		OrderBy("sequence")
	q, args := filter(sel, opts).Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query behavior events: %w", err)
	}
	defer rows.Close()

	var out []StoredBehavior
	for rows.Next() {
		var (
			sb              StoredBehavior
			itemType, bType string
			at              string
			dur, score      entsql.NullFloat64
		)
		ev := &sb.Event
		if err := rows.Scan(&sb.EventID, &sb.Sequence, &ev.LearnerID, &ev.ItemID, &itemType,
			&bType, &at, &dur, &score); err != nil {
			return nil, fmt.Errorf("scan behavior event: %w", err)
		}
		ts, err := parseTime(at)
		if err != nil {
			return nil, err
		}
		ev.ItemType = behavior.ItemType(itemType)
		ev.BehaviorType = behavior.BehaviorType(bType)
		ev.Timestamp = ts
		ev.DurationSeconds = floatPtr(dur)
		ev.Score = floatPtr(score)
		out = append(out, sb)
	}
	return out, rows.Err()
}

func (r *eventRepo) Items(ctx context.Context) ([]behavior.Item, error) {
	q, args := builder().Select("id", "item_type", "title", "difficulty", "subject", "tags",
		"skill_refs", "avg_score", "practice_count").
		From(entsql.Table(itemsTable)).
		OrderBy("id").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []behavior.Item
	for rows.Next() {
		var (
			it         behavior.Item
			itemType   string
			tags, refs string
			avg        entsql.NullFloat64
		)
		if err := rows.Scan(&it.ID, &itemType, &it.Title, &it.Difficulty, &it.Subject, &tags,
			&refs, &avg, &it.PracticeCount); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of %s: %w", it.ID, err)
		}
		if err := json.Unmarshal([]byte(refs), &it.SkillRefs); err != nil {
			return nil, fmt.Errorf("decode skill refs of %s: %w", it.ID, err)
		}
		if len(it.Tags) == 0 {
			it.Tags = nil
		}
		if len(it.SkillRefs) == 0 {
			it.SkillRefs = nil
		}
		it.Type = behavior.ItemType(itemType)
		it.AvgScore = floatPtr(avg)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *eventRepo) LastSequence(ctx context.Context) (int64, error) {
	return r.seq.Last(ctx)
}

func (r *eventRepo) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, t := range []struct {
		table string
		dst   *int
	}{
		{recordsTable, &c.Records},
		{behaviorsTable, &c.Behaviors},
		{itemsTable, &c.Items},
		{snapshotsTable, &c.Snapshots},
		{llmTable, &c.LLMRequests},
	} {
		n, err := count(ctx, r.drv, t.table)
		if err != nil {
			return Counts{}, err
		}
		*t.dst = n
	}
	seq, err := r.seq.Last(ctx)
	if err != nil {
		return Counts{}, err
	}
	c.Sequence = seq
	return c, nil
}

func (r *eventRepo) Reset(ctx context.Context) error {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	for _, t := range []string{recordsTable, behaviorsTable, itemsTable, snapshotsTable} {
		q, args := builder().Delete(t).Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			tx.Rollback()
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func count(ctx context.Context, drv *entsql.Driver, table string) (int, error) {
	q, args := builder().Select(entsql.Count("*")).From(entsql.Table(table)).Query()
	var rows entsql.Rows
	if err := drv.Query(ctx, q, args, &rows); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	defer rows.Close()
	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v entsql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
