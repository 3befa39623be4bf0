package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo on the ent SQL driver.
type snapshotRepo struct {
	drv *entsql.Driver
	now func() time.Time
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	ts := snap.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}
	q, args := builder().Insert(snapshotsTable).
		Columns("sequence", "timestamp", "data").
		Values(snap.Sequence, formatTime(ts), string(data)).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	q, args := builder().Select("id", "sequence", "timestamp", "data").
		From(entsql.Table(snapshotsTable)).
		OrderBy(entsql.Desc("sequence"), entsql.Desc("id")).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		s      Snapshot
		at, js string
	)
	if err := rows.Scan(&s.ID, &s.Sequence, &at, &js); err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	ts, err := parseTime(at)
	if err != nil {
		return nil, err
	}
	s.Timestamp = ts
	if err := json.Unmarshal([]byte(js), &s.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	return &s, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	if keep < 1 {
		return nil
	}
	// Find the ID threshold: the oldest of the keep newest snapshots.
	q, args := builder().Select("id").
		From(entsql.Table(snapshotsTable)).
		OrderBy(entsql.Desc("id")).
		Limit(keep).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}
	var ids []int
	err := entsql.ScanSlice(rows, &ids)
	rows.Close()
	if err != nil {
		return fmt.Errorf("scan snapshot ids: %w", err)
	}
	if len(ids) < keep {
		return nil // fewer than keep snapshots exist
	}

	threshold := ids[len(ids)-1]
	dq, dargs := builder().Delete(snapshotsTable).
		Where(entsql.LT("id", threshold)).
		Query()
	if err := r.drv.Exec(ctx, dq, dargs, nil); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
