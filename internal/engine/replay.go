package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/masteryrank/internal/apperr"
	"github.com/abhisek/masteryrank/internal/logger"
	"github.com/abhisek/masteryrank/internal/store"
)

// snapshotDataVersion is the store.SnapshotData version this package writes.
const snapshotDataVersion = 1

// ReplayStats describes what Hydrate loaded.
type ReplayStats struct {
	SnapshotSequence int64 // 0 when no snapshot was used
	Records          int   // records replayed on top of the snapshot
	Behaviors        int
	Items            int
	Skipped          int   // events rejected by validation
	Sequence         int64 // highest record sequence reflected in the tracker
}

// Hydrate rebuilds e from the event log. The tracker is seeded from the
// latest snapshot and only records appended after it are replayed. A
// snapshot saved under different knowledge params is ignored and the
// whole log is replayed.
// Behaviors and items are always loaded in full. Invalid logged events are
// skipped with a warning rather than aborting the replay.
func Hydrate(ctx context.Context, events store.EventRepo, snapshots store.SnapshotRepo, e *Engine, log *logger.Logger) (ReplayStats, error) {
	if log == nil {
		log = logger.Nop()
	}
	var stats ReplayStats

	e.Reset()
	snap, err := snapshots.Latest(ctx)
	if err != nil {
		return stats, fmt.Errorf("load snapshot: %w", err)
	}
	params := e.Params().Fingerprint()
	switch {
	case snap == nil:
	case snap.Data.Version != snapshotDataVersion || snap.Data.Tracker == nil:
		log.Warn("ignoring incompatible snapshot", "id", snap.ID, "version", snap.Data.Version)
	case snap.Data.Params != params:
		log.Info("ignoring snapshot taken under other knowledge params", "id", snap.ID, "params", snap.Data.Params)
	default:
		e.Restore(snap.Data.Tracker)
		stats.SnapshotSequence = snap.Sequence
		stats.Sequence = snap.Sequence
		log.Debug("restored snapshot", "id", snap.ID, "sequence", snap.Sequence, "pairs", len(snap.Data.Tracker.Entries))
	}

	records, err := events.Records(ctx, store.QueryOpts{After: stats.SnapshotSequence})
	if err != nil {
		return stats, fmt.Errorf("load records: %w", err)
	}
	for _, r := range records {
		if err := e.AddRecord(r.Record); err != nil {
			if !errors.Is(err, apperr.ErrValidation) {
				return stats, fmt.Errorf("replay record %d: %w", r.Sequence, err)
			}
			log.Warn("skipping invalid record", "sequence", r.Sequence, "error", err)
			stats.Skipped++
			continue
		}
		stats.Records++
		stats.Sequence = max(stats.Sequence, r.Sequence)
	}

	behaviors, err := events.Behaviors(ctx, store.QueryOpts{})
	if err != nil {
		return stats, fmt.Errorf("load behaviors: %w", err)
	}
	for _, b := range behaviors {
		if err := e.AddBehavior(b.Event); err != nil {
			if !errors.Is(err, apperr.ErrValidation) {
				return stats, fmt.Errorf("replay behavior %d: %w", b.Sequence, err)
			}
			log.Warn("skipping invalid behavior", "sequence", b.Sequence, "error", err)
			stats.Skipped++
			continue
		}
		stats.Behaviors++
	}

	items, err := events.Items(ctx)
	if err != nil {
		return stats, fmt.Errorf("load items: %w", err)
	}
	for _, it := range items {
		if err := e.PutItem(it); err != nil {
			log.Warn("skipping invalid item", "item", it.ID, "error", err)
			stats.Skipped++
			continue
		}
		stats.Items++
	}

	log.Debug("hydrated engine",
		"records", stats.Records, "behaviors", stats.Behaviors, "items", stats.Items, "skipped", stats.Skipped)
	return stats, nil
}

// Checkpoint saves the tracker state as of sequence and prunes all but
// the keep newest snapshots.
func Checkpoint(ctx context.Context, snapshots store.SnapshotRepo, e *Engine, sequence int64, keep int) error {
	snap := &store.Snapshot{
		Sequence: sequence,
		Data: store.SnapshotData{
			Version: snapshotDataVersion,
			Params:  e.Params().Fingerprint(),
			Tracker: e.Snapshot(),
		},
	}
	if err := snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := snapshots.Prune(ctx, keep); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
