package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryrank/internal/engine"
	"github.com/abhisek/masteryrank/internal/ingest"
	"github.com/abhisek/masteryrank/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Append learning records, behavior events or catalog items to the event log",
	Long: "Reads JSON arrays or JSON Lines files (\"-\" for stdin). Every document is\n" +
		"validated first; a file with any invalid document is rejected as a whole.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kindFlag, _ := cmd.Flags().GetString("kind")
		noCheckpoint, _ := cmd.Flags().GetBool("no-checkpoint")

		kind, err := ingest.ParseKind(kindFlag)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		batches, err := ingest.LoadFiles(ctx, kind, args, log)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.EventRepo()
		total := 0
		for _, b := range batches {
			n, err := appendBatch(ctx, repo, b)
			total += n
			if err != nil {
				return fmt.Errorf("%s: %w (%d documents stored before the failure)", b.Source, err, total)
			}
			log.Info("ingested file", "source", b.Source, "kind", b.Kind, "documents", n)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d %s from %d file(s).\n", total, kind, len(batches))

		if kind != ingest.KindRecords || noCheckpoint {
			return nil
		}
		return checkpoint(ctx, s)
	},
}

func appendBatch(ctx context.Context, repo store.EventRepo, b ingest.Batch) (int, error) {
	n := 0
	for _, r := range b.Records {
		if _, err := repo.AppendRecord(ctx, r); err != nil {
			return n, err
		}
		n++
	}
	for _, e := range b.Events {
		if _, err := repo.AppendBehavior(ctx, e); err != nil {
			return n, err
		}
		n++
	}
	for _, it := range b.Items {
		if err := repo.PutItem(ctx, it); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// checkpoint rebuilds the tracker and stores a snapshot so later commands
// only replay records appended after it.
func checkpoint(ctx context.Context, s *store.Store) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	stats, err := engine.Hydrate(ctx, s.EventRepo(), s.SnapshotRepo(), e, log)
	if err != nil {
		return fmt.Errorf("replay event log: %w", err)
	}
	if stats.Sequence == 0 {
		return nil
	}
	if err := engine.Checkpoint(ctx, s.SnapshotRepo(), e, stats.Sequence, cfg.SnapshotKeep); err != nil {
		return err
	}
	log.Debug("saved snapshot", "sequence", stats.Sequence, "replayed", stats.Records)
	return nil
}

func init() {
	ingestCmd.Flags().StringP("kind", "k", "records", "What the files contain: records, events or items")
	ingestCmd.Flags().Bool("no-checkpoint", false, "Skip the tracker snapshot after ingesting records")
}
