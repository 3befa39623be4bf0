package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryrank/internal/engine"
	"github.com/abhisek/masteryrank/internal/store"
)

type statsView struct {
	Store  store.Counts       `json:"store"`
	Engine engine.Stats       `json:"engine"`
	Replay engine.ReplayStats `json:"replay"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show event log and engine statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx, cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		counts, err := ws.store.EventRepo().Counts(ctx)
		if err != nil {
			return fmt.Errorf("count events: %w", err)
		}
		v := statsView{Store: counts, Engine: ws.engine.Stats(), Replay: ws.replay}
		if asJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), v)
		}

		w := cmd.OutOrStdout()
		heading(w, "Event log", 40)
		fmt.Fprintf(w, "%-22s %10d\n", "Learning records", counts.Records)
		fmt.Fprintf(w, "%-22s %10d\n", "Behavior events", counts.Behaviors)
		fmt.Fprintf(w, "%-22s %10d\n", "Catalog items", counts.Items)
		fmt.Fprintf(w, "%-22s %10d\n", "Snapshots", counts.Snapshots)
		fmt.Fprintf(w, "%-22s %10d\n", "LLM requests", counts.LLMRequests)
		fmt.Fprintf(w, "%-22s %10d\n", "Last sequence", counts.Sequence)
		fmt.Fprintln(w)

		heading(w, "Engine", 40)
		fmt.Fprintf(w, "%-22s %10d\n", "Learners", v.Engine.Learners)
		fmt.Fprintf(w, "%-22s %10d\n", "Tracked skills", v.Engine.TrackedSkills)
		fmt.Fprintf(w, "%-22s %10d\n", "Behavior events", v.Engine.BehaviorEvents)
		fmt.Fprintf(w, "%-22s %10d\n", "Items", v.Engine.Items)
		fmt.Fprintf(w, "%-22s %10d\n", "Snapshot sequence", ws.replay.SnapshotSequence)
		fmt.Fprintf(w, "%-22s %10d\n", "Records replayed", ws.replay.Records)
		if ws.replay.Skipped > 0 {
			fmt.Fprintf(w, "%-22s %10d\n", "Skipped (invalid)", ws.replay.Skipped)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}
