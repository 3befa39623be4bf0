package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryrank/internal/behavior"
	"github.com/abhisek/masteryrank/internal/recommend"
	"github.com/abhisek/masteryrank/internal/ui/theme"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank catalog items for a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, err := requireLearner(cmd)
		if err != nil {
			return err
		}
		top, _ := cmd.Flags().GetInt("top")
		diversity, _ := cmd.Flags().GetFloat64("diversity")
		itemType, _ := cmd.Flags().GetString("type")
		verbose, _ := cmd.Flags().GetBool("explain")

		if !cmd.Flags().Changed("top") {
			top = cfg.TopN
		}
		if !cmd.Flags().Changed("diversity") {
			diversity = cfg.Diversity
		}

		ws, err := openWorkspace(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		results, err := ws.engine.RecommendFromCatalog(learner, behavior.ItemType(itemType), top, diversity)
		if err != nil {
			return err
		}
		if asJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), results)
		}
		printRecommendations(cmd.OutOrStdout(), learner, results, verbose)
		return nil
	},
}

func printRecommendations(w io.Writer, learner string, results []recommend.Result, verbose bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return
	}

	heading(w, "Recommendations: "+learner, 100)
	fmt.Fprintf(w, "%3s  %-12s  %-32s  %-14s  %6s  %5s  %s\n", "#", "Item", "Title", "Type", "Score", "Conf", "Reason")
	rule(w, 100)
	for i, r := range results {
		fmt.Fprintf(w, "%3d  %-12s  %-32s  %-14s  %6.3f  %4.0f%%  %s\n",
			i+1,
			truncate(r.Item.ID, 12),
			truncate(r.Item.Title, 32),
			r.Item.Type,
			r.Score,
			r.Confidence,
			r.Reason,
		)
		if verbose {
			fmt.Fprintf(w, "%3s  %s\n", "", theme.Render(theme.Hint, fmt.Sprintf(
				"cf %.3f  content %.3f  popularity %.3f  diversity %.3f  novelty %.3f",
				r.Signals.CF, r.Signals.Content, r.Signals.Popularity, r.Diversity, r.Novelty)))
			if len(r.Explanation) > 0 {
				fmt.Fprintf(w, "%3s  %s\n", "", theme.Render(theme.Hint, strings.Join(r.Explanation, "; ")))
			}
		}
	}
}

func init() {
	recommendCmd.Flags().StringP("learner", "l", "", "Learner id")
	recommendCmd.Flags().IntP("top", "n", 10, "Number of items to return (default from config)")
	recommendCmd.Flags().Float64("diversity", 0.3, "Diversity weight in [0,1] (default from config)")
	recommendCmd.Flags().StringP("type", "t", "", "Only consider items of this type: question, course or knowledgePoint")
	recommendCmd.Flags().Bool("explain", false, "Show per-signal scores")
	recommendCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}
