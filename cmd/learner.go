package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryrank/internal/apperr"
	"github.com/abhisek/masteryrank/internal/engine"
	"github.com/abhisek/masteryrank/internal/knowledge"
	"github.com/abhisek/masteryrank/internal/planner"
	"github.com/abhisek/masteryrank/internal/ui/theme"
)

var learnersCmd = &cobra.Command{
	Use:   "learners",
	Short: "List learners with recorded activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		learners := ws.engine.Learners()
		if asJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), learners)
		}
		if len(learners) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No learners found.")
			return nil
		}
		for _, id := range learners {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast a learner's mastery of one skill",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, err := requireLearner(cmd)
		if err != nil {
			return err
		}
		skill, _ := cmd.Flags().GetString("skill")
		if skill == "" {
			return fmt.Errorf("--skill is required")
		}

		ws, err := openWorkspace(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		p, ok := ws.engine.Predict(learner, skill)
		if !ok {
			return fmt.Errorf("no practice history for learner %q on skill %q: %w", learner, skill, apperr.ErrNotFound)
		}
		if asJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), p)
		}
		printPrediction(cmd.OutOrStdout(), p)
		return nil
	},
}

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Show every skill state of a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStates(cmd, "Knowledge states", (*engine.Engine).States)
	},
}

var weakCmd = &cobra.Command{
	Use:   "weak",
	Short: "Show skills below the weak-mastery threshold, weakest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStates(cmd, "Weak skills", (*engine.Engine).WeakSkills)
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show idle skills that need review",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStates(cmd, "Review needed", (*engine.Engine).ReviewNeeded)
	},
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show a learner's prioritized study path",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, err := requireLearner(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		ws, err := openWorkspace(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		path := planner.Top(ws.engine.Path(learner), limit)
		if asJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), nonNilSteps(path))
		}
		w := cmd.OutOrStdout()
		if len(path) == 0 {
			fmt.Fprintf(w, "No practice history for learner %q.\n", learner)
			return nil
		}
		printPath(w, learner, path)
		return nil
	},
}

// stateQuery is an engine read returning per-skill states.
type stateQuery func(*engine.Engine, string) []knowledge.State

type stateView struct {
	knowledge.State
	CurrentMastery float64 `json:"currentMastery"`
}

func showStates(cmd *cobra.Command, title string, query stateQuery) error {
	learner, err := requireLearner(cmd)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	states := query(ws.engine, learner)
	views := make([]stateView, len(states))
	for i, st := range states {
		views[i] = stateView{State: st, CurrentMastery: ws.engine.CurrentMastery(st)}
	}
	if asJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), views)
	}

	w := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintln(w, "Nothing to show.")
		return nil
	}

	heading(w, fmt.Sprintf("%s: %s", title, learner), 96)
	fmt.Fprintf(w, "%-24s  %-25s  %8s  %-12s  %s\n", "Skill", "Mastery", "Attempts", "Trend", "Last practice")
	rule(w, 96)
	at := now()
	for _, v := range views {
		fmt.Fprintf(w, "%-24s  %s  %8d  %s  %s\n",
			truncate(skillLabel(v.SkillID, v.SkillName), 24),
			masteryBar(v.CurrentMastery),
			v.TotalAttempts,
			padRight(trendLabel(v.Trend), 12),
			formatAgo(v.LastPracticeTime, at),
		)
	}
	return nil
}

func printPrediction(w io.Writer, p knowledge.Prediction) {
	heading(w, fmt.Sprintf("Forecast: %s / %s", p.LearnerID, skillLabel(p.SkillID, p.SkillName)), 60)
	fmt.Fprintf(w, "Current mastery:    %s\n", masteryBar(p.CurrentMastery))
	fmt.Fprintf(w, "In %-15s  %s\n", formatDuration(p.Horizon)+":", masteryBar(p.PredictedMastery))
	fmt.Fprintf(w, "Success chance:     %.0f%%\n", p.SuccessProbability*100)
	fmt.Fprintf(w, "Forgetting risk:    %s\n", riskLabel(p.RiskLevel))
	fmt.Fprintf(w, "Next action:        %s\n", theme.Render(theme.Header, string(p.RecommendedAction)))
	fmt.Fprintf(w, "Time to mastery:    %s\n", formatDuration(p.TimeToMastery))
	if len(p.Suggestions) > 0 {
		fmt.Fprintln(w)
		for _, s := range p.Suggestions {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	}
}

func printPath(w io.Writer, learner string, path []planner.Step) {
	heading(w, "Study path: "+learner, 96)
	fmt.Fprintf(w, "%3s  %-24s  %8s  %6s  %-6s  %s\n", "#", "Skill", "Priority", "Min", "Risk", "Reason")
	rule(w, 96)
	for i, s := range path {
		fmt.Fprintf(w, "%3d  %-24s  %8.1f  %6.0f  %s  %s\n",
			i+1,
			truncate(skillLabel(s.SkillID, s.SkillName), 24),
			s.Priority,
			s.EstimatedMinutes,
			riskLabel(s.RiskLevel),
			s.Reason,
		)
		if len(s.Prerequisites) > 0 {
			fmt.Fprintf(w, "%3s  %s\n", "", theme.Render(theme.Hint, "builds on: "+strings.Join(s.Prerequisites, ", ")))
		}
	}
}

func nonNilSteps(s []planner.Step) []planner.Step {
	if s == nil {
		return []planner.Step{}
	}
	return s
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func init() {
	for _, c := range []*cobra.Command{predictCmd, statesCmd, weakCmd, reviewCmd, pathCmd} {
		c.Flags().StringP("learner", "l", "", "Learner id")
	}
	for _, c := range []*cobra.Command{learnersCmd, predictCmd, statesCmd, weakCmd, reviewCmd, pathCmd} {
		c.Flags().Bool("json", false, "Print JSON instead of a table")
	}
	predictCmd.Flags().StringP("skill", "s", "", "Skill id")
	pathCmd.Flags().IntP("limit", "n", 0, "Show only the first N steps (0 = all)")
}
