package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryrank/internal/advisor"
	"github.com/abhisek/masteryrank/internal/apperr"
	"github.com/abhisek/masteryrank/internal/engine"
	"github.com/abhisek/masteryrank/internal/knowledge"
	"github.com/abhisek/masteryrank/internal/llm"
	"github.com/abhisek/masteryrank/internal/planner"
	"github.com/abhisek/masteryrank/internal/ui/theme"
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Ask an LLM for study advice based on a learner's forecast",
	Long: "Streams tutoring advice built from the learner's predictions, study path and\n" +
		"recommendations. Requires an LLM provider: set MASTERYRANK_LLM_PROVIDER with the\n" +
		"matching MASTERYRANK_*_API_KEY, or one of GEMINI_API_KEY, OPENAI_API_KEY,\n" +
		"ANTHROPIC_API_KEY, OPENROUTER_API_KEY.",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, err := requireLearner(cmd)
		if err != nil {
			return err
		}
		asPlan, _ := cmd.Flags().GetBool("plan")

		llmCfg, err := llm.ResolveConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), llmCfg.Timeout)
		defer cancel()

		ws, err := openWorkspace(ctx, cmd)
		if err != nil {
			return err
		}
		defer ws.Close()

		in := advisorInput(ws.engine, learner)
		if len(in.Predictions) == 0 {
			return fmt.Errorf("no practice history for learner %q: %w", learner, apperr.ErrNotFound)
		}

		provider, err := llm.NewProvider(ctx, llmCfg, ws.store.EventRepo(), log)
		if err != nil {
			return err
		}
		acfg := advisor.DefaultConfig()
		acfg.MaxTokens = llmCfg.MaxTokens
		svc := advisor.NewService(provider, acfg)

		w := cmd.OutOrStdout()
		if asPlan {
			plan, err := svc.Plan(ctx, in)
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return printJSON(w, plan)
			}
			printStudyPlan(w, plan)
			return nil
		}

		for chunk, err := range svc.Advise(ctx, in) {
			if err != nil {
				fmt.Fprintln(w)
				if errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("advice timed out after %s", llmCfg.Timeout)
				}
				return err
			}
			fmt.Fprint(w, chunk.Text)
			if chunk.StopReason == "max_tokens" {
				fmt.Fprintln(w)
				fmt.Fprint(w, theme.Render(theme.Hint, "(advice truncated)"))
			}
		}
		fmt.Fprintln(w)
		return nil
	},
}

// advisorInput collects a read-only view of the learner for the advisor.
func advisorInput(e *engine.Engine, learner string) advisor.Input {
	in := advisor.Input{LearnerID: learner}

	var preds []knowledge.Prediction
	for _, st := range e.States(learner) {
		if p, ok := e.Predict(learner, st.SkillID); ok {
			preds = append(preds, p)
		}
	}
	in.Predictions = preds
	in.Path = planner.Top(e.Path(learner), 5)

	// Recommendations are optional context; an empty catalog is fine.
	if recs, err := e.RecommendFromCatalog(learner, "", 3, cfg.Diversity); err == nil {
		in.Recommendations = recs
	} else {
		log.Debug("advice without recommendations", "error", err)
	}
	return in
}

func printStudyPlan(w io.Writer, plan *advisor.StudyPlan) {
	heading(w, "Study plan", 72)
	fmt.Fprintln(w, plan.Summary)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-5s  %-20s  %5s  %s\n", "Day", "Skill", "Min", "Focus")
	rule(w, 72)
	for _, s := range plan.Sessions {
		fmt.Fprintf(w, "%-5d  %-20s  %5d  %s\n", s.Day, truncate(s.SkillID, 20), s.Minutes, s.Focus)
	}
	rule(w, 72)
	fmt.Fprintf(w, "%-5s  %-20s  %5d\n", "", "total", plan.TotalMinutes())
	if plan.Encouragement != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Render(theme.Hint, plan.Encouragement))
	}
}

func init() {
	adviseCmd.Flags().StringP("learner", "l", "", "Learner id")
	adviseCmd.Flags().Bool("plan", false, "Ask for a structured day-by-day study plan instead of prose")
	adviseCmd.Flags().Bool("json", false, "Print the study plan as JSON (with --plan)")
}
