package advisor

import (
	"fmt"
	"strings"
	"time"
)

const adviceSystemPrompt = `You are a study coach. You read a learner's skill mastery forecast and explain, in plain language, what to study next and why. Only use the numbers you are given. Do not invent skills.`

const planSystemPrompt = `You are a study coach building a short study plan from a learner's skill mastery forecast. Only schedule skills from the list you are given.`

func writeForecast(b *strings.Builder, in Input, maxSkills int) {
	fmt.Fprintf(b, "Learner: %s\n", in.LearnerID)

	b.WriteString("\nSkill forecast:\n")
	if len(in.Predictions) == 0 {
		b.WriteString("None\n")
	}
	for i, p := range in.Predictions {
		if i == maxSkills {
			fmt.Fprintf(b, "(%d more skills omitted)\n", len(in.Predictions)-maxSkills)
			break
		}
		fmt.Fprintf(b, "- %s: mastery now %.0f%%, in %s %.0f%%, risk %s, next action %s\n",
			skillLabel(p.SkillID, p.SkillName), p.CurrentMastery*100, days(p.Horizon),
			p.PredictedMastery*100, p.RiskLevel, p.RecommendedAction)
	}

	if len(in.Path) > 0 {
		b.WriteString("\nPriority order:\n")
		for i, s := range in.Path {
			if i == maxSkills {
				break
			}
			fmt.Fprintf(b, "%d. %s (priority %.1f, about %.0f min): %s\n",
				i+1, skillLabel(s.SkillID, s.SkillName), s.Priority, s.EstimatedMinutes, s.Reason)
		}
	}

	if len(in.Recommendations) > 0 {
		b.WriteString("\nRecommended material:\n")
		for _, r := range in.Recommendations {
			title := r.Item.Title
			if title == "" {
				title = r.Item.ID
			}
			fmt.Fprintf(b, "- %s [%s]: %s\n", title, r.Item.Type, r.Reason)
		}
	}
}

func buildAdviceUserMessage(in Input, maxSkills int) string {
	var b strings.Builder
	writeForecast(&b, in, maxSkills)

	b.WriteString(`
Instructions:
Write a short note to the learner (at most 150 words):
1. Name the one or two skills that need attention first and say why, using the forecast.
2. Mention any skill at high risk of being forgotten.
3. If material is recommended, point to it.
Use plain text. No headings.`)

	return b.String()
}

func buildPlanUserMessage(in Input, maxSkills, days int) string {
	var b strings.Builder
	writeForecast(&b, in, maxSkills)

	fmt.Fprintf(&b, `
Instructions:
Build a %d-day study plan:
1. Schedule at most two sessions per day.
2. Put high-priority and high-risk skills early.
3. Use skill ids exactly as written, without the name in parentheses.
4. Keep each focus to one sentence.`, days)

	return b.String()
}

func skillLabel(id, name string) string {
	if name == "" || name == id {
		return id
	}
	return fmt.Sprintf("%s (%s)", id, name)
}

func days(d time.Duration) string {
	n := int(d.Hours() / 24)
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
