package advisor

import "github.com/abhisek/masteryrank/internal/llm"

// StudyPlanSchema defines the JSON schema for study plan generation.
var StudyPlanSchema = &llm.Schema{
	Name:        "study-plan",
	Description: "A short day-by-day study plan built from a learner's mastery forecast",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-3 sentence overview of where the learner stands",
			},
			"sessions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"day": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"description": "Day number, starting at 1",
						},
						"skill_id": map[string]any{
							"type":        "string",
							"description": "One of the skill ids listed in the prompt",
						},
						"minutes": map[string]any{
							"type":    "integer",
							"minimum": 5,
							"maximum": 120,
						},
						"focus": map[string]any{
							"type":        "string",
							"description": "What to practise in this session (one sentence)",
						},
					},
					"required":             []any{"day", "skill_id", "minutes", "focus"},
					"additionalProperties": false,
				},
			},
			"encouragement": map[string]any{
				"type":        "string",
				"description": "One short encouraging sentence",
			},
		},
		"required":             []any{"summary", "sessions", "encouragement"},
		"additionalProperties": false,
	},
}
