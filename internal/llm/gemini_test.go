package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-lite", "gemini-2.5-flash-lite"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string", "description": "overview"},
			"sessions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": 14,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"day":     map[string]any{"type": "integer", "minimum": 1},
						"minutes": map[string]any{"type": "integer", "minimum": 5, "maximum": 120.0},
						"focus":   map[string]any{"type": "string", "enum": []any{"review", "practice"}},
						"weight":  map[string]any{"type": "number"},
						"done":    map[string]any{"type": "boolean"},
					},
					"required": []any{"day", "minutes"},
				},
			},
		},
		"required": []any{"summary", "sessions"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != genai.TypeObject || len(schema.Properties) != 2 || len(schema.Required) != 2 {
		t.Fatalf("unexpected root schema: %+v", schema)
	}
	if schema.Properties["summary"].Description != "overview" {
		t.Errorf("description lost: %q", schema.Properties["summary"].Description)
	}

	sessions := schema.Properties["sessions"]
	if sessions.Type != genai.TypeArray {
		t.Fatalf("sessions type = %s", sessions.Type)
	}
	if sessions.MinItems == nil || *sessions.MinItems != 1 || sessions.MaxItems == nil || *sessions.MaxItems != 14 {
		t.Errorf("item bounds = %v..%v", sessions.MinItems, sessions.MaxItems)
	}

	item := sessions.Items
	wantTypes := map[string]genai.Type{
		"day":     genai.TypeInteger,
		"minutes": genai.TypeInteger,
		"focus":   genai.TypeString,
		"weight":  genai.TypeNumber,
		"done":    genai.TypeBoolean,
	}
	for name, want := range wantTypes {
		if got := item.Properties[name].Type; got != want {
			t.Errorf("%s type = %s, want %s", name, got, want)
		}
	}
	minutes := item.Properties["minutes"]
	if minutes.Minimum == nil || *minutes.Minimum != 5 || minutes.Maximum == nil || *minutes.Maximum != 120 {
		t.Errorf("minutes bounds = %v..%v", minutes.Minimum, minutes.Maximum)
	}
	if item.Properties["day"].Maximum != nil {
		t.Error("day should have no maximum")
	}
	if len(item.Properties["focus"].Enum) != 2 {
		t.Errorf("focus enum = %v", item.Properties["focus"].Enum)
	}
}

func TestBuildGeminiContents(t *testing.T) {
	got := buildGeminiContents([]Message{
		{Role: RoleUser, Content: "How am I doing?"},
		{Role: RoleAssistant, Content: "Fractions are slipping."},
	})
	if len(got) != 2 {
		t.Fatalf("got %d contents", len(got))
	}
	if got[0].Role != "user" || got[1].Role != "model" {
		t.Errorf("roles = %q, %q", got[0].Role, got[1].Role)
	}
	if got[1].Parts[0].Text != "Fractions are slipping." {
		t.Errorf("text = %q", got[1].Parts[0].Text)
	}
}

func TestMapGeminiStopReason(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"in progress", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, ""},
		{"stop", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}}}, "end"},
		{"max tokens", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}}}, "max_tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapGeminiStopReason(tt.resp); got != tt.want {
				t.Errorf("mapGeminiStopReason() = %q, want %q", got, tt.want)
			}
		})
	}
}
