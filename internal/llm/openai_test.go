package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	client := openai.NewClientWithConfig(config)

	return &OpenAIProvider{
		client: client,
		model:  "gpt-4o-mini",
	}
}

func openAIChunk(content, finish string) string {
	finishJSON := "null"
	if finish != "" {
		finishJSON = fmt.Sprintf("%q", finish)
	}
	b, _ := json.Marshal(content)
	return fmt.Sprintf(`{"id":"chatcmpl-test","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":%s},"finish_reason":%s}]}`, b, finishJSON)
}

func writeOpenAIStream(w http.ResponseWriter, finish string, texts ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, text := range texts {
		fmt.Fprintf(w, "data: %s\n\n", openAIChunk(text, ""))
	}
	fmt.Fprintf(w, "data: %s\n\n", openAIChunk("", finish))
	fmt.Fprint(w, `data: {"id":"chatcmpl-test","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[],"usage":{"prompt_tokens":40,"completion_tokens":25,"total_tokens":65}}`+"\n\n")
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func TestOpenAIProvider_Streams(t *testing.T) {
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		writeOpenAIStream(w, "stop", "Work on ", "long division.")
	}

	p := newTestOpenAIProvider(t, handler)
	resp, err := Collect(p.Stream(context.Background(), Request{
		System:    "You are a math tutor.",
		Messages:  []Message{{Role: RoleUser, Content: "What next?"}},
		MaxTokens: 256,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != "Work on long division." {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 || resp.Usage.TotalTokens != 65 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
	if body["stream"] != true {
		t.Fatalf("expected a streaming request, got %v", body)
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
}

func TestOpenAIProvider_LengthStop(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeOpenAIStream(w, "length", "truncat")
	}

	p := newTestOpenAIProvider(t, handler)
	resp, err := Collect(p.Stream(context.Background(), Request{MaxTokens: 2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != "max_tokens" {
		t.Fatalf("expected max_tokens, got %q", resp.StopReason)
	}
}

func TestOpenAIProvider_EarlyStop(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeOpenAIStream(w, "stop", "one", "two", "three")
	}

	p := newTestOpenAIProvider(t, handler)
	n := 0
	for _, err := range p.Stream(context.Background(), Request{}) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n++
		break
	}
	if n != 1 {
		t.Fatalf("expected to stop after one chunk, got %d", n)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var rl *ErrRateLimit
			return errors.As(err, &rl)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var u *ErrProviderUnavailable
			return errors.As(err, &u)
		}},
		{"unauthorized", http.StatusUnauthorized, func(err error) bool {
			var r *ErrRequest
			return errors.As(err, &r) && r.StatusCode == http.StatusUnauthorized
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{
						"type":    "error",
						"message": "nope",
					},
				})
			}

			p := newTestOpenAIProvider(t, handler)
			_, err := Collect(p.Stream(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			}))
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error: %T (%v)", err, err)
			}
		})
	}
}

func TestOpenAIProvider_SchemaRequest(t *testing.T) {
	p := &OpenAIProvider{model: "gpt-4o-mini"}
	req, err := p.chatRequest(Request{Schema: testSchema()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.JSONSchema == nil {
		t.Fatal("expected a JSON schema response format")
	}
	if req.ResponseFormat.JSONSchema.Name != "test-object" || !req.ResponseFormat.JSONSchema.Strict {
		t.Fatalf("unexpected schema format: %+v", req.ResponseFormat.JSONSchema)
	}
	if req.StreamOptions == nil || !req.StreamOptions.IncludeUsage {
		t.Fatal("expected usage to be requested in the stream")
	}
}

func TestOpenAIProvider_ModelID(t *testing.T) {
	p := &OpenAIProvider{model: "gpt-4o-mini"}
	if p.ModelID() != "gpt-4o-mini" {
		t.Fatalf("expected 'gpt-4o-mini', got %q", p.ModelID())
	}
}

func TestOpenAIModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gpt-4o", "gpt-4o"},
		{"gpt-mini", "gpt-4.1-mini"},
		{"o4-mini", "o4-mini"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, openaiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
