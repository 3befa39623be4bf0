package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/abhisek/masteryrank/internal/logger"
	"github.com/abhisek/masteryrank/internal/store"
)

// nopRepo satisfies store.EventRepo and drops LLM events.
type nopRepo struct{ store.EventRepo }

func (nopRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error { return nil }

type failingRepo struct{ store.EventRepo }

func (failingRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return errors.New("disk full")
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLogging_RecordsSuccessfulStream(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	mock := NewMockProvider(MockResponse{
		Chunks: []string{"Practise ", "ratios."},
		Usage:  Usage{InputTokens: 40, OutputTokens: 6, TotalTokens: 46},
	})
	p := WithLogging(mock, ProviderMock, repo, logger.Nop())

	ctx := WithPurpose(context.Background(), "advice")
	resp, err := Collect(p.Stream(ctx, Request{
		System:   "You are a tutor.",
		Messages: []Message{{Role: RoleUser, Content: "What next?"}},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != "Practise ratios." {
		t.Fatalf("unexpected content: %s", resp.Content)
	}

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if !ev.Success || ev.Purpose != "advice" || ev.Provider != ProviderMock || ev.Model != "mock" {
		t.Fatalf("unexpected event: %+v", ev.LLMRequestEventData)
	}
	if ev.InputTokens != 40 || ev.OutputTokens != 6 {
		t.Fatalf("unexpected usage: in=%d out=%d", ev.InputTokens, ev.OutputTokens)
	}
	if ev.ResponseBody != "Practise ratios." {
		t.Fatalf("unexpected response body: %q", ev.ResponseBody)
	}
	if ev.RequestBody == "" {
		t.Fatal("expected request body to be recorded")
	}
}

func TestLogging_RecordsFailure(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}})
	p := WithLogging(mock, ProviderMock, repo, nil)

	if _, err := Collect(p.Stream(context.Background(), Request{})); err == nil {
		t.Fatal("expected error")
	}

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 1 || events[0].Success || events[0].ErrorMessage == "" {
		t.Fatalf("expected one failed event, got %+v", events)
	}
}

func TestLogging_RecordsAbandonedStream(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	mock := NewMockProvider(MockResponse{Chunks: []string{"one", "two", "three"}})
	p := WithLogging(mock, ProviderMock, repo, nil)

	for range p.Stream(context.Background(), Request{}) {
		break
	}

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 1 || events[0].ResponseBody != "one" {
		t.Fatalf("expected the abandoned stream to be recorded, got %+v", events)
	}
}

func TestLogging_RepoFailureDoesNotFailRequest(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("ok")})
	p := WithLogging(mock, ProviderMock, failingRepo{}, nil)

	resp, err := Collect(p.Stream(context.Background(), Request{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != "ok" {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
}

func TestSerializeRequest(t *testing.T) {
	out := serializeRequest(Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		Schema:   &Schema{Name: "study-plan", Definition: map[string]any{"type": "object"}},
	})
	want := "[system]\nsys\n\n[user]\nhi\n\n[schema: study-plan]\n{\"type\":\"object\"}\n"
	if out != want {
		t.Fatalf("serializeRequest() = %q, want %q", out, want)
	}
}
