package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider. Chunks are
// streamed in order; when Chunks is empty, Content is streamed as a single
// chunk. A non-nil Err is reported after the chunks have been sent.
type MockResponse struct {
	Content    json.RawMessage
	Chunks     []string
	Usage      Usage
	StopReason string
	Err        error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
	delivered int
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Stream dequeues the next canned response when ranged over. An empty
// queue fails with ErrProviderUnavailable.
func (m *MockProvider) Stream(_ context.Context, req Request) Stream {
	return func(yield func(Chunk, error) bool) {
		m.mu.Lock()
		m.Calls = append(m.Calls, req)
		if len(m.responses) == 0 {
			m.mu.Unlock()
			yield(Chunk{}, &ErrProviderUnavailable{})
			return
		}
		resp := m.responses[0]
		m.responses = m.responses[1:]
		m.mu.Unlock()

		chunks := resp.Chunks
		if len(chunks) == 0 && len(resp.Content) > 0 {
			chunks = []string{string(resp.Content)}
		}
		for _, c := range chunks {
			if !yield(Chunk{Text: c}, nil) {
				return
			}
			m.mu.Lock()
			m.delivered++
			m.mu.Unlock()
		}

		if resp.Err != nil {
			yield(Chunk{}, resp.Err)
			return
		}
		stop := resp.StopReason
		if stop == "" {
			stop = "end"
		}
		usage := resp.Usage
		yield(Chunk{Usage: &usage, StopReason: stop}, nil)
	}
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of streams started.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Delivered returns how many text chunks consumers accepted.
func (m *MockProvider) Delivered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delivered
}
