package llm

import (
	"context"
	"encoding/json"
	"iter"
	"strings"
)

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Stream starts a generation and returns its output as a lazy,
	// finite sequence of chunks. Nothing is sent until the sequence is
	// ranged over. A stream is consumed once; ranging over it again
	// issues a new request. The consumer may stop early, which releases
	// the underlying connection. A failure is reported as exactly one
	// (Chunk{}, err) pair and ends the sequence.
	Stream(ctx context.Context, req Request) Stream

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Stream is the chunk sequence produced by a Provider.
type Stream = iter.Seq2[Chunk, error]

// Chunk is one piece of streamed output. The final chunk of a successful
// stream carries Usage and StopReason and usually no text.
type Chunk struct {
	Text       string
	Usage      *Usage
	StopReason string // "end" or "max_tokens", set on the final chunk
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Advice requests carry a
	// single user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When set, the provider uses its native structured output mechanism
	// and Generate validates the collected text against it.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (schema name for OpenAI). Kebab-case,
	// e.g. "study-plan".
	Name string

	// Description is a human-readable description of what this schema
	// represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response is a fully collected stream.
type Response struct {
	// Content is the concatenated output. For schema requests it is the
	// validated JSON object with any markdown fence removed.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the model that served the request.
	Model string

	// StopReason indicates why generation stopped: "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// errStream returns a stream that fails immediately with err.
func errStream(err error) Stream {
	return func(yield func(Chunk, error) bool) {
		yield(Chunk{}, err)
	}
}

// Collect drains a stream into a Response.
func Collect(s Stream) (*Response, error) {
	var (
		b    strings.Builder
		resp Response
	)
	for c, err := range s {
		if err != nil {
			return nil, err
		}
		b.WriteString(c.Text)
		if c.Usage != nil {
			resp.Usage = *c.Usage
		}
		if c.StopReason != "" {
			resp.StopReason = c.StopReason
		}
	}
	if resp.StopReason == "" {
		resp.StopReason = "end"
	}
	resp.Content = json.RawMessage(b.String())
	return &resp, nil
}

// Generate streams a request to completion. When the request has a
// schema, the output is validated and a non-conforming response is
// requested once more before giving up.
func Generate(ctx context.Context, p Provider, req Request) (*Response, error) {
	var lastErr error
	for range 2 {
		resp, err := Collect(p.Stream(ctx, req))
		if err != nil {
			return nil, err
		}
		resp.Model = p.ModelID()
		if resp.StopReason == "max_tokens" {
			return nil, &ErrMaxTokensExceeded{Content: resp.Content}
		}
		if req.Schema == nil {
			return resp, nil
		}

		content, err := decodeStructured(req.Schema, resp.Content)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Content = content
		return resp, nil
	}
	return nil, lastErr
}
