package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/masteryrank/internal/logger"
	"github.com/abhisek/masteryrank/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an
// event once its stream finishes, fails or is abandoned by the consumer.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithLogging wraps a Provider with event logging. provider names the
// backend ("anthropic", "openai", ...) in the recorded events.
func WithLogging(p Provider, provider string, repo store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Stream(ctx context.Context, req Request) Stream {
	return func(yield func(Chunk, error) bool) {
		start := time.Now()
		var (
			text      strings.Builder
			usage     Usage
			streamErr error
		)

		defer func() {
			l.record(ctx, req, start, text.String(), usage, streamErr)
		}()

		for c, err := range l.inner.Stream(ctx, req) {
			if err != nil {
				streamErr = err
				yield(Chunk{}, err)
				return
			}
			text.WriteString(c.Text)
			if c.Usage != nil {
				usage = *c.Usage
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) record(ctx context.Context, req Request, start time.Time, text string, usage Usage, err error) {
	data := store.LLMRequestEventData{
		Provider:     l.provider,
		Model:        l.inner.ModelID(),
		Purpose:      PurposeFrom(ctx),
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		LatencyMs:    time.Since(start).Milliseconds(),
		Success:      err == nil,
		RequestBody:  serializeRequest(req),
		ResponseBody: text,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.log.Debug("llm request finished",
		"provider", data.Provider, "model", data.Model, "purpose", data.Purpose,
		"learner", LearnerFrom(ctx),
		"input_tokens", data.InputTokens, "output_tokens", data.OutputTokens,
		"latency_ms", data.LatencyMs, "success", data.Success)

	// The request outcome stands even if it cannot be recorded.
	if logErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		l.log.Warn("failed to record LLM request event", "error", logErr)
	}
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
