// Package ingest reads learning records, behavior events and catalog items
// from JSON array or JSON Lines files.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/masteryrank/internal/apperr"
	"github.com/abhisek/masteryrank/internal/behavior"
	"github.com/abhisek/masteryrank/internal/knowledge"
	"github.com/abhisek/masteryrank/internal/logger"
)

// Kind selects what a file contains.
type Kind string

const (
	KindRecords Kind = "records"
	KindEvents  Kind = "events"
	KindItems   Kind = "items"
)

// ParseKind converts a flag value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindRecords, KindEvents, KindItems:
		return k, nil
	}
	return "", apperr.Invalid("kind", "must be one of records, events, items; got %q", s)
}

// maxLine bounds a single JSON Lines document.
const maxLine = 4 << 20

// parallelism bounds how many files are parsed at once.
const parallelism = 4

// Batch is the parsed content of one source.
type Batch struct {
	Source  string
	Kind    Kind
	Records []knowledge.Record
	Events  []behavior.Event
	Items   []behavior.Item
}

// Len returns the number of documents in the batch.
func (b Batch) Len() int {
	return len(b.Records) + len(b.Events) + len(b.Items)
}

// DocumentError reports which document of a source was rejected.
// Index is 1-based: the array position or the line number.
type DocumentError struct {
	Source string
	Index  int
	Err    error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: document %d: %v", e.Source, e.Index, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Parse reads every document from r. The whole source is rejected on the
// first invalid document so nothing partial reaches the log.
func Parse(kind Kind, source string, r io.Reader) (Batch, error) {
	batch := Batch{Source: source, Kind: kind}

	data, err := io.ReadAll(r)
	if err != nil {
		return batch, fmt.Errorf("read %s: %w", source, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return batch, nil
	}

	if data[0] == '[' {
		var docs []json.RawMessage
		if err := json.Unmarshal(data, &docs); err != nil {
			return batch, fmt.Errorf("decode %s: %w", source, err)
		}
		for i, doc := range docs {
			if err := batch.add(doc); err != nil {
				return batch, &DocumentError{Source: source, Index: i + 1, Err: err}
			}
		}
		return batch, nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		doc := bytes.TrimSpace(sc.Bytes())
		if len(doc) == 0 {
			continue
		}
		if err := batch.add(doc); err != nil {
			return batch, &DocumentError{Source: source, Index: line, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return batch, fmt.Errorf("scan %s: %w", source, err)
	}
	return batch, nil
}

// add validates one document against the kind's schema and the domain
// rules, then appends it.
func (b *Batch) add(doc []byte) error {
	var generic any
	if err := json.Unmarshal(doc, &generic); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := schemaFor(b.Kind)
	if err != nil {
		return err
	}
	if err := schema.Validate(generic); err != nil {
		return apperr.Invalid("document", "%v", err)
	}

	switch b.Kind {
	case KindRecords:
		var r knowledge.Record
		if err := json.Unmarshal(doc, &r); err != nil {
			return apperr.Invalid("document", "%v", err)
		}
		if err := knowledge.ValidateRecord(r); err != nil {
			return err
		}
		b.Records = append(b.Records, r)
	case KindEvents:
		var e behavior.Event
		if err := json.Unmarshal(doc, &e); err != nil {
			return apperr.Invalid("document", "%v", err)
		}
		if err := behavior.Validate(e); err != nil {
			return err
		}
		b.Events = append(b.Events, e)
	case KindItems:
		var it behavior.Item
		if err := json.Unmarshal(doc, &it); err != nil {
			return apperr.Invalid("document", "%v", err)
		}
		if err := behavior.ValidateItem(it); err != nil {
			return err
		}
		b.Items = append(b.Items, it)
	default:
		return apperr.Invalid("kind", "unknown kind %q", b.Kind)
	}
	return nil
}

// LoadFiles parses files concurrently. Batches come back in the order of
// paths so callers can append them deterministically. "-" reads stdin.
func LoadFiles(ctx context.Context, kind Kind, paths []string, log *logger.Logger) ([]Batch, error) {
	if log == nil {
		log = logger.Nop()
	}
	batches := make([]Batch, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := loadFile(kind, path)
			if err != nil {
				return err
			}
			log.Debug("parsed file", "path", path, "kind", kind, "documents", b.Len())
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func loadFile(kind Kind, path string) (Batch, error) {
	if path == "-" {
		return Parse(kind, "stdin", os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(kind, path, f)
}
