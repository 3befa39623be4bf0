package ingest

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemaFiles = map[Kind]string{
	KindRecords: "schemas/record.json",
	KindEvents:  "schemas/event.json",
	KindItems:   "schemas/item.json",
}

// compiled caches one compiled schema per kind.
var compiled sync.Map // map[Kind]*jsonschema.Schema

func schemaFor(kind Kind) (*jsonschema.Schema, error) {
	if cached, ok := compiled.Load(kind); ok {
		return cached.(*jsonschema.Schema), nil
	}

	name, ok := schemaFiles[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for kind %q", kind)
	}
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	var def any
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := "schema://masteryrank/" + name
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	compiled.Store(kind, s)
	return s, nil
}
