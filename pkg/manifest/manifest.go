// Package manifest reads the JSON manifest that lists the tables to generate units for.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// DefaultPath is the manifest location used when none is configured.
const DefaultPath = "assets.json"

// Load reads and parses the manifest at path.
// Any failure is reported as a *domain.ManifestError.
func Load(path string) ([]domain.ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ManifestError{Path: path, Index: -1, Err: err}
	}

	entries, err := Parse(data)
	if err != nil {
		var me *domain.ManifestError
		if errors.As(err, &me) {
			me.Path = path
			return nil, me
		}
		return nil, &domain.ManifestError{Path: path, Index: -1, Err: err}
	}
	return entries, nil
}

// Parse decodes manifest content: a JSON array of objects with string "name" and
// "source_table" fields. Unknown fields are ignored.
func Parse(data []byte) ([]domain.ManifestEntry, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domain.ManifestError{Index: -1, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	rows, ok := raw.([]any)
	if !ok {
		return nil, &domain.ManifestError{Index: -1, Err: fmt.Errorf("expected a JSON array, got %s", jsonKind(raw))}
	}

	entries := make([]domain.ManifestEntry, 0, len(rows))
	for i, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			return nil, &domain.ManifestError{Index: i, Err: fmt.Errorf("expected an object, got %s", jsonKind(row))}
		}

		entry, err := decodeEntry(obj)
		if err != nil {
			return nil, &domain.ManifestError{Index: i, Err: err}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeEntry(obj map[string]any) (domain.ManifestEntry, error) {
	var entry domain.ManifestEntry
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &entry,
		TagName: "mapstructure",
	})
	if err != nil {
		return entry, err
	}
	if err := dec.Decode(obj); err != nil {
		return entry, err
	}

	if entry.Name == "" {
		return entry, fmt.Errorf("missing or empty %q", "name")
	}
	if entry.SourceTable == "" {
		return entry, fmt.Errorf("missing or empty %q", "source_table")
	}
	return entry, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
