package domain

import "context"

// UnitFunc is the execution body of a processing unit.
type UnitFunc func(ctx context.Context) (string, error)

// ProcessingUnit is a named unit of work generated from a manifest entry.
type ProcessingUnit struct {
	Name        string   `json:"name"`
	SourceTable string   `json:"source_table"`
	Deps        []string `json:"deps,omitempty"`
	Kinds       []string `json:"kinds,omitempty"`

	// Body is not serialized.
	Body UnitFunc `json:"-"`
}

// ExternalSpec declares an upstream the units read from but that is produced elsewhere.
type ExternalSpec struct {
	Name string `json:"name"`
}
