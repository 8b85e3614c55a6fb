package domain

// ManifestEntry is one row of the manifest file.
type ManifestEntry struct {
	Name        string `json:"name" mapstructure:"name"`
	SourceTable string `json:"source_table" mapstructure:"source_table"`
}
