// Package config defines the canonical, JSON-serializable configuration model
// for the loader. It is intentionally small, explicit, and dependency-free so
// that run configurations can be loaded from disk and passed through the
// program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in config
//     files under configs/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by
//     the standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job":     "musicetl",
//	  "corpora": { "song_dir": "data/song_data", "log_dir": "data/log_data" },
//	  "parser":  { "options": { "normalize_unicode": true } },
//	  "storage": { "kind": "postgres", "db": { "dsn": "postgresql://..." } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline describes one full loader run in JSON. It is the top-level object
// decoded from a config file (e.g., configs/*.json).
type Pipeline struct {
	// Job names the run. It is used for metrics labeling (e.g. as the
	// Pushgateway job name) and identifying runs in logs.
	Job string `json:"job"`

	// Corpora locates the two input file trees.
	Corpora Corpora `json:"corpora"`

	// Parser configures how raw bytes are turned into records.
	Parser Parser `json:"parser"`

	// Storage describes where extracted rows are written.
	Storage Storage `json:"storage"`

	Runtime RuntimeConfig `json:"runtime"`
	Metrics Metrics       `json:"metrics"`
}

// Corpora holds the root directories of the two input corpora. Each directory
// is walked recursively for *.json files.
type Corpora struct {
	// SongDir is the root of the song catalog corpus (one JSON object per file).
	SongDir string `json:"song_dir"`

	// LogDir is the root of the activity log corpus (NDJSON, one event per line).
	LogDir string `json:"log_dir"`
}

// RuntimeConfig controls concurrency.
type RuntimeConfig struct {
	// SongWorkers bounds concurrent song-file loads. Zero or negative means
	// sequential. Activity files are always processed sequentially so that
	// cross-file last-write-wins stays deterministic.
	SongWorkers int `json:"song_workers"`
}

// Parser configures record parsing for both corpora.
type Parser struct {
	// Options is a free-form map interpreted by the parser. Typical keys:
	//   normalize_unicode (bool)
	Options Options `json:"options"`
}

// Storage selects the sink used to persist extracted rows.
type Storage struct {
	// Kind selects the storage implementation registered under that name
	// (e.g. "postgres", "sqlite", "mysql", "mssql").
	Kind string `json:"kind"`

	// DB carries the connection options shared by all SQL sinks.
	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the connection string in the selected driver's format.
	DSN string `json:"dsn"`

	// AutoCreateTables runs the sink's schema bootstrap (CREATE TABLE IF NOT
	// EXISTS) before loading.
	AutoCreateTables bool `json:"auto_create_tables"`
}

// Metrics selects an optional metrics backend for the run.
type Metrics struct {
	// Backend selects the implementation: "", "none", "prometheus", "datadog".
	Backend string `json:"backend"`

	// PushgatewayURL is required when Backend is "prometheus".
	PushgatewayURL string `json:"pushgateway_url"`

	// DogstatsdAddr is required when Backend is "datadog",
	// e.g. "127.0.0.1:8125".
	DogstatsdAddr string `json:"dogstatsd_addr"`
}

// Load reads and decodes a Pipeline from a JSON file.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return p, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
