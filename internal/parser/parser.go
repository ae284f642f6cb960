// Package parser reads raw JSON inputs into typed record sets.
//
// Two record kinds exist:
//
//   - song: exactly one JSON object per file (catalog metadata)
//   - activity: newline-delimited JSON, one event object per line
//
// Parsing is strict and all-or-nothing per file: a missing required field,
// a value that fails numeric coercion, or a single unparseable log line
// yields a *records.MalformedError for the whole file. Coercion is explicit
// here at the boundary so downstream stages never re-check types.
package parser

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"musicetl/internal/records"
)

// Options controls parser behavior for both record kinds.
type Options struct {
	// NormalizeUnicode applies NFC normalization to every decoded string
	// field. Catalog and log corpora are produced by different systems;
	// normalizing both sides keeps the exact-match fact lookup from missing
	// on representation-only differences.
	NormalizeUnicode bool
}

// object wraps one decoded JSON object with enough context to build precise
// malformed-record errors. Numbers are json.Number (decoders use UseNumber)
// so that integer/float coercion stays explicit and fallible.
type object struct {
	path string
	line int // 0 for song files
	m    map[string]any
	opt  Options
}

func (o *object) malformed(field, reason string, err error) error {
	return &records.MalformedError{Path: o.path, Line: o.line, Field: field, Reason: reason, Err: err}
}

func (o *object) normalize(s string) string {
	if o.opt.NormalizeUnicode {
		return norm.NFC.String(s)
	}
	return s
}

// str returns a required string field.
func (o *object) str(field string) (string, error) {
	v, ok := o.m[field]
	if !ok || v == nil {
		return "", o.malformed(field, "required field missing", nil)
	}
	s, ok := v.(string)
	if !ok {
		return "", o.malformed(field, fmt.Sprintf("expected string, got %T", v), nil)
	}
	return o.normalize(s), nil
}

// optStr returns a nullable string field; absent or null yields nil.
func (o *object) optStr(field string) (*string, error) {
	v, ok := o.m[field]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, o.malformed(field, fmt.Sprintf("expected string or null, got %T", v), nil)
	}
	s = o.normalize(s)
	return &s, nil
}

// strDefault returns a string field, or "" when absent or null. Wrong types
// are still malformed.
func (o *object) strDefault(field string) (string, error) {
	p, err := o.optStr(field)
	if err != nil || p == nil {
		return "", err
	}
	return *p, nil
}

// integer coerces a required numeric field to int64. Integral floats are
// accepted and truncated, matching the source corpus where years sometimes
// arrive as floats.
func (o *object) integer(field string) (int64, error) {
	v, ok := o.m[field]
	if !ok || v == nil {
		return 0, o.malformed(field, "required field missing", nil)
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, o.malformed(field, fmt.Sprintf("expected number, got %T", v), nil)
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, o.malformed(field, "cannot coerce to integer", err)
	}
	return int64(f), nil
}

// float coerces a required numeric field to float64.
func (o *object) float(field string) (float64, error) {
	v, ok := o.m[field]
	if !ok || v == nil {
		return 0, o.malformed(field, "required field missing", nil)
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, o.malformed(field, fmt.Sprintf("expected number, got %T", v), nil)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, o.malformed(field, "cannot coerce to float", err)
	}
	return f, nil
}

// optFloat returns a nullable float field; absent or null yields nil.
func (o *object) optFloat(field string) (*float64, error) {
	v, ok := o.m[field]
	if !ok || v == nil {
		return nil, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil, o.malformed(field, fmt.Sprintf("expected number or null, got %T", v), nil)
	}
	f, err := n.Float64()
	if err != nil {
		return nil, o.malformed(field, "cannot coerce to float", err)
	}
	return &f, nil
}

// floatDefault returns a numeric field, or 0 when absent or null.
func (o *object) floatDefault(field string) (float64, error) {
	p, err := o.optFloat(field)
	if err != nil || p == nil {
		return 0, err
	}
	return *p, nil
}

// intDefault returns an integer field, or 0 when absent or null.
func (o *object) intDefault(field string) (int64, error) {
	v, ok := o.m[field]
	if !ok || v == nil {
		return 0, nil
	}
	return o.integer(field)
}
