// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "corpora.song_dir"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	p, err := config.Load(path)
//	if err != nil { ... }
//	issues := config.ValidatePipeline(p)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	// Top-level pipeline checks.
	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics and logs will use the default job name",
		})
	}
	issues = append(issues, validateCorpora(p.Corpora)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

// validateCorpora validates the input directory configuration. Both corpora
// are required: a run that loads facts without the catalog (or vice versa)
// is almost always a misconfiguration.
func validateCorpora(c Corpora) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.SongDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "corpora.song_dir",
			Message:  "song_dir must not be empty",
		})
	}
	if strings.TrimSpace(c.LogDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "corpora.log_dir",
			Message:  "log_dir must not be empty",
		})
	}

	return issues
}

// validateParser validates parser configuration. Unknown option keys are
// warnings: they are usually typos, but an older binary reading a newer
// config should still run.
func validateParser(p Parser) []Issue {
	var issues []Issue

	known := map[string]struct{}{
		"normalize_unicode": {},
	}
	for key := range p.Options {
		if _, ok := known[key]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parser.options." + key,
				Message:  fmt.Sprintf("unknown parser option %q; it will be ignored", key),
			})
		}
	}

	return issues
}

// validateStorage validates storage configuration.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	// Kind is required.
	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	// Known storage kinds. Unknown kinds are warnings (for forward
	// compatibility); the registry is the authority at runtime.
	known := map[string]struct{}{
		"postgres": {},
		"sqlite":   {},
		"mysql":    {},
		"mssql":    {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching implementation is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage requires a non-empty dsn",
		})
	}

	return issues
}

// validateRuntime validates runtime configuration.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.SongWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.song_workers",
			Message:  "song_workers must not be negative",
		})
	}

	return issues
}

// validateMetrics validates metrics configuration.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
		// Metrics are optional.
	case "prometheus":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "prometheus backend requires a non-empty pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DogstatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.dogstatsd_addr",
				Message:  "datadog backend requires a non-empty dogstatsd_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; supported: none, prometheus, datadog", m.Backend),
		})
	}

	return issues
}
