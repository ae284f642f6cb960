package config

import (
	"strings"
	"testing"
)

func validPipeline() Pipeline {
	return Pipeline{
		Job: "musicetl",
		Corpora: Corpora{
			SongDir: "data/song_data",
			LogDir:  "data/log_data",
		},
		Parser: Parser{Options: Options{"normalize_unicode": true}},
		Storage: Storage{
			Kind: "postgres",
			DB:   DBConfig{DSN: "postgresql://localhost/sparkifydb"},
		},
		Runtime: RuntimeConfig{SongWorkers: 4},
	}
}

func errorsOnly(issues []Issue) []Issue {
	var out []Issue
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			out = append(out, iss)
		}
	}
	return out
}

func hasIssue(issues []Issue, sev IssueSeverity, path string) bool {
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path {
			return true
		}
	}
	return false
}

func TestValidatePipeline_Valid(t *testing.T) {
	t.Parallel()

	issues := ValidatePipeline(validPipeline())
	if errs := errorsOnly(issues); len(errs) != 0 {
		t.Fatalf("valid pipeline produced errors: %v", errs)
	}
}

func TestValidatePipeline_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Pipeline)
		path   string
	}{
		{"missing song_dir", func(p *Pipeline) { p.Corpora.SongDir = "" }, "corpora.song_dir"},
		{"missing log_dir", func(p *Pipeline) { p.Corpora.LogDir = " " }, "corpora.log_dir"},
		{"missing storage kind", func(p *Pipeline) { p.Storage.Kind = "" }, "storage.kind"},
		{"missing dsn", func(p *Pipeline) { p.Storage.DB.DSN = "" }, "storage.db.dsn"},
		{"negative workers", func(p *Pipeline) { p.Runtime.SongWorkers = -1 }, "runtime.song_workers"},
		{"prometheus without url", func(p *Pipeline) { p.Metrics.Backend = "prometheus" }, "metrics.pushgateway_url"},
		{"datadog without addr", func(p *Pipeline) { p.Metrics.Backend = "datadog" }, "metrics.dogstatsd_addr"},
		{"unknown metrics backend", func(p *Pipeline) { p.Metrics.Backend = "statsd" }, "metrics.backend"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := validPipeline()
			tc.mutate(&p)
			issues := ValidatePipeline(p)
			if !hasIssue(issues, SeverityError, tc.path) {
				t.Fatalf("no error at %s; issues: %v", tc.path, issues)
			}
		})
	}
}

func TestValidatePipeline_Warnings(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Job = ""
	p.Storage.Kind = "cockroach"
	p.Parser.Options["normalise_unicode"] = true

	issues := ValidatePipeline(p)
	if len(errorsOnly(issues)) != 0 {
		t.Fatalf("warnings-only pipeline produced errors: %v", issues)
	}
	if !hasIssue(issues, SeverityWarning, "job") {
		t.Error("empty job should warn")
	}
	if !hasIssue(issues, SeverityWarning, "storage.kind") {
		t.Error("unknown storage kind should warn")
	}
	if !hasIssue(issues, SeverityWarning, "parser.options.normalise_unicode") {
		t.Error("unknown parser option should warn")
	}
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "storage.db.dsn", Message: "storage requires a non-empty dsn"}
	got := iss.Error()
	for _, want := range []string{"error", "storage.db.dsn", "non-empty dsn"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}
