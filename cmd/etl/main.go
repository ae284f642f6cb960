package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"musicetl/internal/config"
	"musicetl/internal/metrics"
	"musicetl/internal/metrics/datadog"
	"musicetl/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "musicetl/internal/storage/all"
)

// main is the entry point for the loader binary. It loads the run config,
// optionally initializes a metrics backend, and executes the full batch.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/sample.json", "run config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (none, prometheus, datadog); overrides config")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides config and env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides config)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	p, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	// Validate run config.
	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	initMetrics(p, metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("run: job=%s song_dir=%s log_dir=%s storage=%s",
			p.Job, p.Corpora.SongDir, p.Corpora.LogDir, p.Storage.Kind)
	}

	if err := run(ctx, p); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// initMetrics installs the configured metrics backend. Resolution order for
// each setting: flag → config → env → default. A backend that fails to
// initialize is logged and skipped; the nop backend remains.
func initMetrics(p config.Pipeline, backendFlg, gwURLFlg, ddAddrFlg string, verbose bool) {
	backendName := backendFlg
	if backendName == "" {
		backendName = p.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "prometheus", "pushgateway":
		gwURL := gwURLFlg
		if gwURL == "" {
			gwURL = p.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		jobName := p.Job
		if jobName == "" {
			jobName = "musicetl"
		}

		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
		metrics.SetBackend(b)

	case "datadog":
		addr := ddAddrFlg
		if addr == "" {
			addr = p.Metrics.DogstatsdAddr
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}

		b, err := datadog.NewBackend(datadog.Config{
			Addr:      addr,
			Namespace: "musicetl.",
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: addr=%v, backend=%v", addr, backendName)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
