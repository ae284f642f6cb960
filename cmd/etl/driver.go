package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"musicetl/internal/config"
	"musicetl/internal/datasource/file"
	"musicetl/internal/load"
	"musicetl/internal/metrics"
	"musicetl/internal/parser"
	"musicetl/internal/storage"
)

// newRepositoryFn indirects repository construction for tests.
var newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	return storage.New(ctx, cfg)
}

// run executes one full batch: discover both corpora, load every song file,
// then every activity file. A file that fails is logged, counted, and skipped;
// the run keeps going so one bad input cannot block the rest of the batch.
func run(ctx context.Context, p config.Pipeline) error {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:             p.Storage.Kind,
		DSN:              p.Storage.DB.DSN,
		AutoCreateTables: p.Storage.DB.AutoCreateTables,
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer repo.Close()

	if p.Storage.DB.AutoCreateTables {
		if err := storage.EnsureSchema(ctx, p.Storage.Kind, repo); err != nil {
			return fmt.Errorf("apply DDL: %w", err)
		}
	}

	opts := parser.Options{
		NormalizeUnicode: p.Parser.Options.Bool("normalize_unicode", false),
	}
	coord := load.New(repo, opts)

	songFiles, err := file.ListJSON(p.Corpora.SongDir)
	if err != nil {
		return fmt.Errorf("discover song corpus: %w", err)
	}
	logFiles, err := file.ListJSON(p.Corpora.LogDir)
	if err != nil {
		return fmt.Errorf("discover activity corpus: %w", err)
	}
	log.Printf("%d files found in %s", len(songFiles), p.Corpora.SongDir)
	log.Printf("%d files found in %s", len(logFiles), p.Corpora.LogDir)

	// Song files first: fact resolution in the activity pass can only match
	// catalog rows loaded before it runs.
	songResults, err := loadSongs(ctx, coord, songFiles, p.Runtime.SongWorkers)
	if err != nil {
		return err
	}
	activityResults, err := loadActivity(ctx, coord, logFiles)
	if err != nil {
		return err
	}

	failed := summarize(songResults, activityResults)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(songResults)+len(activityResults))
	}
	return nil
}

// loadSongs processes the song corpus, with up to workers files in flight.
// Song upserts are independent and idempotent so concurrency is safe here.
// Failures are captured per file, never propagated through the group: one bad
// file must not cancel its siblings.
func loadSongs(ctx context.Context, coord *load.Coordinator, paths []string, workers int) ([]load.Result, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]load.Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			start := time.Now()
			res := coord.SongFile(gctx, path)
			record(res, time.Since(start))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range results {
		logFileResult(i+1, len(results), results[i])
	}
	return results, nil
}

// loadActivity processes the activity corpus strictly in order. Sequential
// processing plus the sorted file list is what makes cross-file
// last-write-wins on users deterministic.
func loadActivity(ctx context.Context, coord *load.Coordinator, paths []string) ([]load.Result, error) {
	results := make([]load.Result, 0, len(paths))
	for i, path := range paths {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		start := time.Now()
		res := coord.ActivityFile(ctx, path)
		record(res, time.Since(start))
		logFileResult(i+1, len(paths), res)
		results = append(results, res)
	}
	return results, nil
}

// record emits per-file metrics: outcome, duration, and committed row counts.
func record(res load.Result, d time.Duration) {
	corpus := string(res.Corpus)
	metrics.RecordFile(corpus, res.Err, d)
	metrics.RecordRows(corpus, "songs", res.Songs)
	metrics.RecordRows(corpus, "artists", res.Artists)
	metrics.RecordRows(corpus, "time", res.Times)
	metrics.RecordRows(corpus, "users", res.Users)
	metrics.RecordRows(corpus, "songplays", res.Plays)
}

func logFileResult(i, n int, res load.Result) {
	if res.Failed() {
		log.Printf("%d/%d files processed: %s: %v", i, n, res.Path, res.Err)
		return
	}
	switch res.Corpus {
	case load.CorpusSong:
		log.Printf("%d/%d files processed: %s: songs=%d artists=%d",
			i, n, res.Path, res.Songs, res.Artists)
	case load.CorpusActivity:
		log.Printf("%d/%d files processed: %s: time=%d users=%d plays=%d matched=%d",
			i, n, res.Path, res.Times, res.Users, res.Plays, res.Matched)
	}
}

// summarize logs aggregate totals for the run and returns the failed file
// count.
func summarize(songs, activity []load.Result) int {
	var (
		failed                       int
		songRows, artistRows         int64
		timeRows, userRows, playRows int64
		attempted, matched           int
	)
	for _, r := range songs {
		if r.Failed() {
			failed++
			continue
		}
		songRows += r.Songs
		artistRows += r.Artists
	}
	for _, r := range activity {
		if r.Failed() {
			failed++
			continue
		}
		timeRows += r.Times
		userRows += r.Users
		playRows += r.Plays
		attempted += r.Attempted
		matched += r.Matched
	}

	log.Printf("catalog: songs=%d artists=%d", songRows, artistRows)
	log.Printf("activity: time=%d users=%d plays=%d matched=%d/%d",
		timeRows, userRows, playRows, matched, attempted)
	if failed > 0 {
		log.Printf("failed files: %d", failed)
	}
	return failed
}
