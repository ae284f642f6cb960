// Package load sequences and commits writes for one input file at a time.
//
// The coordinator owns the per-file pipeline: open → parse → extract →
// write → commit. Write order is fixed (dimensions before facts) and the
// commit granularity is one transaction per input file, so a failure
// anywhere in a file's batch rolls back that file and nothing else; the
// caller moves on to the next file.
package load

import (
	"context"
	"fmt"

	"musicetl/internal/datasource"
	"musicetl/internal/datasource/file"
	"musicetl/internal/extract"
	"musicetl/internal/parser"
	"musicetl/internal/records"
	"musicetl/internal/storage"
)

// Corpus names an input file family.
type Corpus string

const (
	CorpusSong     Corpus = "song"
	CorpusActivity Corpus = "activity"
)

// Result is the per-file summary handed back to the driver.
type Result struct {
	Path   string
	Corpus Corpus

	// Attempted counts candidate fact rows for activity files (qualifying
	// events) and parsed records (always 1) for song files.
	Attempted int

	// Committed row counts per table. All zero when Err is set: the file's
	// transaction was rolled back.
	Songs   int64
	Artists int64
	Times   int64
	Users   int64
	Plays   int64

	// Matched counts fact rows whose catalog lookup resolved. Misses are
	// expected; Matched <= Plays always holds.
	Matched int

	Err error
}

// Failed reports whether the file's batch was rolled back.
func (r Result) Failed() bool { return r.Err != nil }

// Coordinator runs per-file batches against one repository. It is not safe
// for concurrent use with activity files (user last-write-wins ordering),
// but song files may be loaded concurrently from multiple goroutines since
// their upserts are independent and idempotent.
type Coordinator struct {
	repo storage.Repository
	opts parser.Options

	// openSource is a test seam; it defaults to opening local files.
	openSource func(path string) datasource.Source
}

// New constructs a Coordinator writing through repo with the given parser
// options.
func New(repo storage.Repository, opts parser.Options) *Coordinator {
	return &Coordinator{
		repo: repo,
		opts: opts,
		openSource: func(path string) datasource.Source {
			return file.NewLocal(path)
		},
	}
}

// SongFile loads one song-catalog file: exactly one song and one artist
// row, upserted (re-processing the same file cannot create duplicates).
func (c *Coordinator) SongFile(ctx context.Context, path string) Result {
	res := Result{Path: path, Corpus: CorpusSong}

	src, err := c.openSource(path).Open(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	defer src.Close()

	rec, err := parser.ReadSong(src, path, c.opts)
	if err != nil {
		res.Err = err
		return res
	}
	res.Attempted = 1

	song, artist := extract.FromSong(rec)

	batch, err := c.repo.Begin(ctx)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	committed := false
	defer func() {
		if !committed {
			_ = batch.Rollback(ctx)
		}
	}()

	if res.Songs, err = batch.UpsertSongs(ctx, []records.Song{song}); err != nil {
		res = rolledBack(res, path, err)
		return res
	}
	if res.Artists, err = batch.UpsertArtists(ctx, []records.Artist{artist}); err != nil {
		res = rolledBack(res, path, err)
		return res
	}
	if err := batch.Commit(ctx); err != nil {
		res = rolledBack(res, path, err)
		return res
	}
	committed = true
	return res
}

// ActivityFile loads one activity log file: time entries, then users, then
// one fact row per qualifying event, all inside a single transaction.
//
// Fact resolution runs after this batch's dimension writes, against
// dimension data as loaded so far (earlier commits plus this batch's own
// uncommitted writes).
func (c *Coordinator) ActivityFile(ctx context.Context, path string) Result {
	res := Result{Path: path, Corpus: CorpusActivity}

	src, err := c.openSource(path).Open(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	defer src.Close()

	events, err := parser.ReadActivity(src, path, c.opts)
	if err != nil {
		res.Err = err
		return res
	}

	dims, err := extract.FromActivity(path, events)
	if err != nil {
		res.Err = err
		return res
	}
	res.Attempted = len(dims.Events)

	batch, err := c.repo.Begin(ctx)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	committed := false
	defer func() {
		if !committed {
			_ = batch.Rollback(ctx)
		}
	}()

	if res.Times, err = batch.UpsertTimeEntries(ctx, dims.Times); err != nil {
		res = rolledBack(res, path, err)
		return res
	}
	if res.Users, err = batch.UpsertUsers(ctx, dims.Users); err != nil {
		res = rolledBack(res, path, err)
		return res
	}

	plays, matched, err := resolvePlays(ctx, batch, dims.Events)
	if err != nil {
		res = rolledBack(res, path, err)
		return res
	}
	res.Matched = matched

	if res.Plays, err = batch.InsertSongPlays(ctx, plays); err != nil {
		res = rolledBack(res, path, err)
		return res
	}
	if err := batch.Commit(ctx); err != nil {
		res = rolledBack(res, path, err)
		return res
	}
	committed = true
	return res
}

// rolledBack zeroes a result's row counts and records the write failure.
// Counts accumulated before the failure never committed, so reporting them
// would overstate what reached the sink.
func rolledBack(res Result, path string, err error) Result {
	res.Songs, res.Artists, res.Times, res.Users, res.Plays = 0, 0, 0, 0, 0
	res.Matched = 0
	res.Err = fmt.Errorf("%s: %w", path, err)
	return res
}
