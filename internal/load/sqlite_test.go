package load

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"musicetl/internal/parser"
	"musicetl/internal/storage"
	_ "musicetl/internal/storage/sqlite"
)

// These tests run the coordinator against a real SQLite file to check the
// properties the fakes cannot: upsert idempotence, play replay protection,
// and the exact-match lookup in actual SQL.

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// openDB opens a repository on a fresh database file with the schema applied.
func openDB(t *testing.T) (storage.Repository, string) {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "etl.db")
	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: dbPath})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(repo.Close)
	if err := storage.EnsureSchema(ctx, "sqlite", repo); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return repo, dbPath
}

// countRows queries one table through a direct connection, after the loader
// has committed.
func countRows(t *testing.T, dbPath, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSQLite_SongLoadIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, dbPath := openDB(t)
	c := New(repo, parser.Options{})

	path := writeFile(t, t.TempDir(), "song.json", songFile)

	for i := 0; i < 2; i++ {
		res := c.SongFile(ctx, path)
		if res.Failed() {
			t.Fatalf("run %d: %v", i+1, res.Err)
		}
	}

	if n := countRows(t, dbPath, "songs"); n != 1 {
		t.Errorf("songs rows = %d, want 1 after reload", n)
	}
	if n := countRows(t, dbPath, "artists"); n != 1 {
		t.Errorf("artists rows = %d, want 1 after reload", n)
	}
}

func TestSQLite_ActivityLoadMatchesAndReplays(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, dbPath := openDB(t)
	c := New(repo, parser.Options{})
	dir := t.TempDir()

	songPath := writeFile(t, dir, "song.json", songFile)
	eventsPath := writeFile(t, dir, "events.json", activityFile)

	if res := c.SongFile(ctx, songPath); res.Failed() {
		t.Fatalf("song load: %v", res.Err)
	}

	res := c.ActivityFile(ctx, eventsPath)
	if res.Failed() {
		t.Fatalf("activity load: %v", res.Err)
	}
	if res.Matched != 1 {
		t.Errorf("Matched = %d, want 1 (exact title/artist/duration hit)", res.Matched)
	}
	if n := countRows(t, dbPath, "songplays"); n != 2 {
		t.Errorf("songplays rows = %d, want 2", n)
	}
	if n := countRows(t, dbPath, "time"); n != 2 {
		t.Errorf("time rows = %d, want 2", n)
	}
	if n := countRows(t, dbPath, "users"); n != 1 {
		t.Errorf("users rows = %d, want 1", n)
	}

	// Replaying the same log file must not duplicate fact rows.
	if res := c.ActivityFile(ctx, eventsPath); res.Failed() {
		t.Fatalf("activity replay: %v", res.Err)
	}
	if n := countRows(t, dbPath, "songplays"); n != 2 {
		t.Errorf("songplays rows after replay = %d, want 2", n)
	}

	// The matched play points at the catalog row.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var songID, artistID string
	err = db.QueryRow(
		"SELECT song_id, artist_id FROM songplays WHERE song_id IS NOT NULL",
	).Scan(&songID, &artistID)
	if err != nil {
		t.Fatalf("query matched play: %v", err)
	}
	if songID != "SOZCTXZ12AB0182364" || artistID != "AR5KOSW1187FB35FF4" {
		t.Errorf("matched keys = %s/%s", songID, artistID)
	}
}

func TestSQLite_UserUpgradeAcrossFiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, dbPath := openDB(t)
	c := New(repo, parser.Options{})
	dir := t.TempDir()

	day1 := writeFile(t, dir, "2018-11-01-events.json",
		`{"ts":1541000000000,"page":"NextSong","userId":"15","firstName":"Lily","lastName":"Koch","gender":"F","level":"free","song":"x","artist":"y","length":1,"sessionId":1}`)
	day2 := writeFile(t, dir, "2018-11-02-events.json",
		`{"ts":1541100000000,"page":"NextSong","userId":"15","firstName":"Lily","lastName":"Koch","gender":"F","level":"paid","song":"x","artist":"y","length":1,"sessionId":2}`)

	for _, path := range []string{day1, day2} {
		if res := c.ActivityFile(ctx, path); res.Failed() {
			t.Fatalf("load %s: %v", path, res.Err)
		}
	}

	if n := countRows(t, dbPath, "users"); n != 1 {
		t.Fatalf("users rows = %d, want 1", n)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var level string
	if err := db.QueryRow("SELECT level FROM users WHERE user_id = '15'").Scan(&level); err != nil {
		t.Fatalf("query user: %v", err)
	}
	if level != "paid" {
		t.Errorf("level = %q, want paid (later file wins)", level)
	}
}
