package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLocal_Open(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "in.json")
	if err := os.WriteFile(path, []byte(`{"ok":true}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rc, err := NewLocal(path).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("read %q", data)
	}
}

func TestLocal_OpenMissing(t *testing.T) {
	t.Parallel()

	_, err := NewLocal(filepath.Join(t.TempDir(), "absent.json")).Open(context.Background())
	if err == nil {
		t.Fatal("Open succeeded for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v should wrap os.ErrNotExist", err)
	}
}

func TestLocal_OpenCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocal("anything").Open(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestListJSON(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// Nested layout mirroring the song corpus: song_data/A/B/C/TR...json.
	mk := func(rel string) string {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		return full
	}

	b := mk(filepath.Join("A", "B", "TRB.json"))
	a := mk(filepath.Join("A", "A", "TRA.json"))
	c := mk("TRC.JSON")
	mk("notes.txt")
	mk(filepath.Join("A", "README.md"))

	got, err := ListJSON(root)
	if err != nil {
		t.Fatalf("ListJSON: %v", err)
	}
	want := []string{a, b, c}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListJSON = %v, want %v", got, want)
	}
}

func TestListJSON_MissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := ListJSON(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("ListJSON succeeded for missing root")
	}
}
