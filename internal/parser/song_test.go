package parser

import (
	"strings"
	"testing"

	"musicetl/internal/records"
)

const songJSON = `{
  "num_songs": 1,
  "artist_id": "ARJIE2Y1187B994AB7",
  "artist_latitude": null,
  "artist_longitude": null,
  "artist_location": "",
  "artist_name": "Line Renaud",
  "song_id": "SOUPIRU12A6D4FA1E1",
  "title": "Der Kleine Dompfaff",
  "duration": 152.92036,
  "year": 0
}`

func TestReadSong(t *testing.T) {
	t.Parallel()

	rec, err := ReadSong(strings.NewReader(songJSON), "song.json", Options{})
	if err != nil {
		t.Fatalf("ReadSong: %v", err)
	}

	if rec.SongID != "SOUPIRU12A6D4FA1E1" {
		t.Errorf("SongID = %q, want SOUPIRU12A6D4FA1E1", rec.SongID)
	}
	if rec.Title != "Der Kleine Dompfaff" {
		t.Errorf("Title = %q, want Der Kleine Dompfaff", rec.Title)
	}
	if rec.ArtistID != "ARJIE2Y1187B994AB7" {
		t.Errorf("ArtistID = %q, want ARJIE2Y1187B994AB7", rec.ArtistID)
	}
	if rec.ArtistName != "Line Renaud" {
		t.Errorf("ArtistName = %q, want Line Renaud", rec.ArtistName)
	}
	if rec.Year != 0 {
		t.Errorf("Year = %d, want 0", rec.Year)
	}
	if rec.Duration != 152.92036 {
		t.Errorf("Duration = %v, want 152.92036", rec.Duration)
	}
	if rec.ArtistLatitude != nil || rec.ArtistLongitude != nil {
		t.Error("null coordinates should decode to nil")
	}
	if rec.ArtistLocation == nil || *rec.ArtistLocation != "" {
		t.Errorf("ArtistLocation = %v, want empty string", rec.ArtistLocation)
	}
}

func TestReadSong_FloatYear(t *testing.T) {
	t.Parallel()

	const js = `{"song_id":"S1","title":"t","artist_id":"A1","artist_name":"a","year":1984.0,"duration":1.5}`
	rec, err := ReadSong(strings.NewReader(js), "song.json", Options{})
	if err != nil {
		t.Fatalf("ReadSong: %v", err)
	}
	if rec.Year != 1984 {
		t.Errorf("Year = %d, want 1984", rec.Year)
	}
}

func TestReadSong_Malformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		js   string
	}{
		{"missing title", `{"song_id":"S1","artist_id":"A1","artist_name":"a","year":0,"duration":1.5}`},
		{"null song_id", `{"song_id":null,"title":"t","artist_id":"A1","artist_name":"a","year":0,"duration":1.5}`},
		{"string duration", `{"song_id":"S1","title":"t","artist_id":"A1","artist_name":"a","year":0,"duration":"1.5"}`},
		{"non-object", `[1,2,3]`},
		{"invalid JSON", `{"song_id":`},
		{"trailing data", `{"song_id":"S1","title":"t","artist_id":"A1","artist_name":"a","year":0,"duration":1.5}{"song_id":"S2"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadSong(strings.NewReader(tc.js), "song.json", Options{})
			if err == nil {
				t.Fatal("ReadSong succeeded, want error")
			}
			if !records.IsMalformed(err) {
				t.Fatalf("error %v is not a MalformedError", err)
			}
		})
	}
}

func TestReadSong_NormalizeUnicode(t *testing.T) {
	t.Parallel()

	// Title carries e + combining acute (NFD); NFC folds it to a single rune.
	const js = `{"song_id":"S1","title":"Caf\u0065\u0301","artist_id":"A1","artist_name":"a","year":0,"duration":1.5}`

	rec, err := ReadSong(strings.NewReader(js), "song.json", Options{NormalizeUnicode: true})
	if err != nil {
		t.Fatalf("ReadSong: %v", err)
	}
	if want := "Caf\u00e9"; rec.Title != want {
		t.Errorf("Title = %q, want %q", rec.Title, want)
	}

	raw, err := ReadSong(strings.NewReader(js), "song.json", Options{})
	if err != nil {
		t.Fatalf("ReadSong: %v", err)
	}
	if want := "Cafe\u0301"; raw.Title != want {
		t.Errorf("Title = %q, want untouched form when normalization is off", raw.Title)
	}
}
