package parser

import (
	"encoding/json"
	"errors"
	"io"

	"musicetl/internal/records"
)

// ReadSong decodes a song-catalog file: exactly one JSON object describing
// one song and its artist. Trailing content after the object is malformed.
//
// Required fields: song_id, title, artist_id, artist_name (strings), year
// (coerces to integer, 0 meaning unknown), duration (coerces to float).
// artist_location, artist_longitude and artist_latitude are nullable.
func ReadSong(r io.Reader, path string, opt Options) (records.SongRecord, error) {
	var rec records.SongRecord

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return rec, &records.MalformedError{Path: path, Reason: "invalid JSON", Err: err}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return rec, &records.MalformedError{Path: path, Reason: "top-level value is not an object"}
	}
	// A song file carries one object and nothing else.
	if err := dec.Decode(&raw); !errors.Is(err, io.EOF) {
		return rec, &records.MalformedError{Path: path, Reason: "trailing data after song object"}
	}

	o := &object{path: path, m: m, opt: opt}

	var err error
	if rec.SongID, err = o.str("song_id"); err != nil {
		return rec, err
	}
	if rec.Title, err = o.str("title"); err != nil {
		return rec, err
	}
	if rec.ArtistID, err = o.str("artist_id"); err != nil {
		return rec, err
	}
	if rec.ArtistName, err = o.str("artist_name"); err != nil {
		return rec, err
	}
	year, err := o.integer("year")
	if err != nil {
		return rec, err
	}
	rec.Year = int(year)
	if rec.Duration, err = o.float("duration"); err != nil {
		return rec, err
	}
	if rec.ArtistLocation, err = o.optStr("artist_location"); err != nil {
		return rec, err
	}
	if rec.ArtistLongitude, err = o.optFloat("artist_longitude"); err != nil {
		return rec, err
	}
	if rec.ArtistLatitude, err = o.optFloat("artist_latitude"); err != nil {
		return rec, err
	}
	return rec, nil
}
