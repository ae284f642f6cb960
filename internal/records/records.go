// Package records defines the typed record model shared by the loader
// pipeline: the two parsed input shapes (song-catalog records and activity
// log events) and the five star-schema row types they become.
//
// Parsers populate these structs with validation at the boundary, so all
// downstream stages (extraction, fact resolution, loading) operate on
// strongly typed values rather than runtime-checked maps.
package records

import (
	"strconv"

	"github.com/zeebo/xxh3"
)

// Gender classifies a user. Input logs use "M"/"F"; anything else maps to
// GenderUnknown at parse time.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Level is the subscription tier a user holds at the time of an event. It is
// deliberately not part of a user's identity: the same user can appear with
// different levels over a log corpus (e.g. a free→paid upgrade).
type Level string

const (
	LevelFree Level = "free"
	LevelPaid Level = "paid"
)

// PageNextSong marks an activity event as a playback event. Only events on
// this page qualify for fact loading; all other pages (login, help, ...) are
// discarded by the extractor.
const PageNextSong = "NextSong"

// SongRecord is one parsed song-catalog file: exactly one JSON object
// describing a song together with its artist.
type SongRecord struct {
	SongID          string
	Title           string
	ArtistID        string
	ArtistName      string
	ArtistLocation  *string
	ArtistLongitude *float64
	ArtistLatitude  *float64
	Year            int // 0 means unknown
	Duration        float64
}

// ActivityEvent is one parsed line of a newline-delimited activity log.
//
// Only TS and Page are guaranteed to be present; the remaining fields are
// set when the source line carried them (non-playback pages legitimately
// omit song, artist, length and sometimes the user). Line is the 1-based
// line number in the source file, kept for error context.
type ActivityEvent struct {
	TS        int64 // epoch milliseconds
	UserID    string
	FirstName string
	LastName  string
	Gender    Gender
	Level     Level
	Page      string
	Song      string
	Artist    string
	Length    float64
	SessionID int64
	Location  string
	UserAgent string
	Line      int
}

// Qualifying reports whether the event is a playback event that should be
// loaded as a fact row.
func (e ActivityEvent) Qualifying() bool { return e.Page == PageNextSong }

// Song is a row of the songs dimension, keyed by SongID.
type Song struct {
	SongID   string
	Title    string
	ArtistID string
	Year     int
	Duration float64
}

// Artist is a row of the artists dimension, keyed by ArtistID. Location and
// coordinates are nullable in the source data and stay nullable here.
type Artist struct {
	ArtistID  string
	Name      string
	Location  *string
	Longitude *float64
	Latitude  *float64
}

// TimeEntry is a row of the time dimension. Every derived field is a pure
// function of TS, so uniqueness on TS alone is sufficient for dedup.
//
// Weekday is Monday=0 .. Sunday=6.
type TimeEntry struct {
	TS      int64 // epoch milliseconds, natural key
	Hour    int
	Day     int
	Week    int // ISO week number
	Month   int
	Year    int
	Weekday int
}

// User is a row of the users dimension, keyed by UserID. Level follows
// last-write-wins across conflicting appearances of the same user.
type User struct {
	UserID    string
	FirstName string
	LastName  string
	Gender    Gender
	Level     Level
}

// SongPlay is a fact row recording one playback event. SongID and ArtistID
// are nil when the catalog lookup found no match, which is an expected and
// frequent outcome, not an error.
type SongPlay struct {
	PlayID    int64 // fingerprint of (UserID, SessionID, TS), see PlayFingerprint
	TS        int64
	UserID    string
	Level     Level
	SongID    *string
	ArtistID  *string
	SessionID int64
	Location  string
	UserAgent string
}

// PlayFingerprint derives the stable surrogate key for a play row from its
// event-level natural key (user, session, timestamp). Sinks declare it
// unique so that replaying the same log file cannot duplicate fact rows.
func PlayFingerprint(userID string, sessionID, ts int64) int64 {
	key := userID + "\x1f" + strconv.FormatInt(sessionID, 10) + "\x1f" + strconv.FormatInt(ts, 10)
	return int64(xxh3.HashString(key))
}
