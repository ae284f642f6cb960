// Package extract turns parsed record batches into deduplicated dimension
// rows ready for loading.
//
// The song path is trivial (one song and one artist per file; cross-file
// dedup is the sink's upsert). The activity path filters down to playback
// events, derives calendar attributes from timestamps, and deduplicates
// time entries (keep-first) and users (last-write-wins).
package extract

import (
	"time"

	"musicetl/internal/records"
)

// Dimensions is the extracted output of one activity file: deduplicated
// dimension rows plus the qualifying events they came from, all in input
// order.
type Dimensions struct {
	Times  []records.TimeEntry
	Users  []records.User
	Events []records.ActivityEvent
}

// FromSong derives the song and artist dimension rows of one catalog file.
func FromSong(rec records.SongRecord) (records.Song, records.Artist) {
	song := records.Song{
		SongID:   rec.SongID,
		Title:    rec.Title,
		ArtistID: rec.ArtistID,
		Year:     rec.Year,
		Duration: rec.Duration,
	}
	artist := records.Artist{
		ArtistID:  rec.ArtistID,
		Name:      rec.ArtistName,
		Location:  rec.ArtistLocation,
		Longitude: rec.ArtistLongitude,
		Latitude:  rec.ArtistLatitude,
	}
	return song, artist
}

// FromActivity filters events down to playback events and derives the time
// and user dimension rows for them.
//
// Time entries deduplicate by timestamp keeping the first occurrence (the
// derived fields are a pure function of the timestamp, so order cannot
// change the values). Users deduplicate by user id; when the same user
// appears with conflicting attributes, the last row in file order wins:
// level changes over time and the latest seen value is the current one.
//
// A qualifying event without a user id is malformed: the fact row cannot be
// built without it.
func FromActivity(path string, events []records.ActivityEvent) (Dimensions, error) {
	var dims Dimensions

	seenTS := make(map[int64]struct{})
	userIdx := make(map[string]int)

	for _, ev := range events {
		if !ev.Qualifying() {
			continue
		}
		if ev.UserID == "" {
			return Dimensions{}, &records.MalformedError{
				Path:   path,
				Line:   ev.Line,
				Field:  "userId",
				Reason: "playback event without user id",
			}
		}
		dims.Events = append(dims.Events, ev)

		if _, ok := seenTS[ev.TS]; !ok {
			seenTS[ev.TS] = struct{}{}
			dims.Times = append(dims.Times, TimeEntryFromMillis(ev.TS))
		}

		u := records.User{
			UserID:    ev.UserID,
			FirstName: ev.FirstName,
			LastName:  ev.LastName,
			Gender:    ev.Gender,
			Level:     ev.Level,
		}
		if i, ok := userIdx[ev.UserID]; ok {
			dims.Users[i] = u // last write wins
		} else {
			userIdx[ev.UserID] = len(dims.Users)
			dims.Users = append(dims.Users, u)
		}
	}
	return dims, nil
}

// TimeEntryFromMillis decomposes an epoch-millisecond timestamp into its
// calendar attributes using UTC. Week is the ISO week number; Weekday is
// Monday=0 through Sunday=6.
func TimeEntryFromMillis(ms int64) records.TimeEntry {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return records.TimeEntry{
		TS:      ms,
		Hour:    t.Hour(),
		Day:     t.Day(),
		Week:    week,
		Month:   int(t.Month()),
		Year:    t.Year(),
		Weekday: (int(t.Weekday()) + 6) % 7,
	}
}
