package load

import (
	"context"

	"musicetl/internal/records"
	"musicetl/internal/storage"
)

// resolvePlays builds the fact rows for a batch of qualifying events. Each
// event's (song title, artist name, duration) is looked up against the
// catalog loaded so far; a miss leaves both foreign keys nil and is an
// expected, frequent outcome since the catalog is a sample and most plays
// will not match. Only a lookup that fails outright (sink error) aborts
// the file.
func resolvePlays(ctx context.Context, batch storage.Batch, events []records.ActivityEvent) ([]records.SongPlay, int, error) {
	plays := make([]records.SongPlay, 0, len(events))
	matched := 0

	for _, ev := range events {
		key, err := batch.LookupSong(ctx, ev.Song, ev.Artist, ev.Length)
		if err != nil {
			return nil, 0, err
		}

		play := records.SongPlay{
			PlayID:    records.PlayFingerprint(ev.UserID, ev.SessionID, ev.TS),
			TS:        ev.TS,
			UserID:    ev.UserID,
			Level:     ev.Level,
			SessionID: ev.SessionID,
			Location:  ev.Location,
			UserAgent: ev.UserAgent,
		}
		if key != nil {
			songID, artistID := key.SongID, key.ArtistID
			play.SongID = &songID
			play.ArtistID = &artistID
			matched++
		}
		plays = append(plays, play)
	}
	return plays, matched, nil
}
