package postgres

// Star-schema DDL for Postgres. play_id is the fingerprint of the
// event-level natural key (user_id, session_id, start_time); making it the
// primary key is what lets replayed log files insert-or-ignore instead of
// duplicating fact rows.
var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS songs (
  song_id   TEXT PRIMARY KEY,
  title     TEXT NOT NULL,
  artist_id TEXT NOT NULL,
  year      INT NOT NULL,
  duration  DOUBLE PRECISION NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS artists (
  artist_id TEXT PRIMARY KEY,
  name      TEXT NOT NULL,
  location  TEXT,
  longitude DOUBLE PRECISION,
  latitude  DOUBLE PRECISION
)`,
	`CREATE TABLE IF NOT EXISTS time (
  start_time BIGINT PRIMARY KEY,
  hour       INT NOT NULL,
  day        INT NOT NULL,
  week       INT NOT NULL,
  month      INT NOT NULL,
  year       INT NOT NULL,
  weekday    INT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS users (
  user_id    TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name  TEXT NOT NULL,
  gender     TEXT NOT NULL,
  level      TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS songplays (
  play_id    BIGINT PRIMARY KEY,
  start_time BIGINT NOT NULL,
  user_id    TEXT NOT NULL,
  level      TEXT NOT NULL,
  song_id    TEXT,
  artist_id  TEXT,
  session_id BIGINT NOT NULL,
  location   TEXT,
  user_agent TEXT
)`,
}
