package parser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"musicetl/internal/records"
)

// maxLineBytes bounds a single activity log line. Lines are small JSON
// objects; 1 MiB leaves generous headroom for long user agents.
const maxLineBytes = 1 << 20

// ReadActivity decodes a newline-delimited activity log into events, one
// per line, preserving input order.
//
// Every line must be valid JSON: a single corrupt line fails the whole file
// (all-or-nothing per file, there is no partial-log tolerance). Only ts and
// page are required on each line; user, song and session attributes are
// optional here because non-playback pages legitimately omit them. The
// extractor enforces user presence on qualifying rows.
func ReadActivity(r io.Reader, path string, opt Options) ([]records.ActivityEvent, error) {
	var out []records.ActivityEvent

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		ev, err := parseActivityLine(text, path, line, opt)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

func parseActivityLine(text, path string, line int, opt Options) (records.ActivityEvent, error) {
	var ev records.ActivityEvent

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return ev, &records.MalformedError{Path: path, Line: line, Reason: "invalid JSON", Err: err}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return ev, &records.MalformedError{Path: path, Line: line, Reason: "line is not a JSON object"}
	}

	o := &object{path: path, line: line, m: m, opt: opt}
	ev.Line = line

	var err error
	if ev.TS, err = o.integer("ts"); err != nil {
		return ev, err
	}
	if ev.Page, err = o.str("page"); err != nil {
		return ev, err
	}
	if ev.UserID, err = o.userID(); err != nil {
		return ev, err
	}
	if ev.FirstName, err = o.strDefault("firstName"); err != nil {
		return ev, err
	}
	if ev.LastName, err = o.strDefault("lastName"); err != nil {
		return ev, err
	}
	gender, err := o.strDefault("gender")
	if err != nil {
		return ev, err
	}
	ev.Gender = parseGender(gender)
	level, err := o.strDefault("level")
	if err != nil {
		return ev, err
	}
	ev.Level = records.Level(strings.ToLower(level))
	if ev.Song, err = o.strDefault("song"); err != nil {
		return ev, err
	}
	if ev.Artist, err = o.strDefault("artist"); err != nil {
		return ev, err
	}
	if ev.Length, err = o.floatDefault("length"); err != nil {
		return ev, err
	}
	if ev.SessionID, err = o.intDefault("sessionId"); err != nil {
		return ev, err
	}
	if ev.Location, err = o.strDefault("location"); err != nil {
		return ev, err
	}
	if ev.UserAgent, err = o.strDefault("userAgent"); err != nil {
		return ev, err
	}
	return ev, nil
}

// userID tolerates both string and numeric encodings of userId, both of
// which occur in the log corpus. Absent, null or empty yields "".
func (o *object) userID() (string, error) {
	v, ok := o.m["userId"]
	if !ok || v == nil {
		return "", nil
	}
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id), nil
	case json.Number:
		return id.String(), nil
	default:
		return "", o.malformed("userId", fmt.Sprintf("expected string or number, got %T", v), nil)
	}
}

func parseGender(s string) records.Gender {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M":
		return records.GenderMale
	case "F":
		return records.GenderFemale
	default:
		return records.GenderUnknown
	}
}
