package records

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPlayFingerprint_Deterministic(t *testing.T) {
	t.Parallel()

	a := PlayFingerprint("91", 829, 1541121934796)
	b := PlayFingerprint("91", 829, 1541121934796)
	if a != b {
		t.Fatalf("PlayFingerprint not deterministic: %d != %d", a, b)
	}
}

func TestPlayFingerprint_DistinguishesKeyParts(t *testing.T) {
	t.Parallel()

	base := PlayFingerprint("91", 829, 1541121934796)

	cases := []struct {
		name string
		got  int64
	}{
		{"user", PlayFingerprint("92", 829, 1541121934796)},
		{"session", PlayFingerprint("91", 830, 1541121934796)},
		{"ts", PlayFingerprint("91", 829, 1541121934797)},
	}
	for _, tc := range cases {
		if tc.got == base {
			t.Errorf("fingerprint collision when only %s differs", tc.name)
		}
	}

	// The separator keeps adjacent fields from gluing into the same key:
	// ("1", 23, ...) and ("12", 3, ...) concatenate identically without it.
	if PlayFingerprint("1", 23, 100) == PlayFingerprint("12", 3, 100) {
		t.Fatal("fingerprint collision across field boundaries")
	}
}

func TestQualifying(t *testing.T) {
	t.Parallel()

	if !(ActivityEvent{Page: PageNextSong}).Qualifying() {
		t.Error("NextSong event should qualify")
	}
	for _, page := range []string{"Home", "Logout", "nextsong", ""} {
		if (ActivityEvent{Page: page}).Qualifying() {
			t.Errorf("page %q should not qualify", page)
		}
	}
}

func TestMalformedError_Message(t *testing.T) {
	t.Parallel()

	err := &MalformedError{
		Path:   "data/log_data/2018-11-01-events.json",
		Line:   17,
		Field:  "ts",
		Reason: "required field missing",
	}
	msg := err.Error()
	for _, want := range []string{"2018-11-01-events.json:17", "ts", "required field missing"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	// Song files have no line; the message should not show one.
	noLine := &MalformedError{Path: "song.json", Reason: "invalid JSON"}
	if strings.Contains(noLine.Error(), ":0") {
		t.Errorf("Error() = %q, should omit zero line", noLine.Error())
	}
}

func TestIsMalformed(t *testing.T) {
	t.Parallel()

	inner := &MalformedError{Path: "x.json", Reason: "bad"}
	wrapped := fmt.Errorf("load: %w", inner)

	if !IsMalformed(inner) {
		t.Error("IsMalformed(inner) = false, want true")
	}
	if !IsMalformed(wrapped) {
		t.Error("IsMalformed(wrapped) = false, want true")
	}
	if IsMalformed(errors.New("other")) {
		t.Error("IsMalformed(other) = true, want false")
	}
	if IsMalformed(nil) {
		t.Error("IsMalformed(nil) = true, want false")
	}
}
