package timeparse

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestResolve_Minutes(t *testing.T) {
	r := New(time.UTC)
	cases := map[string]int{
		"30 minutes": 30,
		"30minutes":  30,
		"1 minute":   1,
		"45 mins":    45,
		"5 min":      5,
		"90 minutes": 90,
	}
	for phrase, want := range cases {
		res, err := r.Resolve(phrase, testNow)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", phrase, err)
			continue
		}
		if got := res.At.Sub(testNow); got != time.Duration(want)*time.Minute {
			t.Errorf("Resolve(%q) = now+%v, want now+%dm", phrase, got, want)
		}
		if res.Adjusted {
			t.Errorf("Resolve(%q) adjusted, want exact", phrase)
		}
	}
}

func TestResolve_MinutesBeatsOtherTokens(t *testing.T) {
	// The minute pattern wins even when other temporal tokens are present.
	r := New(time.UTC)
	res, err := r.Resolve("30 minutes tomorrow", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.At.Sub(testNow); got != 30*time.Minute {
		t.Errorf("got now+%v, want now+30m", got)
	}
}

func TestResolve_ClampNearFuture(t *testing.T) {
	r := New(time.UTC)
	res, err := r.Resolve("0 minutes", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Adjusted {
		t.Error("expected adjustment for a near-immediate fire time")
	}
	if got := res.At.Sub(testNow); got != 120*time.Second {
		t.Errorf("clamped to now+%v, want now+120s", got)
	}
}

func TestResolve_OneMinuteNotClamped(t *testing.T) {
	// Exactly 60 seconds of lead is acceptable.
	r := New(time.UTC)
	res, err := r.Resolve("1 minute", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Adjusted {
		t.Error("1 minute lead should not be clamped")
	}
}

func TestResolve_NaturalClockTime(t *testing.T) {
	r := New(time.UTC)
	res, err := r.Resolve("5:30pm", testNow)
	if err != nil {
		t.Fatalf("Resolve(\"5:30pm\") error: %v", err)
	}
	if res.At.Hour() != 17 || res.At.Minute() != 30 {
		t.Errorf("got %v, want 17:30", res.At)
	}
}

func TestResolve_NaturalRelative(t *testing.T) {
	r := New(time.UTC)
	res, err := r.Resolve("2 hours", testNow)
	if err != nil {
		t.Fatalf("Resolve(\"2 hours\") error: %v", err)
	}
	if got := res.At.Sub(testNow); got != 2*time.Hour {
		t.Errorf("got now+%v, want now+2h", got)
	}
}

func TestResolve_Unparseable(t *testing.T) {
	r := New(time.UTC)
	for _, phrase := range []string{"xyzzy", "", "the heat death of the universe"} {
		_, err := r.Resolve(phrase, testNow)
		if !errors.Is(err, ErrUnparseable) {
			t.Errorf("Resolve(%q) err = %v, want ErrUnparseable", phrase, err)
		}
	}
}

func TestResolve_FixedTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	r := New(loc)
	res, err := r.Resolve("30 minutes", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.At.Location() != loc {
		t.Errorf("resolved time in %v, want %v", res.At.Location(), loc)
	}
	// 09:30 UTC is 05:30 in New York.
	if got := r.FormatClock(res.At); got != "05:30 AM" {
		t.Errorf("FormatClock = %q, want \"05:30 AM\"", got)
	}
}

func TestFormatClock(t *testing.T) {
	r := New(time.UTC)
	at := time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC)
	if got := r.FormatClock(at); got != "05:30 PM" {
		t.Errorf("FormatClock = %q, want \"05:30 PM\"", got)
	}
}
