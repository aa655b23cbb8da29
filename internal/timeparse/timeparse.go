// Package timeparse turns free-text time phrases ("30 minutes", "5:30pm",
// "tomorrow at 9am") into absolute instants.
package timeparse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnparseable is returned when the phrase yields no instant.
var ErrUnparseable = errors.New("time phrase not understood")

const (
	// minLead is the smallest lead time the scheduling API is trusted
	// with; anything closer (or in the past) is pushed out to clampLead.
	minLead   = 60 * time.Second
	clampLead = 120 * time.Second
)

// Resolution is a resolved fire time. At is expressed in the resolver's
// display timezone. Adjusted is set when the safety clamp moved the time,
// and the caller must tell the user about it.
type Resolution struct {
	At       time.Time
	Adjusted bool
}

// minutePattern matches an integer followed by a minute unit anywhere in
// the phrase. It takes priority over the general parser so that "30
// minutes" always means exactly now+30m, whatever else the phrase says.
var minutePattern = regexp.MustCompile(`\b(\d+)\s*(?:minutes|minute|mins|min)\b`)

// Resolver parses time phrases against a reference "now" and renders all
// times in one fixed timezone, so displayed times do not depend on where
// the server happens to run.
type Resolver struct {
	parser *when.Parser
	loc    *time.Location
}

// New creates a Resolver that renders times in loc. A nil loc means UTC.
func New(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return &Resolver{parser: p, loc: loc}
}

// Location returns the fixed display timezone.
func (r *Resolver) Location() *time.Location { return r.loc }

// Resolve parses phrase relative to now. The relative-minutes pattern is
// checked first; everything else goes through the natural-language parser.
// Results closer than 60 seconds (including past instants a lenient parse
// can produce) are clamped to now+120s with Adjusted set.
func (r *Resolver) Resolve(phrase string, now time.Time) (Resolution, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return Resolution{}, ErrUnparseable
	}

	at, ok := r.parseMinutes(phrase, now)
	if !ok {
		var err error
		at, err = r.parseNatural(phrase, now)
		if err != nil {
			return Resolution{}, err
		}
	}

	res := Resolution{At: at.In(r.loc)}
	if at.Sub(now) < minLead {
		res.At = now.Add(clampLead).In(r.loc)
		res.Adjusted = true
	}
	return res, nil
}

func (r *Resolver) parseMinutes(phrase string, now time.Time) (time.Time, bool) {
	m := minutePattern.FindStringSubmatch(phrase)
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	return now.Add(time.Duration(n) * time.Minute), true
}

func (r *Resolver) parseNatural(phrase string, now time.Time) (time.Time, error) {
	result, err := r.parser.Parse(phrase, now)
	if err == nil && result == nil {
		// The classifier strips the "in"/"at" separator; some relative
		// phrases ("2 hours") only parse with it back in place.
		result, err = r.parser.Parse("in "+phrase, now)
	}
	if err != nil || result == nil {
		return time.Time{}, ErrUnparseable
	}
	return result.Time, nil
}

// FormatClock renders t as a clock time in the display timezone, the way
// it is shown back to users ("05:30 PM").
func (r *Resolver) FormatClock(t time.Time) string {
	return t.In(r.loc).Format("03:04 PM")
}
