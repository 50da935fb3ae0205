// Package timeslot implements the half-open time interval model used by
// the booking engine.  A slot is a calendar date plus a [start, end)
// clock range on that date.  All clock values are normalized to
// zero-padded "HH:MM" strings so that lexicographic comparison is
// chronological comparison; the database stores the same representation
// in TIME columns.
package timeslot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar date wire format.
const DateLayout = "2006-01-02"

// MaxReasonLen bounds the free-text reason attached to a reservation.
const MaxReasonLen = 500

var clockRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

var (
	ErrBadDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrBadClock   = errors.New("invalid time, expected HH:MM")
	ErrBadOrder   = errors.New("end time must be after start time")
	ErrPastDate   = errors.New("date is in the past")
	ErrBadRoom    = errors.New("room id must be a positive integer")
	ErrLongReason = errors.New("reason exceeds 500 characters")
)

// ParseClock validates a 24-hour "H:MM"/"HH:MM" string and returns the
// zero-padded form.  Single-digit hours are accepted on input (the wire
// format tolerates "9:30") but never produced.
func ParseClock(s string) (string, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", ErrBadClock
	}
	hh := m[1]
	if len(hh) == 1 {
		hh = "0" + hh
	}
	return hh + ":" + m[2], nil
}

// ParseDate validates an ISO calendar date and returns it normalized.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrBadDate
	}
	return t.Format(DateLayout), nil
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect.  Both inputs must be normalized "HH:MM" strings.  Abutting
// intervals (e1 == s2 or e2 == s1) do not overlap.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && e1 > s2
}

// Slot is a validated booking request: one room, one date, one
// half-open clock interval, and an optional reason.
type Slot struct {
	RoomID uint64
	Date   string
	Start  string
	End    string
	Reason string
}

// NewSlot validates and normalizes the raw request fields into a Slot.
// Interval ordering is enforced here so the conflict predicate never
// sees inverted or zero-length ranges.
func NewSlot(roomID uint64, date, start, end, reason string) (Slot, error) {
	if roomID == 0 {
		return Slot{}, ErrBadRoom
	}
	d, err := ParseDate(date)
	if err != nil {
		return Slot{}, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return Slot{}, fmt.Errorf("start: %w", ErrBadClock)
	}
	e, err := ParseClock(end)
	if err != nil {
		return Slot{}, fmt.Errorf("end: %w", ErrBadClock)
	}
	if e <= s {
		return Slot{}, ErrBadOrder
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > MaxReasonLen {
		return Slot{}, ErrLongReason
	}
	return Slot{RoomID: roomID, Date: d, Start: s, End: e, Reason: reason}, nil
}

// InPast reports whether the slot's date is strictly before today in
// the supplied clock's frame.  Time of day is deliberately ignored: a
// booking later today is always acceptable.
func (s Slot) InPast(now time.Time) bool {
	return s.Date < now.UTC().Format(DateLayout)
}

// OverlapsSlot reports whether another interval on the same date
// collides with this slot.
func (s Slot) OverlapsSlot(start, end string) bool {
	return Overlaps(s.Start, s.End, start, end)
}
