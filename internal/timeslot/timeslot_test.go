package timeslot

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	t.Run("zero-pads single digit hours", func(t *testing.T) {
		got, err := ParseClock("9:30")
		require.NoError(t, err)
		assert.Equal(t, "09:30", got)
	})

	t.Run("accepts padded input unchanged", func(t *testing.T) {
		got, err := ParseClock("23:59")
		require.NoError(t, err)
		assert.Equal(t, "23:59", got)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		got, err := ParseClock(" 08:00 ")
		require.NoError(t, err)
		assert.Equal(t, "08:00", got)
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		for _, in := range []string{"", "24:00", "12:60", "12", "12:3", "noon", "12:30:00"} {
			_, err := ParseClock(in)
			assert.ErrorIs(t, err, ErrBadClock, "input %q", in)
		}
	})
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", got)

	for _, in := range []string{"", "2026-13-01", "2026-02-30", "01-09-2026", "2026/09/01"} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrBadDate, "input %q", in)
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"identical intervals", "09:00", "10:00", "09:00", "10:00", true},
		{"partial overlap at end", "09:00", "10:00", "09:30", "11:00", true},
		{"partial overlap at start", "09:30", "11:00", "09:00", "10:00", true},
		{"containment", "09:00", "12:00", "10:00", "11:00", true},
		{"abutting intervals do not overlap", "09:00", "10:00", "10:00", "11:00", false},
		{"abutting the other way", "10:00", "11:00", "09:00", "10:00", false},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.s1, tc.e1, tc.s2, tc.e2))
			// The predicate is symmetric.
			assert.Equal(t, tc.want, Overlaps(tc.s2, tc.e2, tc.s1, tc.e1))
		})
	}
}

// TestOverlapsRandomPairs checks the string predicate against an
// integer-minute oracle over random interval pairs.  The two agree
// exactly when every clock value is zero-padded.
func TestOverlapsRandomPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	clock := func(m int) string { return fmt.Sprintf("%02d:%02d", m/60, m%60) }
	interval := func() (int, int) {
		s := rng.Intn(1439)
		e := s + 1 + rng.Intn(1439-s)
		return s, e
	}

	for i := 0; i < 1000; i++ {
		s1, e1 := interval()
		s2, e2 := interval()
		want := s1 < e2 && e1 > s2
		got := Overlaps(clock(s1), clock(e1), clock(s2), clock(e2))
		require.Equal(t, want, got, "[%s,%s) vs [%s,%s)", clock(s1), clock(e1), clock(s2), clock(e2))
	}
}

func TestNewSlot(t *testing.T) {
	t.Run("valid request is normalized", func(t *testing.T) {
		s, err := NewSlot(3, "2026-09-01", "9:00", "10:30", "  standup  ")
		require.NoError(t, err)
		assert.Equal(t, uint64(3), s.RoomID)
		assert.Equal(t, "2026-09-01", s.Date)
		assert.Equal(t, "09:00", s.Start)
		assert.Equal(t, "10:30", s.End)
		assert.Equal(t, "standup", s.Reason)
	})

	t.Run("zero room id", func(t *testing.T) {
		_, err := NewSlot(0, "2026-09-01", "09:00", "10:00", "")
		assert.ErrorIs(t, err, ErrBadRoom)
	})

	t.Run("inverted interval", func(t *testing.T) {
		_, err := NewSlot(1, "2026-09-01", "11:00", "10:00", "")
		assert.ErrorIs(t, err, ErrBadOrder)
	})

	t.Run("zero-length interval", func(t *testing.T) {
		_, err := NewSlot(1, "2026-09-01", "10:00", "10:00", "")
		assert.ErrorIs(t, err, ErrBadOrder)
	})

	t.Run("overlong reason", func(t *testing.T) {
		_, err := NewSlot(1, "2026-09-01", "09:00", "10:00", strings.Repeat("x", MaxReasonLen+1))
		assert.ErrorIs(t, err, ErrLongReason)
	})

	t.Run("reason length counts characters, not bytes", func(t *testing.T) {
		s, err := NewSlot(1, "2026-09-01", "09:00", "10:00", strings.Repeat("é", MaxReasonLen))
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("é", MaxReasonLen), s.Reason)

		_, err = NewSlot(1, "2026-09-01", "09:00", "10:00", strings.Repeat("é", MaxReasonLen+1))
		assert.ErrorIs(t, err, ErrLongReason)
	})

	t.Run("surrounding whitespace does not count against the limit", func(t *testing.T) {
		_, err := NewSlot(1, "2026-09-01", "09:00", "10:00", "  "+strings.Repeat("x", MaxReasonLen)+"  ")
		assert.NoError(t, err)
	})
}

func TestSlotInPast(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

	yesterday := Slot{Date: "2026-08-30"}
	today := Slot{Date: "2026-08-31"}
	tomorrow := Slot{Date: "2026-09-01"}

	assert.True(t, yesterday.InPast(now))
	assert.False(t, today.InPast(now), "a booking later today is acceptable")
	assert.False(t, tomorrow.InPast(now))
}
