package types

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Week is an ISO-8601 week such as "2024-W07". A week starts on Monday 00:00 UTC.
type Week string

var ptnISOWeek = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// ParseWeek validates and returns a Week
func ParseWeek(s string) (Week, error) {
	w := Week(s)
	if _, err := w.Start(); err != nil {
		return "", err
	}
	return w, nil
}

// WeekOf returns the ISO week containing t
func WeekOf(t time.Time) Week {
	year, week := t.UTC().ISOWeek()
	return Week(fmt.Sprintf("%04d-W%02d", year, week))
}

func (x Week) String() string { return string(x) }

// Start returns Monday 00:00 UTC of the week
func (x Week) Start() (time.Time, error) {
	m := ptnISOWeek.FindStringSubmatch(string(x))
	if m == nil {
		return time.Time{}, goerr.Wrap(ErrValidationFailed, "week must be formatted as YYYY-Www", goerr.V("week", x))
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return time.Time{}, goerr.Wrap(ErrValidationFailed, "week number out of range", goerr.V("week", x))
	}

	// January 4th always belongs to week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	start := jan4.AddDate(0, 0, -offset+(week-1)*7)

	if y, w := start.ISOWeek(); y != year || w != week {
		return time.Time{}, goerr.Wrap(ErrValidationFailed, "week does not exist in year", goerr.V("week", x))
	}
	return start, nil
}

// Range returns [start, end) of the week
func (x Week) Range() (time.Time, time.Time, error) {
	start, err := x.Start()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 7), nil
}

// Contains reports whether t falls within the week
func (x Week) Contains(t time.Time) bool {
	start, end, err := x.Range()
	if err != nil {
		return false
	}
	t = t.UTC()
	return !t.Before(start) && t.Before(end)
}
