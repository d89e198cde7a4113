// Package timeutil converts stored UTC instants into the organisation's local
// calendar. Attendance bucketing, late detection and overtime all go through a
// Clock so that a single configured zone drives every "local day" decision.
package timeutil

import (
	"fmt"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	MonthLayout    = "2006-01"
	DateTimeLayout = "2006-01-02 15:04:05"

	DefaultZone = "Asia/Jakarta"

	// lateAfterHour and lateAfterMinute mark the start of the working day.
	lateAfterHour   = 9
	lateAfterMinute = 0
	overtimeHour    = 17
)

// Clock resolves local calendar values for a fixed organisational zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

type Option func(*Clock)

// WithNow overrides the wall clock, mostly for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

// NewClock loads the IANA zone by name. An empty name falls back to DefaultZone.
func NewClock(zone string, opts ...Option) (*Clock, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return NewClockIn(loc, opts...), nil
}

func NewClockIn(loc *time.Location, opts ...Option) *Clock {
	c := &Clock{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in UTC.
func (c *Clock) Now() time.Time {
	return c.now().UTC()
}

func (c *Clock) Local(t time.Time) time.Time {
	return t.In(c.loc)
}

func (c *Clock) LocalDate(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

func (c *Clock) LocalMonth(t time.Time) string {
	return t.In(c.loc).Format(MonthLayout)
}

func (c *Clock) Format(t time.Time) string {
	return t.In(c.loc).Format(DateTimeLayout)
}

// FormatPtr renders an optional instant, returning nil for nil.
func (c *Clock) FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := c.Format(*t)
	return &s
}

func (c *Clock) Today() string {
	return c.LocalDate(c.now())
}

func (c *Clock) CurrentMonth() string {
	return c.LocalMonth(c.now())
}

func (c *Clock) CurrentYear() int {
	return c.Local(c.now()).Year()
}

// IsLate reports whether a clock-in happened strictly after 09:00 local time.
func (c *Clock) IsLate(t time.Time) bool {
	local := c.Local(t)
	start := time.Date(local.Year(), local.Month(), local.Day(), lateAfterHour, lateAfterMinute, 0, 0, c.loc)
	return local.After(start)
}

// OvertimeHours returns the whole hours past 17:00 local time. ok is false
// before 17:00.
func (c *Clock) OvertimeHours(t time.Time) (hours int, ok bool) {
	h := c.Local(t).Hour()
	if h < overtimeHour {
		return 0, false
	}
	return h - overtimeHour, true
}

// DayBounds returns the UTC range [start, end) covering a local YYYY-MM-DD.
func (c *Clock) DayBounds(date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d.UTC(), d.AddDate(0, 0, 1).UTC(), nil
}

// MonthBounds returns the UTC range [start, end) covering a local YYYY-MM.
func (c *Clock) MonthBounds(month string) (time.Time, time.Time, error) {
	m, err := time.ParseInLocation(MonthLayout, month, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return m.UTC(), m.AddDate(0, 1, 0).UTC(), nil
}

// IsValidMonth reports whether s is a YYYY-MM value.
func IsValidMonth(s string) bool {
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}
