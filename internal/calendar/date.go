package calendar

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-agenda/internal/config"
)

// Date is a calendar day with no time of day and no zone. It is the key of a
// Calendar's days; its display string and its ordering are derived from the fields.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// dateLayouts are tried in order by ParseDate. The first one is canonical.
var dateLayouts = []string{
	config.DateFormatKey,
	config.DateFormatISO,
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts dd/mm/yyyy or yyyy-mm-dd. Impossible dates such as 31/02/2024
// are rejected rather than normalized.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// Time returns midnight UTC of the date. UTC keeps day arithmetic free of DST gaps.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as dd/mm/yyyy.
func (d Date) String() string {
	return d.Time().Format(config.DateFormatKey)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// StartOfWeek returns the Monday of the ISO week containing d.
func (d Date) StartOfWeek() Date {
	offset := (int(d.Weekday()) + 6) % config.DaysPerWeek
	return d.AddDays(-offset)
}

// Compare returns -1, 0 or +1 in chronological order.
func (d Date) Compare(other Date) int {
	if c := cmp.Compare(d.Year, other.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, other.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, other.Day)
}

func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// MarshalText encodes the date in the canonical dd/mm/yyyy layout.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
