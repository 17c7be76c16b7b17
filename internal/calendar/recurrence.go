package calendar

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
	"github.com/tartampluch/go-agenda/internal/config"
)

// Frequency is the step between occurrences of a recurring task.
type Frequency int

const (
	Daily Frequency = iota + 1
	Weekly
)

// ParseFrequency accepts d/day/daily and w/week/weekly, case-insensitively.
func ParseFrequency(value string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case config.UnitDaily, "day", "daily":
		return Daily, nil
	case config.UnitWeekly, "week", "weekly":
		return Weekly, nil
	default:
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidRecurrence, config.ErrFrequencyUnknown, value)
	}
}

// String returns the persisted unit ("d" or "w").
func (f Frequency) String() string {
	switch f {
	case Daily:
		return config.UnitDaily
	case Weekly:
		return config.UnitWeekly
	default:
		return ""
	}
}

func (f Frequency) valid() bool {
	return f == Daily || f == Weekly
}

func (f Frequency) stepDays() int {
	if f == Daily {
		return 1
	}
	return config.DaysPerWeek
}

func (f Frequency) rrule() rrule.Frequency {
	if f == Daily {
		return rrule.DAILY
	}
	return rrule.WEEKLY
}

// Recurrence asks AddTask to repeat a task. The zero value means "no repetition".
// Interval is the persisted recurrence marker: 0 disables repetition, any positive
// value enables it; occurrences are always one Frequency step apart.
type Recurrence struct {
	Interval  int
	Frequency Frequency
	Until     Date
}

func (r Recurrence) enabled() bool {
	return r.Interval > 0
}

func (r Recurrence) validate() error {
	if r.Interval < 0 {
		return fmt.Errorf("%w: %s (%d)", ErrInvalidRecurrence, config.ErrIntervalNegative, r.Interval)
	}
	if !r.enabled() {
		return nil
	}
	if !r.Frequency.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidRecurrence, config.ErrFrequencyUnknown)
	}
	if r.Until.IsZero() {
		return fmt.Errorf("%w: %s", ErrInvalidRecurrence, config.ErrEndDateMissing)
	}
	return nil
}

// RecurrenceRecord is the registry entry kept for a recurring description.
type RecurrenceRecord struct {
	Description string
	Interval    int
	Frequency   Frequency
	Start       Date
	End         Date
}

// occurrences lists the dates after start, one step apart, up to and including end.
// start itself is excluded: the caller adds the task on start itself.
func occurrences(start, end Date, freq Frequency) ([]Date, error) {
	first := start.AddDays(freq.stepDays())
	if first.After(end) {
		return nil, nil
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq.rrule(),
		Interval: 1,
		Dtstart:  first.Time(),
		Until:    end.Time(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRecurrenceExpand, err)
	}

	times := rule.All()
	dates := make([]Date, 0, len(times))
	for _, t := range times {
		dates = append(dates, DateOf(t))
	}
	return dates, nil
}
