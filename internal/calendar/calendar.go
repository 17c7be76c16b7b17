package calendar

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/tartampluch/go-agenda/internal/config"
	"github.com/tartampluch/go-agenda/internal/store"
)

// Calendar is a named set of dated task lists plus the registry of recurring
// descriptions. It is not safe for concurrent use; one session owns one Calendar.
type Calendar struct {
	name      string
	store     store.Store
	clock     Clock
	days      map[Date]*Day
	recurrent map[string]RecurrenceRecord
}

// Section is one dated block of a listing.
type Section struct {
	Date  Date
	Today bool
	Day   *Day
}

// New returns an empty calendar bound to st. A nil clock means the system clock.
func New(name string, st store.Store, clock Clock) *Calendar {
	if clock == nil {
		clock = RealClock{}
	}
	return &Calendar{
		name:      name,
		store:     st,
		clock:     clock,
		days:      make(map[Date]*Day),
		recurrent: make(map[string]RecurrenceRecord),
	}
}

func (c *Calendar) Name() string {
	return c.name
}

// Today returns the clock's current date.
func (c *Calendar) Today() Date {
	return DateOf(c.clock.Now())
}

// ResolveDate maps today/tomorrow/yesterday to dates relative to the clock and
// parses anything else as a date.
func (c *Calendar) ResolveDate(ref string) (Date, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case config.KeywordToday:
		return c.Today(), nil
	case config.KeywordTomorrow:
		return c.Today().AddDays(1), nil
	case config.KeywordYesterday:
		return c.Today().AddDays(-1), nil
	}
	return ParseDate(ref)
}

// AddTask appends a task on the date ref resolves to. With a positive Interval the
// description is registered as recurring and copies are added one Frequency step
// apart after the date, up to rec.Until. Nothing changes when an argument is invalid.
func (c *Calendar) AddTask(ref, description string, rec Recurrence) error {
	date, err := c.ResolveDate(ref)
	if err != nil {
		return err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return ErrEmptyDescription
	}
	if err := rec.validate(); err != nil {
		return err
	}

	var extra []Date
	if rec.enabled() {
		extra, err = occurrences(date, rec.Until, rec.Frequency)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRecurrence, err)
		}
		c.recurrent[description] = RecurrenceRecord{
			Description: description,
			Interval:    rec.Interval,
			Frequency:   rec.Frequency,
			Start:       date,
			End:         rec.Until,
		}
		slog.Debug(config.MsgRecurrenceAdded,
			config.LogKeyComponent, config.CompCalendar,
			config.LogKeyDescription, description,
			config.LogKeyUnit, rec.Frequency.String(),
			config.LogKeyOccurrences, len(extra),
		)
	}

	for _, d := range extra {
		c.dayFor(d).AddTask(description)
	}
	c.dayFor(date).AddTask(description)
	return nil
}

// DeleteTask removes task index (1-based) from the date. A day left with no tasks
// is dropped from the calendar.
func (c *Calendar) DeleteTask(ref string, index int) error {
	day, err := c.Day(ref)
	if err != nil {
		return err
	}
	if err := day.DeleteTask(index); err != nil {
		return err
	}
	if day.Len() == 0 {
		delete(c.days, day.Date())
	}
	return nil
}

func (c *Calendar) CompleteTask(ref string, index int) error {
	day, err := c.Day(ref)
	if err != nil {
		return err
	}
	return day.CompleteTask(index)
}

// Day returns the tasks of a date, or ErrNoSuchDate when the date holds none.
func (c *Calendar) Day(ref string) (*Day, error) {
	date, err := c.ResolveDate(ref)
	if err != nil {
		return nil, err
	}
	day, ok := c.days[date]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchDate, date)
	}
	return day, nil
}

// ListWeekTasks returns the days of the current Monday to Sunday week that hold
// tasks, in date order. An empty result means nothing is planned this week.
func (c *Calendar) ListWeekTasks() []Section {
	today := c.Today()
	monday := today.StartOfWeek()
	sunday := monday.AddDays(config.DaysPerWeek - 1)

	return c.sections(today, func(d Date) bool {
		return !d.Before(monday) && !d.After(sunday)
	})
}

// ListAllTasks returns every day holding tasks, in date order.
func (c *Calendar) ListAllTasks() []Section {
	return c.sections(c.Today(), func(Date) bool { return true })
}

// Recurrences returns the registry sorted by description.
func (c *Calendar) Recurrences() []RecurrenceRecord {
	out := slices.Collect(maps.Values(c.recurrent))
	slices.SortFunc(out, func(a, b RecurrenceRecord) int {
		return strings.Compare(a.Description, b.Description)
	})
	return out
}

func (c *Calendar) IsRecurring(description string) bool {
	_, ok := c.recurrent[description]
	return ok
}

// Len is the number of dates holding at least one task.
func (c *Calendar) Len() int {
	return len(c.days)
}

func (c *Calendar) dayFor(date Date) *Day {
	day, ok := c.days[date]
	if !ok {
		day = newDay(date)
		c.days[date] = day
	}
	return day
}

func (c *Calendar) sections(today Date, keep func(Date) bool) []Section {
	dates := make([]Date, 0, len(c.days))
	for d, day := range c.days {
		if day.Len() > 0 && keep(d) {
			dates = append(dates, d)
		}
	}
	slices.SortFunc(dates, Date.Compare)

	out := make([]Section, 0, len(dates))
	for _, d := range dates {
		out = append(out, Section{Date: d, Today: d == today, Day: c.days[d]})
	}
	return out
}
