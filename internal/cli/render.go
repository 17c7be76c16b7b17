package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/tartampluch/go-agenda/internal/calendar"
	"github.com/tartampluch/go-agenda/internal/config"
)

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	today  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	muted  lipgloss.Style
}

// newStyles binds the styles to out, so colors are dropped when out is not a terminal.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:  r.NewStyle().Foreground(lipgloss.Color("170")).Bold(true),
		header: r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		today:  r.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		ok:     r.NewStyle().Foreground(lipgloss.Color("148")),
		err:    r.NewStyle().Foreground(lipgloss.Color("196")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// printWeek renders "{Weekday} {dd/mm/yyyy}" sections of the current week.
func (a *App) printWeek(cal *calendar.Calendar) {
	sections := cal.ListWeekTasks()
	if len(sections) == 0 {
		a.println(a.styles.muted.Render(a.tr.Msg(config.TKeyNoTasksWeek, nil)))
		return
	}
	for _, s := range sections {
		label := fmt.Sprintf("%s %s", a.tr.Weekday(s.Date.Weekday()), s.Date)
		a.printSection(label, s)
	}
}

// printAll renders every dated section of the calendar.
func (a *App) printAll(cal *calendar.Calendar) {
	sections := cal.ListAllTasks()
	if len(sections) == 0 {
		a.println(a.styles.muted.Render(a.tr.Msg(config.TKeyNoTasksCalendar, nil)))
		return
	}
	for _, s := range sections {
		a.printSection(s.Date.String(), s)
	}
}

func (a *App) printSection(label string, s calendar.Section) {
	a.println("")
	if s.Today {
		a.println(a.styles.today.Render(label + " " + a.tr.Msg(config.TKeyTodaySuffix, nil)))
	} else {
		a.println(a.styles.header.Render(label))
	}

	lines, ok := s.Day.ListTasks()
	if !ok {
		a.println(a.styles.muted.Render(a.tr.Msg(config.TKeyNoTasksDay, nil)))
		return
	}
	for line := range lines {
		a.println(line)
	}
}

func (a *App) printRecurrences(cal *calendar.Calendar) {
	records := cal.Recurrences()
	if len(records) == 0 {
		a.println(a.styles.muted.Render(a.tr.Msg(config.TKeyNoRecurring, nil)))
		return
	}
	a.println(a.styles.title.Render(a.tr.Msg(config.TKeyRecurringHeader, nil)))
	for _, r := range records {
		unit := config.TKeyUnitWeekly
		if r.Frequency == calendar.Daily {
			unit = config.TKeyUnitDaily
		}
		a.println(a.tr.Msg(config.TKeyRecurringLine, map[string]any{
			"Description": r.Description,
			"Unit":        a.tr.Msg(unit, nil),
			"Start":       r.Start.String(),
			"End":         r.End.String(),
		}))
	}
}

func (a *App) printCalendars() error {
	names, err := a.store.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		a.println(a.styles.muted.Render(a.tr.Msg(config.TKeyNoCalendars, nil)))
		return nil
	}
	a.println(a.styles.title.Render(a.tr.Msg(config.TKeyCalendarsHeader, nil)))
	for _, name := range names {
		a.println(name)
	}
	return nil
}
