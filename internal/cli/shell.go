package cli

import (
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-agenda/internal/calendar"
	"github.com/tartampluch/go-agenda/internal/config"
)

// runShell is the numbered-menu loop. Failures are printed and the loop goes on;
// it ends on the quit option or when input runs out.
func (a *App) runShell() error {
	p := newPrompter(a)
	a.println(a.styles.title.Render(a.tr.Msg(config.TKeyBanner, nil)))

	for {
		a.println("")
		a.println(a.tr.Msg(config.TKeyMainMenu, nil))
		a.println("")
		choice, ok := p.ask(config.TKeyYourChoice, nil)
		if !ok {
			a.say(config.TKeyGoodbye, nil)
			return nil
		}

		var cal *calendar.Calendar
		switch choice {
		case "1":
			a.report(a.printCalendars())
		case "2":
			cal = a.shellCreate(p)
		case "3":
			cal = a.shellOpen(p)
		case "4":
			a.shellDelete(p)
		case "5":
			a.say(config.TKeyGoodbye, nil)
			return nil
		default:
			a.sayErr(config.TKeyInvalidOption)
		}

		if cal != nil && !a.calendarLoop(p, cal) {
			a.say(config.TKeyGoodbye, nil)
			return nil
		}
	}
}

// calendarLoop runs the per-calendar menu. It returns false when input ran out.
func (a *App) calendarLoop(p *prompter, cal *calendar.Calendar) bool {
	for {
		a.println("")
		a.println(a.tr.Msg(config.TKeyCalendarMenu, nil))
		a.println("")
		choice, ok := p.ask(config.TKeyYourChoice, nil)
		if !ok {
			a.shellSave(cal)
			return false
		}

		switch choice {
		case "1":
			a.printWeek(cal)
		case "2":
			a.printAll(cal)
		case "3":
			if !a.shellAddTask(p, cal) {
				a.shellSave(cal)
				return false
			}
		case "4":
			if !a.shellTaskOp(p, cal, cal.CompleteTask, config.TKeyTaskCompleted) {
				a.shellSave(cal)
				return false
			}
		case "5":
			if !a.shellTaskOp(p, cal, cal.DeleteTask, config.TKeyTaskDeleted) {
				a.shellSave(cal)
				return false
			}
		case "6":
			a.shellSave(cal)
			return true
		default:
			a.sayErr(config.TKeyInvalidOption)
		}
	}
}

// shellCreate creates a calendar. When the name is taken the user may load the
// existing calendar, which is then returned, or overwrite it.
func (a *App) shellCreate(p *prompter) *calendar.Calendar {
	name, ok := p.ask(config.TKeyPromptCreateName, nil)
	if !ok {
		return nil
	}
	exists, err := a.store.Exists(name)
	if err != nil {
		a.report(err)
		return nil
	}
	if !exists {
		a.report(a.createCalendar(name, false))
		return nil
	}

	a.println(a.tr.Msg(config.TKeyConfirmOverwrite, nil))
	for {
		choice, ok := p.ask(config.TKeyYourChoice, nil)
		if !ok {
			return nil
		}
		switch choice {
		case "1":
			return a.shellLoad(name)
		case "2":
			a.report(a.createCalendar(name, true))
			return nil
		default:
			a.sayErr(config.TKeyInvalidOption)
		}
	}
}

// shellOpen loads a calendar, offering to create it when it does not exist.
func (a *App) shellOpen(p *prompter) *calendar.Calendar {
	name, ok := p.ask(config.TKeyPromptOpenName, nil)
	if !ok {
		return nil
	}
	exists, err := a.store.Exists(name)
	if err != nil {
		a.report(err)
		return nil
	}
	if exists {
		return a.shellLoad(name)
	}

	for {
		answer, ok := p.ask(config.TKeyAskCreate, nil)
		if !ok {
			return nil
		}
		switch {
		case isYes(answer):
			a.report(a.createCalendar(name, false))
			return nil
		case isNo(answer):
			return nil
		default:
			a.sayErr(config.TKeyInvalidOption)
		}
	}
}

func (a *App) shellLoad(name string) *calendar.Calendar {
	cal, err := a.open(name)
	if err != nil {
		a.report(err)
		return nil
	}
	a.say(config.TKeyCalendarLoaded, nil)
	return cal
}

func (a *App) shellDelete(p *prompter) {
	name, ok := p.ask(config.TKeyPromptDeleteName, nil)
	if !ok {
		return
	}
	if err := a.requireCalendar(name); err != nil {
		a.report(err)
		return
	}
	for {
		a.println("")
		answer, ok := p.ask(config.TKeyConfirmDelete, map[string]any{"Name": name})
		if !ok {
			return
		}
		switch {
		case isYes(answer):
			a.report(a.deleteCalendar(name))
			return
		case isNo(answer):
			a.say(config.TKeyAborted, nil)
			return
		default:
			a.sayErr(config.TKeyInvalidOption)
		}
	}
}

// shellAddTask returns false when input ran out mid-dialog.
func (a *App) shellAddTask(p *prompter, cal *calendar.Calendar) bool {
	a.println("")
	date, ok := p.ask(config.TKeyPromptDate, nil)
	if !ok {
		return false
	}
	description, ok := p.ask(config.TKeyPromptDescription, nil)
	if !ok {
		return false
	}
	recurrent, ok := p.ask(config.TKeyPromptRecurrent, nil)
	if !ok {
		return false
	}

	var rec calendar.Recurrence
	if isYes(recurrent) {
		unit, ok := p.ask(config.TKeyPromptUnit, nil)
		if !ok {
			return false
		}
		until, ok := p.ask(config.TKeyPromptUntil, nil)
		if !ok {
			return false
		}
		freq, err := calendar.ParseFrequency(unit)
		if err != nil {
			a.report(err)
			return true
		}
		r, err := recurrenceFromFlags(cal, freq.String(), 1, until)
		if err != nil {
			a.report(err)
			return true
		}
		rec = r
	}

	if err := cal.AddTask(date, description, rec); err != nil {
		a.report(err)
		return true
	}
	a.say(config.TKeyTaskAdded, nil)
	return true
}

// shellTaskOp lists the calendar, asks for a date and a task number and applies op.
func (a *App) shellTaskOp(p *prompter, cal *calendar.Calendar, op func(string, int) error, doneKey string) bool {
	a.printAll(cal)
	a.println("")
	date, ok := p.ask(config.TKeyPromptDate, nil)
	if !ok {
		return false
	}
	number, ok := p.ask(config.TKeyPromptTaskNo, nil)
	if !ok {
		return false
	}
	index, err := parseIndex(number)
	if err != nil {
		a.report(err)
		return true
	}
	if err := op(date, index); err != nil {
		a.report(err)
		return true
	}
	a.say(doneKey, nil)
	return true
}

func (a *App) shellSave(cal *calendar.Calendar) {
	if err := cal.Save(); err != nil {
		a.report(err)
		return
	}
	a.say(config.TKeyCalendarSaved, nil)
}

// report prints err, if any, as a localized message.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	slog.Warn(config.ErrAppFailed,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyError, err,
	)
	fmt.Fprintln(a.out, a.styles.err.Render(a.describe(err)))
}

func (a *App) sayErr(key string) {
	fmt.Fprintln(a.out, a.styles.err.Render(a.tr.Msg(key, nil)))
}

func logCalendarEvent(msg, name string) {
	slog.Info(msg,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyCalendar, name,
	)
}
