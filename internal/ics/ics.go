// Package ics renders a calendar as an iCalendar feed of VTODO components.
package ics

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tartampluch/go-agenda/internal/calendar"
	"github.com/tartampluch/go-agenda/internal/config"
)

// Source is the read-only view of a calendar needed to export it.
type Source interface {
	Name() string
	ListAllTasks() []calendar.Section
	IsRecurring(description string) bool
}

// Export encodes every task of src as a VTODO due on its date. A calendar
// without tasks yields a minimal valid VCALENDAR.
func Export(src Source, now time.Time) ([]byte, error) {
	sections := src.ListAllTasks()
	if len(sections) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, src.Name())
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint for subscribed clients.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	count := 0
	for _, s := range sections {
		for i, task := range s.Day.Tasks() {
			todo := newTodo(src, s.Date, i+1, task)
			todo.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, todo)
			count++
		}
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgExportSuccess,
		config.LogKeyComponent, config.CompICS,
		config.LogKeyCalendar, src.Name(),
		config.LogKeyCount, count,
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}

// UID derives a stable identifier from the task's position, so repeated exports
// of an unchanged calendar produce identical UIDs.
func UID(calendarName string, date calendar.Date, index int, description string) string {
	name := fmt.Sprintf(config.FormatUIDName, calendarName, date, index, description)
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(name))
	return fmt.Sprintf(config.FormatUID, id, config.ICalDomain)
}

func newTodo(src Source, date calendar.Date, index int, task calendar.Task) *ical.Component {
	todo := ical.NewComponent(config.ICalToDo)
	todo.Props.SetText(config.PropUID, UID(src.Name(), date, index, task.Description))
	todo.Props.SetText(config.PropSummary, task.Description)

	start := ical.NewProp(config.PropDTStart)
	start.SetDate(date.Time())
	todo.Props.Set(start)

	// DUE is exclusive for all-day values; the task is due by the end of its date.
	due := ical.NewProp(config.PropDue)
	due.SetDate(date.AddDays(1).Time())
	todo.Props.Set(due)

	status := config.StatusNeedsAction
	if task.Completed {
		status = config.StatusCompleted
	}
	todo.Props.SetText(config.PropStatus, status)

	if src.IsRecurring(task.Description) {
		todo.Props.SetText(config.PropCategories, config.CategoryRecurring)
	}
	return todo
}
