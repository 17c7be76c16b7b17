package calendar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tartampluch/go-agenda/internal/config"
	"github.com/tartampluch/go-agenda/internal/store"
)

// LoadStatus reports what Open found in the store.
type LoadStatus int

const (
	// StatusLoaded means the tasks resource was read and decoded.
	StatusLoaded LoadStatus = iota
	// StatusEmpty means the tasks resource was missing, empty or malformed and the
	// calendar starts with no tasks.
	StatusEmpty
)

func (s LoadStatus) String() string {
	if s == StatusLoaded {
		return "loaded"
	}
	return "empty"
}

type taskRecord struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type recurrenceRecord struct {
	Description string `json:"description"`
	Recurrence  int    `json:"recurrence"`
	Unit        string `json:"unit,omitempty"`
	StartDate   string `json:"start date"`
	EndDate     string `json:"end date"`
}

// Save writes the tasks and the recurrence registry. Both writes are attempted;
// failures are wrapped in ErrStorageFault and joined.
func (c *Calendar) Save() error {
	errRec := c.writeResource(store.ResourceRecurrence, c.recurrenceRecords())
	if errRec != nil {
		errRec = fmt.Errorf("%s: %w: %w", config.ErrSaveRecurrence, ErrStorageFault, errRec)
	}
	errTasks := c.writeResource(store.ResourceTasks, c.taskRecords())
	if errTasks != nil {
		errTasks = fmt.Errorf("%s: %w: %w", config.ErrSaveTasks, ErrStorageFault, errTasks)
	}

	if err := errors.Join(errRec, errTasks); err != nil {
		return err
	}
	slog.Info(config.MsgCalendarSaved,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyCalendar, c.name,
		config.LogKeyDays, len(c.days),
	)
	return nil
}

// Open loads a calendar from st. An empty or malformed tasks resource is not an
// error: the calendar starts empty and the status says so. A calendar that does
// not exist in st is store.ErrCalendarNotFound.
func Open(st store.Store, name string, clock Clock) (*Calendar, LoadStatus, error) {
	exists, err := st.Exists(name)
	if err != nil {
		return nil, StatusEmpty, err
	}
	if !exists {
		return nil, StatusEmpty, fmt.Errorf("%w: %s", store.ErrCalendarNotFound, name)
	}

	cal := New(name, st, clock)

	raw, err := readResource(st, name, store.ResourceTasks)
	if err != nil {
		return nil, StatusEmpty, fmt.Errorf("%s: %w: %w", config.ErrLoadTasks, ErrStorageFault, err)
	}
	status := StatusEmpty
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := cal.decodeTasks(raw); err != nil {
			slog.Warn(config.MsgCalendarEmpty,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyCalendar, name,
				config.LogKeyError, err,
			)
			cal.days = make(map[Date]*Day)
		} else {
			status = StatusLoaded
		}
	}

	raw, err = readResource(st, name, store.ResourceRecurrence)
	if err != nil {
		return nil, StatusEmpty, fmt.Errorf("%s: %w: %w", config.ErrLoadRecurrence, ErrStorageFault, err)
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := cal.decodeRecurrences(raw); err != nil {
			slog.Warn(config.MsgRecurrenceEmpty,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyCalendar, name,
				config.LogKeyError, err,
			)
			cal.recurrent = make(map[string]RecurrenceRecord)
		}
	}

	slog.Info(config.MsgCalendarLoaded,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyCalendar, name,
		config.LogKeyStatus, status.String(),
		config.LogKeyDays, len(cal.days),
	)
	return cal, status, nil
}

// readResource returns nil data for a resource that does not exist yet.
func readResource(st store.Store, name string, res store.Resource) ([]byte, error) {
	r, err := st.OpenRead(name, res)
	if errors.Is(err, store.ErrResourceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

func (c *Calendar) writeResource(res store.Resource, v any) (err error) {
	w, err := c.store.OpenWrite(c.name, res)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(w)
	enc.SetIndent("", config.JSONIndent)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (c *Calendar) taskRecords() map[string][]taskRecord {
	out := make(map[string][]taskRecord, len(c.days))
	for date, day := range c.days {
		if day.Len() == 0 {
			continue
		}
		tasks := make([]taskRecord, 0, day.Len())
		for _, t := range day.tasks {
			tasks = append(tasks, taskRecord{Description: t.Description, Completed: t.Completed})
		}
		out[date.String()] = tasks
	}
	return out
}

func (c *Calendar) recurrenceRecords() map[string]recurrenceRecord {
	out := make(map[string]recurrenceRecord, len(c.recurrent))
	for desc, r := range c.recurrent {
		out[desc] = recurrenceRecord{
			Description: r.Description,
			Recurrence:  r.Interval,
			Unit:        r.Frequency.String(),
			StartDate:   r.Start.String(),
			EndDate:     r.End.String(),
		}
	}
	return out
}

func (c *Calendar) decodeTasks(raw []byte) error {
	var records map[string][]taskRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedData, err)
	}

	for key, tasks := range records {
		date, err := ParseDate(key)
		if err != nil {
			slog.Warn(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyCalendar, c.name,
				config.LogKeyDate, key,
			)
			continue
		}
		if len(tasks) == 0 {
			continue
		}
		day := c.dayFor(date)
		for _, t := range tasks {
			day.tasks = append(day.tasks, &Task{Description: t.Description, Completed: t.Completed})
		}
	}
	return nil
}

// decodeRecurrences keeps every record it can read. Records with an unreadable
// shape, date or unit are logged and skipped.
func (c *Calendar) decodeRecurrences(raw []byte) error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedData, err)
	}

	for key, entry := range entries {
		record, err := decodeRecurrence(key, entry)
		if err != nil {
			slog.Warn(config.MsgSkippedRecurrence,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyCalendar, c.name,
				config.LogKeyDescription, key,
				config.LogKeyError, err,
			)
			continue
		}
		c.recurrent[record.Description] = record
	}
	return nil
}

func decodeRecurrence(key string, entry json.RawMessage) (RecurrenceRecord, error) {
	var r recurrenceRecord
	if err := json.Unmarshal(entry, &r); err != nil {
		return RecurrenceRecord{}, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return RecurrenceRecord{}, err
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return RecurrenceRecord{}, err
	}
	// Registries written before units existed only held weekly recurrences.
	freq := Weekly
	if r.Unit != "" {
		if freq, err = ParseFrequency(r.Unit); err != nil {
			return RecurrenceRecord{}, err
		}
	}
	desc := r.Description
	if desc == "" {
		desc = key
	}
	return RecurrenceRecord{
		Description: desc,
		Interval:    r.Recurrence,
		Frequency:   freq,
		Start:       start,
		End:         end,
	}, nil
}
