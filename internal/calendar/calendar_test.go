package calendar_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-agenda/internal/calendar"
	"github.com/tartampluch/go-agenda/internal/config"
	"github.com/tartampluch/go-agenda/internal/store"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockStore lets tests inject storage failures.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Exists(name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Create(name string) error { return m.Called(name).Error(0) }
func (m *MockStore) Delete(name string) error { return m.Called(name).Error(0) }
func (m *MockStore) Close() error             { return nil }

func (m *MockStore) List() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) OpenRead(name string, res store.Resource) (io.ReadCloser, error) {
	args := m.Called(name, res)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) OpenWrite(name string, res store.Resource) (io.WriteCloser, error) {
	args := m.Called(name, res)
	if w := args.Get(0); w != nil {
		return w.(io.WriteCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// wednesday is 03/01/2024; its week runs from 01/01 to 07/01.
var wednesday = time.Date(2024, time.January, 3, 9, 30, 0, 0, time.UTC)

func newCalendar(t *testing.T, now time.Time) *calendar.Calendar {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Create("work"))
	return calendar.New("work", st, MockClock{CurrentTime: now})
}

func mustDate(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

// rendered flattens sections into "date: n) task" lines for compact assertions.
func rendered(sections []calendar.Section) []string {
	var out []string
	for _, s := range sections {
		lines, _ := s.Day.ListTasks()
		for line := range lines {
			out = append(out, s.Date.String()+": "+line)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Date Resolution
// -----------------------------------------------------------------------------

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		ref  string
		want string
	}{
		{"Today", wednesday, "today", "03/01/2024"},
		{"Case And Space", wednesday, "  ToDaY ", "03/01/2024"},
		{"Tomorrow End Of Month", time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC), "tomorrow", "01/02/2024"},
		{"Yesterday Leap Day", time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC), "yesterday", "29/02/2024"},
		{"Tomorrow New Year", time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC), "tomorrow", "01/01/2024"},
		{"Explicit", wednesday, "25/12/2024", "25/12/2024"},
		{"ISO", wednesday, "2024-12-25", "25/12/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := calendar.New("c", nil, MockClock{CurrentTime: tt.now})
			got, err := cal.ResolveDate(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := calendar.New("c", nil, MockClock{CurrentTime: wednesday}).ResolveDate("soon")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
}

// -----------------------------------------------------------------------------
// Adding Tasks
// -----------------------------------------------------------------------------

func TestAddTask_Simple(t *testing.T) {
	cal := newCalendar(t, wednesday)

	require.NoError(t, cal.AddTask("today", "write report", calendar.Recurrence{}))
	require.NoError(t, cal.AddTask("03/01/2024", "call bob", calendar.Recurrence{}))

	day, err := cal.Day("today")
	require.NoError(t, err)
	assert.Equal(t, []calendar.Task{{Description: "write report"}, {Description: "call bob"}}, day.Tasks())
	assert.Empty(t, cal.Recurrences())
	assert.False(t, cal.IsRecurring("write report"))
}

func TestAddTask_DailyRecurrence(t *testing.T) {
	cal := newCalendar(t, wednesday)

	rec := calendar.Recurrence{Interval: 1, Frequency: calendar.Daily, Until: mustDate(t, "03/01/2024")}
	require.NoError(t, cal.AddTask("01/01/2024", "gym", rec))

	assert.Equal(t, []string{
		"01/01/2024: 1) gym[x]",
		"02/01/2024: 1) gym[x]",
		"03/01/2024: 1) gym[x]",
	}, rendered(cal.ListAllTasks()))

	assert.Equal(t, []calendar.RecurrenceRecord{{
		Description: "gym",
		Interval:    1,
		Frequency:   calendar.Daily,
		Start:       mustDate(t, "01/01/2024"),
		End:         mustDate(t, "03/01/2024"),
	}}, cal.Recurrences())
	assert.True(t, cal.IsRecurring("gym"))
}

func TestAddTask_WeeklyRecurrence(t *testing.T) {
	cal := newCalendar(t, wednesday)

	rec := calendar.Recurrence{Interval: 2, Frequency: calendar.Weekly, Until: mustDate(t, "20/01/2024")}
	require.NoError(t, cal.AddTask("01/01/2024", "standup", rec))

	var dates []string
	for _, s := range cal.ListAllTasks() {
		dates = append(dates, s.Date.String())
	}
	// The interval only switches repetition on; the step stays one week.
	assert.Equal(t, []string{"01/01/2024", "08/01/2024", "15/01/2024"}, dates)
	assert.Equal(t, 2, cal.Recurrences()[0].Interval)
}

func TestAddTask_RecurrenceEndingBeforeFirstStep(t *testing.T) {
	cal := newCalendar(t, wednesday)

	rec := calendar.Recurrence{Interval: 1, Frequency: calendar.Weekly, Until: mustDate(t, "05/01/2024")}
	require.NoError(t, cal.AddTask("01/01/2024", "review", rec))

	assert.Equal(t, 1, cal.Len())
	assert.True(t, cal.IsRecurring("review"))
}

func TestAddTask_SameDescriptionOverwritesRecord(t *testing.T) {
	cal := newCalendar(t, wednesday)
	until := mustDate(t, "02/01/2024")

	require.NoError(t, cal.AddTask("01/01/2024", "gym", calendar.Recurrence{Interval: 1, Frequency: calendar.Daily, Until: until}))
	require.NoError(t, cal.AddTask("01/01/2024", "gym", calendar.Recurrence{Interval: 1, Frequency: calendar.Weekly, Until: until}))

	recs := cal.Recurrences()
	require.Len(t, recs, 1)
	assert.Equal(t, calendar.Weekly, recs[0].Frequency)
}

func TestAddTask_InvalidInputLeavesCalendarUntouched(t *testing.T) {
	until := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		ref         string
		description string
		rec         calendar.Recurrence
		wantErr     error
	}{
		{"Bad Date", "32/01/2024", "x", calendar.Recurrence{}, calendar.ErrInvalidDate},
		{"Empty Description", "today", "   ", calendar.Recurrence{}, calendar.ErrEmptyDescription},
		{"Negative Interval", "today", "x", calendar.Recurrence{Interval: -1}, calendar.ErrInvalidRecurrence},
		{"Unknown Frequency", "today", "x", calendar.Recurrence{Interval: 1, Until: calendar.DateOf(until)}, calendar.ErrInvalidRecurrence},
		{"Missing End", "today", "x", calendar.Recurrence{Interval: 1, Frequency: calendar.Daily}, calendar.ErrInvalidRecurrence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := newCalendar(t, wednesday)

			err := cal.AddTask(tt.ref, tt.description, tt.rec)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, cal.Len())
			assert.Empty(t, cal.Recurrences())
		})
	}
}

// -----------------------------------------------------------------------------
// Deleting & Completing
// -----------------------------------------------------------------------------

func TestDeleteTask(t *testing.T) {
	cal := newCalendar(t, wednesday)
	require.NoError(t, cal.AddTask("today", "a", calendar.Recurrence{}))
	require.NoError(t, cal.AddTask("today", "b", calendar.Recurrence{}))

	assert.ErrorIs(t, cal.DeleteTask("today", 3), calendar.ErrOutOfRange)
	assert.ErrorIs(t, cal.DeleteTask("tomorrow", 1), calendar.ErrNoSuchDate)

	require.NoError(t, cal.DeleteTask("today", 1))
	day, err := cal.Day("today")
	require.NoError(t, err)
	assert.Equal(t, []calendar.Task{{Description: "b"}}, day.Tasks())

	// Removing the last task drops the date entirely.
	require.NoError(t, cal.DeleteTask("today", 1))
	_, err = cal.Day("today")
	assert.ErrorIs(t, err, calendar.ErrNoSuchDate)
	assert.Zero(t, cal.Len())
	assert.Empty(t, cal.ListAllTasks())
}

func TestCompleteTask(t *testing.T) {
	cal := newCalendar(t, wednesday)
	require.NoError(t, cal.AddTask("today", "a", calendar.Recurrence{}))

	assert.ErrorIs(t, cal.CompleteTask("yesterday", 1), calendar.ErrNoSuchDate)
	assert.ErrorIs(t, cal.CompleteTask("today", 0), calendar.ErrOutOfRange)

	require.NoError(t, cal.CompleteTask("today", 1))
	require.NoError(t, cal.CompleteTask("today", 1))

	assert.Equal(t, []string{"03/01/2024: 1) a[✓]"}, rendered(cal.ListAllTasks()))
}

// -----------------------------------------------------------------------------
// Listings
// -----------------------------------------------------------------------------

func TestListWeekTasks(t *testing.T) {
	cal := newCalendar(t, wednesday)
	for _, ref := range []string{"07/01/2024", "31/12/2023", "01/01/2024", "today", "08/01/2024"} {
		require.NoError(t, cal.AddTask(ref, "t", calendar.Recurrence{}))
	}

	sections := cal.ListWeekTasks()

	require.Len(t, sections, 3)
	assert.Equal(t, "01/01/2024", sections[0].Date.String())
	assert.Equal(t, time.Monday, sections[0].Date.Weekday())
	assert.False(t, sections[0].Today)
	assert.Equal(t, "03/01/2024", sections[1].Date.String())
	assert.True(t, sections[1].Today)
	assert.Equal(t, "07/01/2024", sections[2].Date.String())
	assert.Equal(t, time.Sunday, sections[2].Date.Weekday())
}

func TestListWeekTasks_OnSunday(t *testing.T) {
	sunday := time.Date(2024, time.January, 7, 22, 0, 0, 0, time.UTC)
	cal := newCalendar(t, sunday)
	require.NoError(t, cal.AddTask("01/01/2024", "monday", calendar.Recurrence{}))
	require.NoError(t, cal.AddTask("08/01/2024", "next monday", calendar.Recurrence{}))

	sections := cal.ListWeekTasks()
	require.Len(t, sections, 1)
	assert.Equal(t, "01/01/2024", sections[0].Date.String())
}

func TestListAllTasks_SortsChronologically(t *testing.T) {
	cal := newCalendar(t, wednesday)
	for _, ref := range []string{"02/01/2024", "31/12/2023", "15/06/2023", "today"} {
		require.NoError(t, cal.AddTask(ref, "t", calendar.Recurrence{}))
	}

	var dates []string
	var today []bool
	for _, s := range cal.ListAllTasks() {
		dates = append(dates, s.Date.String())
		today = append(today, s.Today)
	}
	assert.Equal(t, []string{"15/06/2023", "31/12/2023", "02/01/2024", "03/01/2024"}, dates)
	assert.Equal(t, []bool{false, false, false, true}, today)
}

func TestListings_Empty(t *testing.T) {
	cal := newCalendar(t, wednesday)
	assert.Empty(t, cal.ListWeekTasks())
	assert.Empty(t, cal.ListAllTasks())
}

// -----------------------------------------------------------------------------
// Persistence
// -----------------------------------------------------------------------------

func TestSaveOpen_RoundTrip(t *testing.T) {
	backends := map[string]string{"file": config.BackendFile, "sqlite": config.BackendSQLite}

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			st, err := store.Open(backend, t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })
			require.NoError(t, st.Create("home"))

			clock := MockClock{CurrentTime: wednesday}
			cal := calendar.New("home", st, clock)
			require.NoError(t, cal.AddTask("today", "laundry", calendar.Recurrence{}))
			require.NoError(t, cal.AddTask("today", `quote "this" & <that>`, calendar.Recurrence{}))
			require.NoError(t, cal.CompleteTask("today", 1))
			rec := calendar.Recurrence{Interval: 1, Frequency: calendar.Daily, Until: mustDate(t, "05/01/2024")}
			require.NoError(t, cal.AddTask("04/01/2024", "gym", rec))
			require.NoError(t, cal.Save())

			loaded, status, err := calendar.Open(st, "home", clock)
			require.NoError(t, err)

			assert.Equal(t, calendar.StatusLoaded, status)
			assert.Equal(t, rendered(cal.ListAllTasks()), rendered(loaded.ListAllTasks()))
			assert.Equal(t, cal.Recurrences(), loaded.Recurrences())
		})
	}
}

func TestSave_PersistedLayout(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Create("work"))

	cal := calendar.New("work", st, MockClock{CurrentTime: wednesday})
	rec := calendar.Recurrence{Interval: 1, Frequency: calendar.Weekly, Until: mustDate(t, "10/01/2024")}
	require.NoError(t, cal.AddTask("today", "sync", rec))
	require.NoError(t, cal.Save())

	r, err := st.OpenRead("work", store.ResourceTasks)
	require.NoError(t, err)
	tasks, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	assert.JSONEq(t, `{
		"03/01/2024": [{"description": "sync", "completed": false}],
		"10/01/2024": [{"description": "sync", "completed": false}]
	}`, string(tasks))
	assert.Contains(t, string(tasks), "\n    \"03/01/2024\"")

	r, err = st.OpenRead("work", store.ResourceRecurrence)
	require.NoError(t, err)
	recs, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	assert.JSONEq(t, `{
		"sync": {"description": "sync", "recurrence": 1, "unit": "w", "start date": "03/01/2024", "end date": "10/01/2024"}
	}`, string(recs))
}

func TestOpen_EmptyOrMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Empty File", ""},
		{"Whitespace", "  \n"},
		{"Malformed", "{not json"},
		{"Wrong Shape", `["a", "b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := store.NewFileStore(t.TempDir())
			require.NoError(t, err)
			require.NoError(t, st.Create("work"))
			w, err := st.OpenWrite("work", store.ResourceTasks)
			require.NoError(t, err)
			_, err = io.WriteString(w, tt.content)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			cal, status, err := calendar.Open(st, "work", MockClock{CurrentTime: wednesday})

			require.NoError(t, err)
			assert.Equal(t, calendar.StatusEmpty, status)
			assert.Zero(t, cal.Len())
		})
	}
}

func TestOpen_SkipsBadDatesAndDefaultsUnit(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Create("work"))

	write := func(res store.Resource, content string) {
		w, err := st.OpenWrite("work", res)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	write(store.ResourceTasks, `{
		"31/02/2024": [{"description": "ghost", "completed": false}],
		"02/01/2024": [{"description": "real", "completed": true}]
	}`)
	write(store.ResourceRecurrence, `{
		"real": {"description": "real", "recurrence": 1, "start date": "02/01/2024", "end date": "09/01/2024"}
	}`)

	cal, status, err := calendar.Open(st, "work", MockClock{CurrentTime: wednesday})
	require.NoError(t, err)

	assert.Equal(t, calendar.StatusLoaded, status)
	assert.Equal(t, []string{"02/01/2024: 1) real[✓]"}, rendered(cal.ListAllTasks()))
	require.Len(t, cal.Recurrences(), 1)
	assert.Equal(t, calendar.Weekly, cal.Recurrences()[0].Frequency)
}

func TestOpen_MalformedRecurrenceKeepsTasks(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Create("work"))

	cal := calendar.New("work", st, MockClock{CurrentTime: wednesday})
	require.NoError(t, cal.AddTask("today", "a", calendar.Recurrence{}))
	require.NoError(t, cal.Save())

	w, err := st.OpenWrite("work", store.ResourceRecurrence)
	require.NoError(t, err)
	_, err = io.WriteString(w, "[[[")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	loaded, status, err := calendar.Open(st, "work", MockClock{CurrentTime: wednesday})
	require.NoError(t, err)
	assert.Equal(t, calendar.StatusLoaded, status)
	assert.Equal(t, 1, loaded.Len())
	assert.Empty(t, loaded.Recurrences())
}

func TestOpen_SkipsUnreadableRecurrenceRecords(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Create("work"))

	w, err := st.OpenWrite("work", store.ResourceRecurrence)
	require.NoError(t, err)
	_, err = io.WriteString(w, `{
		"gym": {"description": "gym", "recurrence": 0, "start date": "01/01/2024", "end date": 0},
		"swim": {"description": "swim", "recurrence": 1, "unit": "m", "start date": "01/01/2024", "end date": "08/01/2024"},
		"read": {"description": "read", "recurrence": 1, "unit": "d", "start date": "01/01/2024", "end date": "03/01/2024"}
	}`)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	cal, _, err := calendar.Open(st, "work", MockClock{CurrentTime: wednesday})
	require.NoError(t, err)

	records := cal.Recurrences()
	require.Len(t, records, 1)
	assert.Equal(t, "read", records[0].Description)
	assert.Equal(t, calendar.Daily, records[0].Frequency)
	assert.True(t, cal.IsRecurring("read"))
	assert.False(t, cal.IsRecurring("gym"))

	require.NoError(t, cal.Save())

	r, err := st.OpenRead("work", store.ResourceRecurrence)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"read"`, "readable records survive a save")
}

func TestOpen_UnknownCalendar(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = calendar.Open(st, "nope", nil)
	assert.ErrorIs(t, err, store.ErrCalendarNotFound)
}

func TestOpen_ReadFaultIsStorageFault(t *testing.T) {
	st := new(MockStore)
	st.On("Exists", "work").Return(true, nil)
	st.On("OpenRead", "work", store.ResourceTasks).Return(nil, errors.New("disk on fire"))

	_, _, err := calendar.Open(st, "work", nil)

	assert.ErrorIs(t, err, calendar.ErrStorageFault)
	assert.ErrorContains(t, err, "disk on fire")
	st.AssertExpectations(t)
}

func TestSave_JoinsIndependentFaults(t *testing.T) {
	st := new(MockStore)
	st.On("OpenWrite", "work", store.ResourceRecurrence).Return(nil, errors.New("registry locked"))
	st.On("OpenWrite", "work", store.ResourceTasks).Return(nil, errors.New("tasks locked"))

	cal := calendar.New("work", st, MockClock{CurrentTime: wednesday})
	require.NoError(t, cal.AddTask("today", "a", calendar.Recurrence{}))

	err := cal.Save()

	require.Error(t, err)
	assert.ErrorIs(t, err, calendar.ErrStorageFault)
	assert.ErrorContains(t, err, "registry locked")
	assert.ErrorContains(t, err, "tasks locked")
	assert.ErrorContains(t, err, config.ErrSaveRecurrence)
	assert.ErrorContains(t, err, config.ErrSaveTasks)

	// Save never touches the in-memory model.
	assert.Equal(t, 1, cal.Len())
	st.AssertNumberOfCalls(t, "OpenWrite", 2)
}

func TestSave_OneFaultStillWritesTheOther(t *testing.T) {
	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Create("work"))

	st := new(MockStore)
	st.On("OpenWrite", "work", store.ResourceRecurrence).Return(nil, errors.New("registry locked"))
	st.On("OpenWrite", "work", store.ResourceTasks).Return(func() io.WriteCloser {
		w, err := fs.OpenWrite("work", store.ResourceTasks)
		require.NoError(t, err)
		return w
	}(), nil)

	cal := calendar.New("work", st, MockClock{CurrentTime: wednesday})
	require.NoError(t, cal.AddTask("today", "kept", calendar.Recurrence{}))

	err = cal.Save()
	assert.ErrorIs(t, err, calendar.ErrStorageFault)

	loaded, status, err := calendar.Open(fs, "work", MockClock{CurrentTime: wednesday})
	require.NoError(t, err)
	assert.Equal(t, calendar.StatusLoaded, status)
	assert.Equal(t, []string{"03/01/2024: 1) kept[x]"}, rendered(loaded.ListAllTasks()))
}
