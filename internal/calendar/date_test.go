package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-agenda/internal/calendar"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    calendar.Date
		wantErr bool
	}{
		{"Canonical", "05/03/2024", calendar.Date{Year: 2024, Month: time.March, Day: 5}, false},
		{"ISO", "2024-03-05", calendar.Date{Year: 2024, Month: time.March, Day: 5}, false},
		{"Padded", "  01/01/2024 ", calendar.Date{Year: 2024, Month: time.January, Day: 1}, false},
		{"Leap Day", "29/02/2024", calendar.Date{Year: 2024, Month: time.February, Day: 29}, false},
		{"Impossible Day", "31/02/2024", calendar.Date{}, true},
		{"Not Leap Year", "29/02/2023", calendar.Date{}, true},
		{"Month 13", "01/13/2024", calendar.Date{}, true},
		{"Garbage", "someday", calendar.Date{}, true},
		{"Empty", "", calendar.Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calendar.ParseDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, calendar.ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_StringAndOrder(t *testing.T) {
	a := calendar.Date{Year: 2023, Month: time.December, Day: 31}
	b := calendar.Date{Year: 2024, Month: time.January, Day: 2}

	assert.Equal(t, "31/12/2023", a.String())
	assert.Equal(t, "02/01/2024", b.String())

	// The display strings sort the wrong way round; the dates must not.
	assert.Greater(t, a.String(), b.String())
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestDate_StartOfWeek(t *testing.T) {
	monday := calendar.Date{Year: 2024, Month: time.January, Day: 1}

	for offset := range 7 {
		d := monday.AddDays(offset)
		assert.Equal(t, monday, d.StartOfWeek(), "start of week for %s", d)
	}
	assert.Equal(t, monday.AddDays(7), monday.AddDays(7).StartOfWeek())
	assert.Equal(t, time.Monday, monday.Weekday())
}

func TestDate_AddDaysCrossesBoundaries(t *testing.T) {
	assert.Equal(t, "01/03/2024", calendar.Date{Year: 2024, Month: time.February, Day: 29}.AddDays(1).String())
	assert.Equal(t, "31/12/2023", calendar.Date{Year: 2024, Month: time.January, Day: 1}.AddDays(-1).String())
}

func TestDate_JSONText(t *testing.T) {
	type wrapper struct {
		At calendar.Date `json:"at"`
	}

	raw, err := json.Marshal(wrapper{At: calendar.Date{Year: 2024, Month: time.July, Day: 14}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"14/07/2024"}`, string(raw))

	var w wrapper
	assert.Error(t, json.Unmarshal([]byte(`{"at":"30/02/2024"}`), &w))
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		input   string
		want    calendar.Frequency
		wantErr bool
	}{
		{"d", calendar.Daily, false},
		{"Daily", calendar.Daily, false},
		{" day ", calendar.Daily, false},
		{"w", calendar.Weekly, false},
		{"WEEK", calendar.Weekly, false},
		{"weekly", calendar.Weekly, false},
		{"m", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := calendar.ParseFrequency(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, calendar.ErrInvalidRecurrence)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "d", calendar.Daily.String())
	assert.Equal(t, "w", calendar.Weekly.String())
}
