// Package importer bulk-loads tasks into a calendar from YAML.
package importer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-agenda/internal/calendar"
	"github.com/tartampluch/go-agenda/internal/config"
	"gopkg.in/yaml.v3"
)

// YAMLTask represents a single task in the YAML input. Date and Until accept the
// same values as the command line, including today/tomorrow/yesterday.
type YAMLTask struct {
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Completed   bool   `yaml:"completed,omitempty"`
	Repeat      string `yaml:"repeat,omitempty"`
	Every       int    `yaml:"every,omitempty"`
	Until       string `yaml:"until,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// Import parses data and adds its tasks to cal, stopping at the first bad entry.
// It returns the number of entries added; recurring copies are not counted.
func Import(cal *calendar.Calendar, data []byte) (int, error) {
	var input YAMLInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrImportParse, err)
	}

	if len(input.Tasks) == 0 {
		return 0, errors.New(config.ErrImportEmpty)
	}

	count := 0
	for i, yt := range input.Tasks {
		if err := importTask(cal, yt); err != nil {
			return count, fmt.Errorf("%s %d: %w", config.ErrImportEntry, i+1, err)
		}
		count++
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompImporter,
		config.LogKeyCalendar, cal.Name(),
		config.LogKeyCount, count,
	)
	return count, nil
}

func importTask(cal *calendar.Calendar, yt YAMLTask) error {
	rec, err := recurrence(cal, yt)
	if err != nil {
		return err
	}
	if err := cal.AddTask(yt.Date, yt.Description, rec); err != nil {
		return err
	}
	if !yt.Completed {
		return nil
	}

	// The entry's own task is the last one appended to its date.
	day, err := cal.Day(yt.Date)
	if err != nil {
		return err
	}
	return cal.CompleteTask(yt.Date, day.Len())
}

func recurrence(cal *calendar.Calendar, yt YAMLTask) (calendar.Recurrence, error) {
	if yt.Repeat == "" {
		return calendar.Recurrence{}, nil
	}
	freq, err := calendar.ParseFrequency(yt.Repeat)
	if err != nil {
		return calendar.Recurrence{}, err
	}
	until, err := cal.ResolveDate(yt.Until)
	if err != nil {
		return calendar.Recurrence{}, fmt.Errorf("%w: %w", calendar.ErrInvalidRecurrence, err)
	}
	every := yt.Every
	if every == 0 {
		every = 1
	}
	return calendar.Recurrence{Interval: every, Frequency: freq, Until: until}, nil
}
