package calendar

import (
	"fmt"
	"iter"

	"github.com/tartampluch/go-agenda/internal/config"
)

// Day holds the ordered tasks of one date. Indexes in its API are 1-based,
// matching what users see in listings.
type Day struct {
	date  Date
	tasks []*Task
}

func newDay(date Date) *Day {
	return &Day{date: date}
}

func (d *Day) Date() Date {
	return d.date
}

func (d *Day) Len() int {
	return len(d.tasks)
}

// Tasks returns a copy of the tasks in display order.
func (d *Day) Tasks() []Task {
	out := make([]Task, len(d.tasks))
	for i, t := range d.tasks {
		out[i] = *t
	}
	return out
}

// AddTask appends a new incomplete task.
func (d *Day) AddTask(description string) {
	d.tasks = append(d.tasks, &Task{Description: description})
}

// DeleteTask removes the task at index; later tasks move up by one.
func (d *Day) DeleteTask(index int) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	d.tasks = append(d.tasks[:index-1], d.tasks[index:]...)
	return nil
}

func (d *Day) CompleteTask(index int) error {
	if err := d.checkIndex(index); err != nil {
		return err
	}
	d.tasks[index-1].Complete()
	return nil
}

// ListTasks yields "n) description[mark]" lines lazily. ok is false when the day
// has no tasks.
func (d *Day) ListTasks() (lines iter.Seq[string], ok bool) {
	if len(d.tasks) == 0 {
		return func(func(string) bool) {}, false
	}
	return func(yield func(string) bool) {
		for i, t := range d.tasks {
			if !yield(fmt.Sprintf(config.FormatTaskLine, i+1, t)) {
				return
			}
		}
	}, true
}

func (d *Day) checkIndex(index int) error {
	if index < 1 || index > len(d.tasks) {
		return fmt.Errorf("%w: %d not in [1, %d] on %s", ErrOutOfRange, index, len(d.tasks), d.date)
	}
	return nil
}
