package calendar

import (
	"fmt"

	"github.com/tartampluch/go-agenda/internal/config"
)

// Task is a single to-do entry owned by a Day.
type Task struct {
	Description string
	Completed   bool
}

// Complete marks the task as done. Completing twice is harmless.
func (t *Task) Complete() {
	t.Completed = true
}

// String renders the task as "description[mark]".
func (t Task) String() string {
	mark := config.MarkTodo
	if t.Completed {
		mark = config.MarkDone
	}
	return fmt.Sprintf(config.FormatTask, t.Description, mark)
}
