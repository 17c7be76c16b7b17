package cli

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-agenda/internal/calendar"
	"github.com/tartampluch/go-agenda/internal/config"
	"github.com/tartampluch/go-agenda/internal/ics"
	"github.com/tartampluch/go-agenda/internal/importer"
	"github.com/tartampluch/go-agenda/internal/secret"
	"github.com/tartampluch/go-agenda/internal/store"
)

func (a *App) calendarsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List existing calendars",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printCalendars()
		},
	}
}

func (a *App) createCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "create <calendar>",
		Short: "Create a calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.createCalendar(args[0], force)
		},
	}
	cmd.Flags().BoolVar(&force, config.FlagForce, false, config.FlagDescForce)
	return cmd
}

func (a *App) deleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <calendar>",
		Short: "Delete a calendar and all its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			exists, err := a.store.Exists(name)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %s", store.ErrCalendarNotFound, name)
			}
			if !yes {
				answer, _ := newPrompter(a).ask(config.TKeyConfirmDelete, map[string]any{"Name": name})
				if !isYes(answer) {
					a.say(config.TKeyAborted, nil)
					return nil
				}
			}
			return a.deleteCalendar(name)
		},
	}
	cmd.Flags().BoolVarP(&yes, config.FlagYes, "y", false, config.FlagDescYes)
	return cmd
}

func (a *App) weekCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "week <calendar>",
		Short: "Show the tasks of the current week",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cal, err := a.open(args[0])
			if err != nil {
				return err
			}
			a.printWeek(cal)
			return nil
		},
	}
}

func (a *App) allCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all <calendar>",
		Short: "Show every task of a calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cal, err := a.open(args[0])
			if err != nil {
				return err
			}
			a.printAll(cal)
			return nil
		},
	}
}

func (a *App) addCommand() *cobra.Command {
	var (
		repeat string
		every  int
		until  string
	)
	cmd := &cobra.Command{
		Use:   "add <calendar> <date> <description...>",
		Short: "Add a task (date: dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, yesterday)",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := a.open(args[0])
			if err != nil {
				return err
			}
			var rec calendar.Recurrence
			switch {
			case repeat != "":
				if rec, err = recurrenceFromFlags(cal, repeat, every, until); err != nil {
					return err
				}
			case cmd.Flags().Changed(config.FlagUntil) || cmd.Flags().Changed(config.FlagEvery):
				return fmt.Errorf("%w: %s", calendar.ErrInvalidRecurrence, config.ErrUnitMissing)
			}
			if err := cal.AddTask(args[1], strings.Join(args[2:], " "), rec); err != nil {
				return err
			}
			if err := cal.Save(); err != nil {
				return err
			}
			a.say(config.TKeyTaskAdded, nil)
			return nil
		},
	}
	cmd.Flags().StringVar(&repeat, config.FlagRepeat, "", config.FlagDescRepeat)
	cmd.Flags().IntVar(&every, config.FlagEvery, 1, config.FlagDescEvery)
	cmd.Flags().StringVar(&until, config.FlagUntil, "", config.FlagDescUntil)
	return cmd
}

// recurrenceFromFlags builds an enabled Recurrence. An empty or unknown repeat unit
// is ErrInvalidRecurrence.
func recurrenceFromFlags(cal *calendar.Calendar, repeat string, every int, until string) (calendar.Recurrence, error) {
	freq, err := calendar.ParseFrequency(repeat)
	if err != nil {
		return calendar.Recurrence{}, err
	}
	if every <= 0 {
		return calendar.Recurrence{}, fmt.Errorf("%w: %s (%d)", calendar.ErrInvalidRecurrence, config.ErrIntervalNegative, every)
	}
	end, err := cal.ResolveDate(until)
	if err != nil {
		return calendar.Recurrence{}, fmt.Errorf("%w: %w", calendar.ErrInvalidRecurrence, err)
	}
	return calendar.Recurrence{Interval: every, Frequency: freq, Until: end}, nil
}

func (a *App) doneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "done <calendar> <date> <n>",
		Short: "Mark task number n of a date as completed",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.mutateTask(args, (*calendar.Calendar).CompleteTask, config.TKeyTaskCompleted)
		},
	}
}

func (a *App) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <calendar> <date> <n>",
		Short: "Delete task number n of a date",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.mutateTask(args, (*calendar.Calendar).DeleteTask, config.TKeyTaskDeleted)
		},
	}
}

func (a *App) mutateTask(args []string, op func(*calendar.Calendar, string, int) error, doneKey string) error {
	index, err := parseIndex(args[2])
	if err != nil {
		return err
	}
	cal, err := a.open(args[0])
	if err != nil {
		return err
	}
	if err := op(cal, args[1], index); err != nil {
		return err
	}
	if err := cal.Save(); err != nil {
		return err
	}
	a.say(doneKey, nil)
	return nil
}

func (a *App) recurringCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recurring <calendar>",
		Short: "List recurring tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cal, err := a.open(args[0])
			if err != nil {
				return err
			}
			a.printRecurrences(cal)
			return nil
		},
	}
}

func (a *App) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <calendar>",
		Short: "Write the calendar as iCalendar (VTODO) data",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cal, err := a.open(args[0])
			if err != nil {
				return err
			}
			data, err := ics.Export(cal, a.clock.Now())
			if err != nil {
				return err
			}
			if output == "" {
				_, err := a.out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, config.FilePermUserRW); err != nil {
				return err
			}
			a.say(config.TKeyExported, map[string]any{"Path": output})
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, config.FlagOutput, "o", "", config.FlagDescOutput)
	return cmd
}

func (a *App) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <calendar> <file.yaml>",
		Short: "Add the tasks listed in a YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			cal, err := a.open(args[0])
			if err != nil {
				return err
			}
			n, err := importer.Import(cal, data)
			if err != nil {
				return err
			}
			if err := cal.Save(); err != nil {
				return err
			}
			a.say(config.TKeyImported, map[string]any{"Count": n})
			return nil
		},
	}
}

func (a *App) tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the feed token of a calendar",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <calendar> [token]",
			Short: "Store a feed token (a random one when omitted)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(_ *cobra.Command, args []string) error {
				name := args[0]
				if err := a.requireCalendar(name); err != nil {
					return err
				}
				token := ""
				if len(args) == 2 {
					token = args[1]
				} else {
					generated, err := secret.Generate()
					if err != nil {
						return err
					}
					token = generated
				}
				if err := a.vault.SetToken(name, token); err != nil {
					return err
				}
				a.say(config.TKeyTokenSet, map[string]any{"Name": name, "Token": token})
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear <calendar>",
			Short: "Remove the feed token",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if err := a.vault.ClearToken(args[0]); err != nil {
					return err
				}
				a.say(config.TKeyTokenCleared, map[string]any{"Name": args[0]})
				return nil
			},
		},
	)
	return cmd
}

func (a *App) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runShell()
		},
	}
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Needs no settings or store.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.out, config.MsgVersionOutput,
				config.AppName,
				config.Version,
				runtime.GOOS,
				runtime.GOARCH,
			)
		},
	}
}

// createCalendar creates name, replacing an existing calendar only when force is set.
func (a *App) createCalendar(name string, force bool) error {
	exists, err := a.store.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		if !force {
			return fmt.Errorf("%w: %s", store.ErrCalendarExists, name)
		}
		if err := a.store.Delete(name); err != nil {
			return err
		}
	}
	if err := a.store.Create(name); err != nil {
		return err
	}
	logCalendarEvent(config.MsgCalendarCreated, name)
	a.say(config.TKeyCalendarCreated, map[string]any{"Name": name})
	return nil
}

func (a *App) deleteCalendar(name string) error {
	if err := a.store.Delete(name); err != nil {
		return err
	}
	logCalendarEvent(config.MsgCalendarDeleted, name)
	a.say(config.TKeyCalendarDeleted, map[string]any{"Name": name})
	return nil
}

func (a *App) requireCalendar(name string) error {
	exists, err := a.store.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", store.ErrCalendarNotFound, name)
	}
	return nil
}

// prompter reads answers line by line from the app's input.
type prompter struct {
	app     *App
	scanner *bufio.Scanner
}

func newPrompter(a *App) *prompter {
	return &prompter{app: a, scanner: bufio.NewScanner(a.in)}
}

// ask prints the translated prompt and returns the trimmed answer. ok is false
// once the input is exhausted.
func (p *prompter) ask(key string, data map[string]any) (answer string, ok bool) {
	fmt.Fprint(p.app.out, p.app.tr.Msg(key, data))
	if !p.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.scanner.Text()), true
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes", "o", "oui":
		return true
	}
	return false
}

func isNo(answer string) bool {
	switch strings.ToLower(answer) {
	case "n", "no", "non":
		return true
	}
	return false
}
