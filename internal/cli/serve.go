package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-agenda/internal/calendar"
	"github.com/tartampluch/go-agenda/internal/config"
	"github.com/tartampluch/go-agenda/internal/ics"
	"github.com/tartampluch/go-agenda/internal/server"
	"github.com/tartampluch/go-agenda/internal/store"
)

func (a *App) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <calendar>",
		Short: "Publish the calendar as a subscribable iCalendar feed on localhost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), args[0], a.settings.ServerPort)
		},
	}
	cmd.Flags().String(config.FlagPort, "", config.FlagDescPort)
	return cmd
}

// serve blocks until ctx is cancelled. The feed is rebuilt whenever the store
// reports a change to the calendar.
func (a *App) serve(ctx context.Context, name, port string) error {
	if err := a.requireCalendar(name); err != nil {
		return err
	}

	token, err := a.vault.Token(name)
	if err != nil {
		return err
	}

	srv := server.NewCalendarServer(name, port)
	srv.Token = token

	refresh := func() error {
		cal, _, err := calendar.Open(a.store, name, a.clock)
		if err != nil {
			return err
		}
		data, err := ics.Export(cal, a.clock.Now())
		if err != nil {
			return err
		}
		srv.Update(data)
		return nil
	}
	if err := refresh(); err != nil {
		return err
	}

	if w, ok := a.store.(store.Watcher); ok {
		go func() {
			err := w.Watch(ctx, name, func() {
				slog.Info(config.MsgWatchReload,
					config.LogKeyComponent, config.CompCLI,
					config.LogKeyCalendar, name,
				)
				if err := refresh(); err != nil {
					slog.Error(config.ErrFeedRefresh,
						config.LogKeyComponent, config.CompCLI,
						config.LogKeyCalendar, name,
						config.LogKeyError, err,
					)
				}
			})
			if err != nil {
				slog.Error(config.ErrWatch,
					config.LogKeyComponent, config.CompCLI,
					config.LogKeyError, err,
				)
			}
		}()
	}

	a.say(config.TKeyServing, map[string]any{
		"Name": name,
		"Addr": "http://" + config.LocalhostBindAddr + config.AddrSeparator + port + "/" + name + ".ics",
	})
	return srv.Start(ctx)
}
