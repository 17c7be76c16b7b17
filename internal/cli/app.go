// Package cli is the terminal front end: one cobra command per calendar operation
// plus the interactive numbered-menu shell.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tartampluch/go-agenda/internal/calendar"
	"github.com/tartampluch/go-agenda/internal/config"
	"github.com/tartampluch/go-agenda/internal/i18n"
	"github.com/tartampluch/go-agenda/internal/secret"
	"github.com/tartampluch/go-agenda/internal/store"
)

// Options injects the process environment. Zero fields fall back to the real thing.
type Options struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
	Clock  calendar.Clock
	Vault  *secret.Vault
	// Logging installs the process logger once settings are known.
	Logging func(debug bool) io.Closer
}

// App holds what every command needs once settings are resolved.
type App struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	clock  calendar.Clock
	vault  *secret.Vault
	styles styles

	logging   func(debug bool) io.Closer
	logCloser io.Closer

	viper      *viper.Viper
	configFile string
	settings   *config.Settings
	store      store.Store
	tr         *i18n.Translator
}

var errInvalidNumber = errors.New(config.TKeyErrInvalidNumber)

// errorKeys maps domain failures to user messages, most specific first.
var errorKeys = []struct {
	err error
	key string
}{
	{calendar.ErrOutOfRange, config.TKeyErrOutOfRange},
	{calendar.ErrNoSuchDate, config.TKeyErrNoSuchDate},
	{calendar.ErrInvalidRecurrence, config.TKeyErrInvalidRecurrence},
	{calendar.ErrInvalidDate, config.TKeyErrInvalidDate},
	{calendar.ErrEmptyDescription, config.TKeyErrEmptyDescription},
	{calendar.ErrStorageFault, config.TKeyErrStorage},
	{store.ErrCalendarExists, config.TKeyErrCalendarExists},
	{store.ErrCalendarNotFound, config.TKeyErrCalendarNotFound},
	{store.ErrInvalidName, config.TKeyErrInvalidName},
	{errInvalidNumber, config.TKeyErrInvalidNumber},
}

func newApp(opts Options) *App {
	a := &App{
		in:      opts.In,
		out:     opts.Out,
		errOut:  opts.ErrOut,
		clock:   opts.Clock,
		vault:   opts.Vault,
		logging: opts.Logging,
		viper:   viper.New(),
	}
	if a.in == nil {
		a.in = os.Stdin
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	if a.errOut == nil {
		a.errOut = os.Stderr
	}
	if a.clock == nil {
		a.clock = calendar.RealClock{}
	}
	if a.vault == nil {
		a.vault = secret.NewVault()
	}
	a.styles = newStyles(a.out)

	// English until settings pick a language, so early failures are still readable.
	if tr, err := i18n.New(config.DefaultLanguage); err == nil {
		a.tr = tr
	}
	return a
}

// Run executes the command line and returns the process exit code. Failures are
// printed as localized messages.
func Run(ctx context.Context, args []string, opts Options) int {
	a := newApp(opts)
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompCLI,
			config.LogKeyError, err,
		)
		fmt.Fprintln(a.errOut, a.styles.err.Render(a.describe(err)))
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           config.CLIName,
		Short:         "Plan dated tasks in named calendars",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, config.FlagConfig, "", config.FlagDescConfig)
	flags.String(config.FlagDataDir, "", config.FlagDescDataDir)
	flags.String(config.FlagBackend, "", config.FlagDescBackend)
	flags.String(config.FlagLang, "", config.FlagDescLang)
	flags.Bool(config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(
		a.calendarsCommand(),
		a.createCommand(),
		a.deleteCommand(),
		a.weekCommand(),
		a.allCommand(),
		a.addCommand(),
		a.doneCommand(),
		a.removeCommand(),
		a.recurringCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.serveCommand(),
		a.tokenCommand(),
		a.shellCommand(),
		a.versionCommand(),
	)
	return root
}

// setup resolves settings, then opens the logger, the translator and the store.
func (a *App) setup(cmd *cobra.Command) error {
	bindings := map[string]string{
		config.SettingDataDir:    config.FlagDataDir,
		config.SettingBackend:    config.FlagBackend,
		config.SettingLanguage:   config.FlagLang,
		config.SettingDebug:      config.FlagDebug,
		config.SettingServerPort: config.FlagPort,
	}
	for key, name := range bindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	settings, err := config.LoadSettings(a.viper, a.configFile)
	if err != nil {
		return err
	}
	a.settings = settings

	if a.logging != nil {
		a.logCloser = a.logging(settings.Debug)
	}

	tr, err := i18n.New(settings.Language)
	if err != nil {
		return err
	}
	a.tr = tr

	st, err := store.Open(settings.Backend, settings.DataDir)
	if err != nil {
		return err
	}
	a.store = st

	slog.Debug(config.MsgAppStarting,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyBackend, settings.Backend,
		config.LogKeyPath, settings.DataDir,
		config.LogKeyLang, a.tr.Lang(),
	)
	return nil
}

func (a *App) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn(config.ErrStorageFault,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyError, err,
			)
		}
		a.store = nil
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// describe turns an error into the message shown to the user.
func (a *App) describe(err error) string {
	for _, e := range errorKeys {
		if errors.Is(err, e.err) {
			return a.tr.Msg(e.key, nil)
		}
	}
	return a.tr.Msg(config.TKeyErrGeneric, map[string]any{"Error": err.Error()})
}

// open loads a calendar that must already exist.
func (a *App) open(name string) (*calendar.Calendar, error) {
	cal, _, err := calendar.Open(a.store, name, a.clock)
	return cal, err
}

func parseIndex(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidNumber, value)
	}
	return n, nil
}

func (a *App) say(key string, data map[string]any) {
	fmt.Fprintln(a.out, a.styles.ok.Render(a.tr.Msg(key, data)))
}

func (a *App) println(text string) {
	fmt.Fprintln(a.out, text)
}
