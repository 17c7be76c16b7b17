package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds the runtime configuration resolved from defaults, an optional
// configuration file, a .env file, AGENDA_* environment variables and CLI flags.
type Settings struct {
	DataDir    string `mapstructure:"data_dir"`
	Backend    string `mapstructure:"backend"`
	Language   string `mapstructure:"language"`
	ServerPort string `mapstructure:"server_port"`
	Debug      bool   `mapstructure:"debug"`
}

// LoadSettings resolves Settings through v. Flags must already be bound to v by the
// caller. An empty configFile searches the user config dir and the working directory;
// a missing file is only an error when configFile was given explicitly.
func LoadSettings(v *viper.Viper, configFile string) (*Settings, error) {
	if v == nil {
		v = viper.New()
	}

	// Best effort: a missing .env is the normal case.
	_ = godotenv.Load(EnvFileName)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(SettingDataDir, "")
	v.SetDefault(SettingBackend, DefaultBackend)
	v.SetDefault(SettingLanguage, DefaultLanguage)
	v.SetDefault(SettingServerPort, DefaultPort)
	v.SetDefault(SettingDebug, false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, DataDirName))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", ErrConfigRead, err)
		}
		slog.Debug(MsgConfigFileAbsent, LogKeyComponent, CompMain)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigDecode, err)
	}

	if s.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		s.DataDir = dir
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the values that cannot be defaulted silently.
func (s *Settings) Validate() error {
	if s.Backend != BackendFile && s.Backend != BackendSQLite {
		return fmt.Errorf("%s: %q", ErrBackendUnsupported, s.Backend)
	}
	if s.ServerPort == "" {
		return errors.New(ErrPortRequired)
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		s.Language = DefaultLanguage
	}
	return nil
}

// DefaultDataDir returns $XDG_DATA_HOME/go-agenda, or ~/.local/share/go-agenda.
func DefaultDataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%s: %w", ErrDataDir, err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, DataDirName), nil
}
