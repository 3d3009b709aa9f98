// config.go: settings struct for the RetinaScan client and functions to load them.
package conf

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

const appDirName = "retinascan"

// ServerSettings points the client at the screening backend
type ServerSettings struct {
	URL string // base URL, e.g. http://localhost:5000
}

// HTTPSettings controls the HTTP transport
type HTTPSettings struct {
	Timeout   time.Duration // per-request timeout, 0 disables
	UserAgent string
}

// NotificationSettings controls toast lifetime
type NotificationSettings struct {
	Duration time.Duration // visible time before fading
	Fade     time.Duration // fade time before removal
}

// DisplaySettings controls localized rendering
type DisplaySettings struct {
	Locale   string // BCP 47 tag used for number formatting
	Timezone string // "Local", "UTC" or IANA name for history timestamps
}

// LoggingSettings controls the central logger
type LoggingSettings struct {
	Level string
	File  string
}

// TelemetrySettings controls Sentry error reporting
type TelemetrySettings struct {
	Enabled bool
	DSN     string
}

// DevServerSettings configures the stand-in backend
type DevServerSettings struct {
	Listen     string
	SessionKey string
	Database   string // sqlite file path, in-memory when empty
}

// Settings contains all configuration options for the client
type Settings struct {
	Debug        bool
	Server       ServerSettings
	HTTP         HTTPSettings
	Notification NotificationSettings
	Display      DisplaySettings
	Logging      LoggingSettings
	Telemetry    TelemetrySettings
	DevServer    DevServerSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into the global
// viper instance and returns the validated settings.
func Load() (*Settings, error) {
	paths, err := GetDefaultConfigPaths()
	if err != nil {
		return nil, err
	}

	settings, err := load(viper.GetViper(), paths)
	if err != nil {
		return nil, err
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()
	return settings, nil
}

// load initializes v with defaults, the first config file found in paths (or the
// embedded defaults) and environment bindings, then unmarshals and validates.
func load(v *viper.Viper, paths []string) (*Settings, error) {
	setDefaultConfig(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.New(fmt.Errorf("error reading config file: %w", err)).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
		if err := v.ReadConfig(bytes.NewReader(defaultConfig())); err != nil {
			return nil, fmt.Errorf("error reading embedded config: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		GetLogger().Warn("environment configuration ignored", logger.Error(err))
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return settings, nil
}

// defaultConfig returns the embedded config.yaml
func defaultConfig() []byte {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded config.yaml missing: %v", err))
	}
	return data
}

// GetSettings returns the settings from the last successful Load
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the directories searched for config.yaml, most specific first
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}

	if runtime.GOOS == "windows" {
		return []string{
			".",
			filepath.Join(homeDir, "AppData", "Roaming", appDirName),
		}, nil
	}

	return []string{
		".",
		filepath.Join(homeDir, ".config", appDirName),
		filepath.Join("/etc", appDirName),
	}, nil
}
