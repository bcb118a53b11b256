// Package conf loads and validates this compiler's runtime settings: a
// viper-backed Settings struct seeded from an embedded config.yaml and
// overridable by a user config file or environment variables.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings is the full set of runtime configuration for the compiler, its
// renderer invocation, and its ambient logging/telemetry/notification
// stack. See SPEC_FULL.md §4.10 for the field inventory.
type Settings struct {
	Debug bool

	Compile struct {
		DefaultSampleRate int
	}

	Render struct {
		Binary        string
		HeaderFormat  string
		SampleFormat  string
		OutputDir     string
		ServerOptions []string
	}

	Logging struct {
		Level    string
		FilePath string
	}

	Telemetry struct {
		Enabled bool
		DSN     string
	}

	Notify struct {
		MQTT struct {
			Enabled bool
			Broker  string
			Topic   string
		}
		Webhook struct {
			URLs []string
		}
	}

	Metrics struct {
		Enabled bool
		Listen  string
	}
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configuration from the embedded defaults, any config file on
// the standard search path, and the environment, and returns the resulting
// validated Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("unmarshaling config into struct: %w", err)
	}

	if err := Validate(settings); err != nil {
		return nil, err
	}

	settingsInstance = settings
	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("SCSESS")
	viper.AutomaticEnv()

	configPaths, err := DefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createDefaultConfig(configPaths)
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

func createDefaultConfig(configPaths []string) error {
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("reading embedded default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, defaultConfig, 0o644); err != nil {
		return fmt.Errorf("writing default config file: %w", err)
	}

	return viper.ReadInConfig()
}

// GetSettings returns the most recently loaded Settings, or nil if Load has
// not been called.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
