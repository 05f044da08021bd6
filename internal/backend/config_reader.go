package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const defaultTimeout = 10 * time.Second

// Config is the resolved TUI configuration.
type Config struct {
	API struct {
		URL     string
		Timeout time.Duration
	}
	Watch struct {
		// ItemsFile is the API server's items.json, watched for external changes.
		ItemsFile string
	}
	Log struct {
		File  string
		Level string
	}
	Theme struct {
		ColorsFile string
	}
}

// tomlConfig mirrors the TOML config structure.
type tomlConfig struct {
	API struct {
		URL     string `toml:"url"`
		Timeout string `toml:"timeout"`
	} `toml:"api"`
	Watch struct {
		ItemsFile string `toml:"items_file"`
	} `toml:"watch"`
	Log struct {
		File  string `toml:"file"`
		Level string `toml:"level"`
	} `toml:"log"`
	Theme struct {
		ColorsFile string `toml:"colors_file"`
	} `toml:"theme"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig(appName string) Config {
	var cfg Config
	cfg.API.URL = DefaultAPIURL
	cfg.API.Timeout = defaultTimeout
	cfg.Log.Level = "info"
	cfg.Log.File = defaultLogPath(appName)
	return cfg
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath(appName string) string {
	if p := os.Getenv("MERCARI_CONFIG"); p != "" {
		return p
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appName, "config.toml")
}

// ReadConfigFile reads the TOML config over the defaults. A missing file is
// not an error. MERCARI_API_URL overrides api.url.
func ReadConfigFile(path, appName string) (Config, error) {
	cfg := DefaultConfig(appName)

	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	default:
		if tc.API.URL != "" {
			cfg.API.URL = tc.API.URL
		}
		if tc.API.Timeout != "" {
			d, err := time.ParseDuration(tc.API.Timeout)
			if err != nil {
				return Config{}, fmt.Errorf("parse config %s: api.timeout: %w", path, err)
			}
			cfg.API.Timeout = d
		}
		cfg.Watch.ItemsFile = expandHome(tc.Watch.ItemsFile)
		if tc.Log.File != "" {
			cfg.Log.File = expandHome(tc.Log.File)
		}
		if tc.Log.Level != "" {
			cfg.Log.Level = tc.Log.Level
		}
		cfg.Theme.ColorsFile = expandHome(tc.Theme.ColorsFile)
	}

	if u := os.Getenv("MERCARI_API_URL"); u != "" {
		cfg.API.URL = u
	}
	return cfg, nil
}

func defaultLogPath(appName string) string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, _ := os.UserHomeDir()
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, appName, "tui.log")
}
