package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds settings for the backend REST connection.
type APIConfig struct {
	// BaseURL is the root URL of the InsureTM backend API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// Theme is either "light" or "dark". Anything else falls back
	// to dark at load time.
	Theme string `mapstructure:"theme" yaml:"theme"`

	// PollIntervalSec is how often (in seconds) the notification
	// feed refreshes while a user is logged in.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// StorageConfig holds paths for local state.
type StorageConfig struct {
	// DBPath is the sqlite cache location. Empty means the default
	// under the config directory.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// LogPath is where the application log file is written.
	LogPath string `mapstructure:"log_path" yaml:"log_path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/insuretm/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "insuretm", "config.yaml")
}

// defaultStateDir returns the directory for local state files (log,
// sqlite cache), next to the default config file.
func defaultStateDir() string {
	return filepath.Dir(DefaultConfigPath())
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
		},
		Display: DisplayConfig{
			Theme:           "dark",
			PollIntervalSec: 30,
		},
		Storage: StorageConfig{
			DBPath:  filepath.Join(defaultStateDir(), "cache.db"),
			LogPath: filepath.Join(defaultStateDir(), "insuretm.log"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("display.theme", "dark")
	v.SetDefault("display.poll_interval_sec", 30)
	v.SetDefault("storage.db_path", filepath.Join(defaultStateDir(), "cache.db"))
	v.SetDefault("storage.log_path", filepath.Join(defaultStateDir(), "insuretm.log"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.PollIntervalSec <= 0 {
		cfg.Display.PollIntervalSec = 30
	}
	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = filepath.Join(defaultStateDir(), "cache.db")
	}
	if cfg.Storage.LogPath == "" {
		cfg.Storage.LogPath = filepath.Join(defaultStateDir(), "insuretm.log")
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("display", cfg.Display)
	v.Set("storage", cfg.Storage)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
