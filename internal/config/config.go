package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains data directory and file placement.
type Paths struct {
	DataDir       string `toml:"data_dir"`
	DatabaseFile  string `toml:"database_file"`
	LogDir        string `toml:"log_dir"`
	QuarantineDir string `toml:"quarantine_dir"`
}

// Storage contains SQLite durability and checkpoint tuning.
type Storage struct {
	Synchronous               string `toml:"synchronous"`
	BusyTimeoutMS             int    `toml:"busy_timeout_ms"`
	CacheSizeKiB              int    `toml:"cache_size_kib"`
	MmapSizeBytes             int64  `toml:"mmap_size_bytes"`
	PageSize                  int    `toml:"page_size"`
	WALAutocheckpointPages    int    `toml:"wal_autocheckpoint_pages"`
	CheckpointIntervalSeconds int    `toml:"checkpoint_interval_seconds"`
}

// Lock contains cross-process lock file settings.
type Lock struct {
	FileName                 string `toml:"file_name"`
	HeartbeatIntervalSeconds int    `toml:"heartbeat_interval_seconds"`
	StaleThresholdSeconds    int    `toml:"stale_threshold_seconds"`
}

// Sync contains cloud-sync conflict handling settings.
type Sync struct {
	AutoCleanup    bool     `toml:"auto_cleanup"`
	IgnorePatterns []string `toml:"ignore_patterns"`
}

// Inventory contains film item listing defaults.
type Inventory struct {
	DefaultListLimit int `toml:"default_list_limit"`
	MaxListLimit     int `toml:"max_list_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for filmtrack.
//
// Configuration sections by subsystem:
//   - Paths: data directory, database file name, logs, quarantine
//   - Storage: SQLite pragmas and checkpoint cadence
//   - Lock: lock file name, heartbeat and staleness windows
//   - Sync: startup conflict-copy cleanup
//   - Inventory: list pagination defaults
//   - Logging: log format, level, and rotation
type Config struct {
	Paths     Paths     `toml:"paths"`
	Storage   Storage   `toml:"storage"`
	Lock      Lock      `toml:"lock"`
	Sync      Sync      `toml:"sync"`
	Inventory Inventory `toml:"inventory"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/filmtrack/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("filmtrack.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories. The quarantine
// directory is created lazily by the sync resolver when it first moves a file.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the absolute path of the canonical data file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, c.Paths.DatabaseFile)
}

// LockPath returns the absolute path of the process lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, c.Lock.FileName)
}

// LogFilePath returns the rotating log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "filmtrack.log")
}

// CheckpointInterval returns the passive checkpoint cadence.
func (c *Config) CheckpointInterval() time.Duration {
	return time.Duration(c.Storage.CheckpointIntervalSeconds) * time.Second
}

// HeartbeatInterval returns how often the lock file mtime is refreshed.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Lock.HeartbeatIntervalSeconds) * time.Second
}

// StaleThreshold returns the lock age beyond which an owner is presumed dead.
func (c *Config) StaleThreshold() time.Duration {
	return time.Duration(c.Lock.StaleThresholdSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
