package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizeLock()
	c.normalizeSync()
	c.normalizeInventory()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		if value, ok := os.LookupEnv("FILMTRACK_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.DataDir = strings.TrimSpace(value)
		} else {
			c.Paths.DataDir = defaultDataDir
		}
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	c.Paths.DatabaseFile = strings.TrimSpace(c.Paths.DatabaseFile)
	if c.Paths.DatabaseFile == "" {
		c.Paths.DatabaseFile = defaultDatabaseFile
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.QuarantineDir) == "" {
		c.Paths.QuarantineDir = filepath.Join(c.Paths.DataDir, defaultQuarantineDirName)
	}
	if c.Paths.QuarantineDir, err = expandPath(c.Paths.QuarantineDir); err != nil {
		return fmt.Errorf("paths.quarantine_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Synchronous = strings.ToUpper(strings.TrimSpace(c.Storage.Synchronous))
	if c.Storage.Synchronous == "" {
		c.Storage.Synchronous = defaultSynchronous
	}
	if c.Storage.BusyTimeoutMS <= 0 {
		c.Storage.BusyTimeoutMS = defaultBusyTimeoutMS
	}
	if c.Storage.PageSize <= 0 {
		c.Storage.PageSize = defaultPageSize
	}
}

func (c *Config) normalizeLock() {
	c.Lock.FileName = strings.TrimSpace(c.Lock.FileName)
	if c.Lock.FileName == "" {
		c.Lock.FileName = c.Paths.DatabaseFile + ".lock"
	}
}

func (c *Config) normalizeSync() {
	patterns := make([]string, 0, len(c.Sync.IgnorePatterns))
	for _, pattern := range c.Sync.IgnorePatterns {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	c.Sync.IgnorePatterns = patterns
}

func (c *Config) normalizeInventory() {
	if c.Inventory.DefaultListLimit <= 0 {
		c.Inventory.DefaultListLimit = defaultListLimit
	}
	if c.Inventory.MaxListLimit <= 0 {
		c.Inventory.MaxListLimit = defaultMaxListLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
