package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var validSynchronous = map[string]struct{}{
	"OFF":    {},
	"NORMAL": {},
	"FULL":   {},
	"EXTRA":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLock(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateInventory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.ContainsAny(c.Paths.DatabaseFile, `/\`) {
		return errors.New("paths.database_file must be a bare file name inside paths.data_dir")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if _, ok := validSynchronous[c.Storage.Synchronous]; !ok {
		return fmt.Errorf("storage.synchronous must be one of OFF, NORMAL, FULL, EXTRA (got %q)", c.Storage.Synchronous)
	}
	if err := ensurePositiveMap(map[string]int{
		"storage.busy_timeout_ms":             c.Storage.BusyTimeoutMS,
		"storage.page_size":                   c.Storage.PageSize,
		"storage.checkpoint_interval_seconds": c.Storage.CheckpointIntervalSeconds,
	}); err != nil {
		return err
	}
	if c.Storage.PageSize&(c.Storage.PageSize-1) != 0 {
		return errors.New("storage.page_size must be a power of two")
	}
	if c.Storage.MmapSizeBytes < 0 {
		return errors.New("storage.mmap_size_bytes must not be negative")
	}
	if c.Storage.WALAutocheckpointPages < 0 {
		return errors.New("storage.wal_autocheckpoint_pages must not be negative")
	}
	return nil
}

func (c *Config) validateLock() error {
	if c.Lock.FileName == c.Paths.DatabaseFile {
		return errors.New("lock.file_name must differ from paths.database_file")
	}
	if strings.ContainsAny(c.Lock.FileName, `/\`) {
		return errors.New("lock.file_name must be a bare file name inside paths.data_dir")
	}
	if c.Lock.HeartbeatIntervalSeconds <= 0 {
		return errors.New("lock.heartbeat_interval_seconds must be positive")
	}
	if c.Lock.StaleThresholdSeconds <= 0 {
		return errors.New("lock.stale_threshold_seconds must be positive")
	}
	if c.Lock.StaleThresholdSeconds <= c.Lock.HeartbeatIntervalSeconds {
		return errors.New("lock.stale_threshold_seconds must be greater than lock.heartbeat_interval_seconds")
	}
	return nil
}

func (c *Config) validateSync() error {
	for _, pattern := range c.Sync.IgnorePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("sync.ignore_patterns: invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func (c *Config) validateInventory() error {
	if c.Inventory.DefaultListLimit > c.Inventory.MaxListLimit {
		return errors.New("inventory.default_list_limit must not exceed inventory.max_list_limit")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB <= 0 {
		return errors.New("logging.max_size_mb must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
