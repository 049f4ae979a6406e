package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.DatsDir, err = expandPath(c.Paths.DatsDir); err != nil {
		return fmt.Errorf("paths.dats_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = defaultDatabasePath
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	if c.Scan.Workers < 0 {
		c.Scan.Workers = 0
	}
	if c.Scan.QueueDepth <= 0 {
		c.Scan.QueueDepth = defaultQueueDepth
	}
}

func (c *Config) normalizeTools() {
	c.Tools.Chdman = strings.TrimSpace(c.Tools.Chdman)
	c.Tools.DolphinTool = strings.TrimSpace(c.Tools.DolphinTool)
	if c.Tools.TimeoutSeconds <= 0 {
		c.Tools.TimeoutSeconds = defaultToolTimeoutSec
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}
