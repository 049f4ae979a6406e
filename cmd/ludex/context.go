package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ludex/internal/catalog"
	"ludex/internal/config"
	"ludex/internal/logging"
	"ludex/internal/provider"
	"ludex/internal/romid"
	"ludex/internal/scanner"
	"ludex/internal/tools"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		OutputPaths: []string{
			filepath.Join(cfg.Paths.LogDir, "ludex.log"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	return logger, nil
}

func (c *commandContext) openStore(cfg *config.Config) (*catalog.Store, error) {
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, nil
}

func (c *commandContext) toolTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Tools.TimeoutSeconds) * time.Second
}

// newRegistry builds the provider registry, wiring CHD prefix extraction
// through chdman so compressed disc images can still be fingerprinted.
func (c *commandContext) newRegistry(cfg *config.Config) *provider.Registry {
	chdman := tools.NewChdman(cfg.ChdmanBinary(), tools.WithTimeout(c.toolTimeout(cfg)))
	extractors := map[string]romid.Extractor{}
	if chdman.Available() {
		extractors[".chd"] = chdman.ExtractPrefix
	}
	return provider.NewRegistry(romid.NewFileSource(extractors))
}

func (c *commandContext) verifiers(cfg *config.Config) []tools.Verifier {
	timeout := tools.WithTimeout(c.toolTimeout(cfg))
	return []tools.Verifier{
		tools.NewChdman(cfg.ChdmanBinary(), timeout),
		tools.NewDolphinTool(cfg.DolphinToolBinary(), timeout),
	}
}

func (c *commandContext) newScanner(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *scanner.Scanner {
	return scanner.New(store, c.newRegistry(cfg), cfg.Paths.DatsDir, c.verifiers(cfg), logger)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
