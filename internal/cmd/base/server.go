package base

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/dropinblog/internal/config"
	"github.com/hashicorp-forge/dropinblog/internal/server"
)

// ConfigEnvVar is the environment fallback for every -config flag.
const ConfigEnvVar = "DROPINBLOG_CONFIG"

// LoadConfig reads the config file at path, or returns the defaults when
// path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// OpenServer loads the config, applies its log level and opens storage.
// With connect set it also builds the API client and trigger managers.
func (c *Command) OpenServer(configPath string, connect bool) (*server.Server, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if lvl := hclog.LevelFromString(cfg.LogLevel); lvl != hclog.NoLevel {
		c.Log.SetLevel(lvl)
	}

	srv, err := server.Open(c.Context, cfg, c.Log, server.Options{Stdout: c.Stdout})
	if err != nil {
		return nil, fmt.Errorf("error opening state: %w", err)
	}

	if connect {
		if err := srv.Connect(c.Context); err != nil {
			srv.Close()
			return nil, fmt.Errorf("error connecting to DropInBlog: %w", err)
		}
	}
	return srv, nil
}
