package config

import (
	"os"

	"go.uber.org/fx"
)

var Module = fx.Module("config", fx.Provide(
	// Function attempts to load the configuration from deploykeeper.yaml
	// if it exists. Returns nil if the file doesn't exist, allowing
	// commands that don't require config (like check, help, version) to
	// function properly.
	func() (*Config, error) {
		if _, err := os.Stat(DefaultFile); os.IsNotExist(err) {
			return nil, nil
		}

		return LoadConfigFile(DefaultFile)
	},
))
