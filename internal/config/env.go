package config

import "os"

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "TOMOSCAN_DISPLAY_CMD",
		apply: func(c *Config, v string) {
			c.Display.Command = v
		},
	},
	{
		envVar: "TOMOSCAN_SCREENS_DIR",
		apply: func(c *Config, v string) {
			c.Display.ScreensDir = v
		},
	},
	{
		envVar: "TOMOSCAN_RUNTIME",
		apply: func(c *Config, v string) {
			c.Runtime.Engine = v
		},
	},
	{
		envVar: "TOMOSCAN_HISTORY_PATH",
		apply: func(c *Config, v string) {
			c.History.Path = v
		},
	},
	{
		envVar: "TOMOSCAN_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.LogLevel = v
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
