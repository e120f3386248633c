// Package config assembles runtime settings for the gophnotes CLI from
// defaults, an optional JSON file, and command-line flags.
package config

// Config holds runtime settings for the gophnotes CLI.
//
// Fields:
//   - DatabaseDSN: path (or sqlite DSN) of the local note store.
type Config struct {
	DatabaseDSN string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "gophnotes.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file is given) and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
