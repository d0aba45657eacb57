// Package pagination parses page/limit query parameters and builds the
// metadata returned with paged listings.
package pagination

import "healthquiz/pkg/config"

// Config bounds page/limit values.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns page=1, limit=50, max=200.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 50,
		MaxLimit:     200,
	}
}

// LoadFromEnv reads PAGINATION_DEFAULT_LIMIT and PAGINATION_MAX_LIMIT over
// DefaultConfig.
func LoadFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		DefaultPage:  def.DefaultPage,
		DefaultLimit: config.GetEnvInt("PAGINATION_DEFAULT_LIMIT", def.DefaultLimit),
		MaxLimit:     config.GetEnvInt("PAGINATION_MAX_LIMIT", def.MaxLimit),
	}
	if cfg.DefaultLimit < 1 || cfg.MaxLimit < cfg.DefaultLimit {
		return def
	}
	return cfg
}
