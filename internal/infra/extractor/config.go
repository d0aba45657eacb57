package extractor

import (
	"fmt"
	"time"

	"healthquiz/pkg/config"
)

// BrowserUserAgent is sent with every page request. Several publishers
// reject unknown client identifiers outright.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config controls page fetching.
type Config struct {
	// Timeout bounds a single fetch including redirects and body read.
	Timeout time.Duration

	// MaxBodySize caps the bytes read from a response.
	MaxBodySize int64

	// MaxRedirects caps followed redirects; every hop is re-validated.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs that resolve to loopback, private or link-local addresses.
	DenyPrivateIPs bool

	// ReadabilityFallback uses Mozilla Readability, instead of the whole body,
	// when no content container matched.
	ReadabilityFallback bool

	UserAgent string
}

// DefaultConfig returns the production defaults: 30s timeout, 10MB cap, 5 redirects.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      BrowserUserAgent,
	}
}

// Validate rejects settings that would disable the safety limits.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	minBody, maxBody := int64(1024), int64(100*1024*1024)
	if c.MaxBodySize < minBody || c.MaxBodySize > maxBody {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBody, maxBody, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadConfigFromEnv reads EXTRACTOR_* variables over DefaultConfig.
// An invalid combination falls back to the defaults as a whole.
func LoadConfigFromEnv() (Config, error) {
	def := DefaultConfig()
	cfg := Config{
		Timeout:             config.GetEnvDuration("EXTRACTOR_TIMEOUT", def.Timeout),
		MaxBodySize:         int64(config.GetEnvInt("EXTRACTOR_MAX_BODY_SIZE", int(def.MaxBodySize))),
		MaxRedirects:        config.GetEnvInt("EXTRACTOR_MAX_REDIRECTS", def.MaxRedirects),
		DenyPrivateIPs:      config.GetEnvBool("EXTRACTOR_DENY_PRIVATE_IPS", def.DenyPrivateIPs),
		ReadabilityFallback: config.GetEnvBool("EXTRACTOR_READABILITY_FALLBACK", false),
		UserAgent:           config.GetEnvString("EXTRACTOR_USER_AGENT", def.UserAgent),
	}
	if err := cfg.Validate(); err != nil {
		return def, err
	}
	return cfg, nil
}
