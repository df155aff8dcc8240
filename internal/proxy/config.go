// Package proxy forwards authenticated requests to configured third-party
// HTTP APIs.
package proxy

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config lists the upstream APIs reachable through the proxy.
type Config struct {
	Upstreams []UpstreamConfig `yaml:"upstreams"`
}

// UpstreamConfig describes one upstream API.
type UpstreamConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// Capability, when set, must be held by the caller.
	Capability string `yaml:"capability"`
	// Headers are added to every forwarded request. Values may reference
	// environment variables as ${NAME}.
	Headers   map[string]string `yaml:"headers"`
	Timeout   time.Duration     `yaml:"timeout"`
	RateLimit RateLimitConfig   `yaml:"rateLimit"`
}

// RateLimitConfig bounds the request rate to one upstream. Zero RPS disables
// the limit.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LoadConfig reads the upstream configuration file. An empty path yields a
// configuration with no upstreams.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading proxy config: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig decodes and validates a YAML upstream configuration.
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing proxy config: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Upstreams))
	for i := range cfg.Upstreams {
		u := &cfg.Upstreams[i]
		if err := u.validate(); err != nil {
			return Config{}, fmt.Errorf("upstream %d: %w", i, err)
		}
		if seen[u.Name] {
			return Config{}, fmt.Errorf("duplicate upstream %q", u.Name)
		}
		seen[u.Name] = true

		for k, v := range u.Headers {
			u.Headers[k] = os.ExpandEnv(v)
		}
	}
	return cfg, nil
}

func (u UpstreamConfig) validate() error {
	if u.Name == "" {
		return errors.New("name is required")
	}
	parsed, err := url.Parse(u.URL)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", u.Name, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%s: url must be an absolute http(s) URL", u.Name)
	}
	if u.Timeout < 0 {
		return fmt.Errorf("%s: timeout must not be negative", u.Name)
	}
	if u.RateLimit.RPS < 0 || u.RateLimit.Burst < 0 {
		return fmt.Errorf("%s: rate limit must not be negative", u.Name)
	}
	return nil
}
