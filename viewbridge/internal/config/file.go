// Package config handles viewbridge configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/overlay/horosafe"
)

// Config is the top-level viewbridge configuration.
type Config struct {
	Browser  BrowserConfig  `yaml:"browser"`
	Page     PageConfig     `yaml:"page"`
	Keys     KeysConfig     `yaml:"keys"`
	Throttle ThrottleConfig `yaml:"throttle"`
	HTTP     HTTPConfig     `yaml:"http"`
	Sinks    []SinkConfig   `yaml:"sinks"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string   `yaml:"remote"`  // DevTools WebSocket URL of an existing Chrome
	Stealth          string   `yaml:"stealth"` // headless | headful
	ResourceBlocking []string `yaml:"resource_blocking"`
	XvfbDisplay      string   `yaml:"xvfb_display"` // headful only; empty = use the real display
}

// PageConfig defines the page the bridge attaches to.
type PageConfig struct {
	URL         string        `yaml:"url"`
	Container   string        `yaml:"container"` // CSS selector of the root container element
	LoadTimeout time.Duration `yaml:"load_timeout"`
}

// KeysConfig overrides the reserved prop-bag keys.
type KeysConfig struct {
	NodeID   string `yaml:"node_id"`
	SlotName string `yaml:"slot_name"`
	SlotType string `yaml:"slot_type"`
	ParentID string `yaml:"parent_id"`
}

// ThrottleConfig controls recompute coalescing.
type ThrottleConfig struct {
	Window    time.Duration `yaml:"window"`
	MaxBurst  int           `yaml:"max_burst"`
	Immediate bool          `yaml:"immediate"` // disable coalescing entirely
}

// HTTPConfig controls the editor-facing HTTP API.
type HTTPConfig struct {
	Listen string `yaml:"listen"` // empty = no HTTP server
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook | websocket
	URL  string `yaml:"url"`  // for webhook
	// AllowPrivate lets a webhook target loopback or private addresses,
	// which is where a local editor usually listens.
	AllowPrivate bool `yaml:"allow_private"`
	// Retries and Backoff tune webhook delivery. Nil Retries keeps the sink
	// default; a zero Backoff too.
	Retries *int          `yaml:"retries"`
	Backoff time.Duration `yaml:"backoff"`
}

// Defaults.
const (
	DefaultContainer   = "#root"
	DefaultLoadTimeout = 30 * time.Second
	DefaultWindow      = 100 * time.Millisecond
)

// ErrNoURL is returned by Validate when no page URL is configured.
var ErrNoURL = errors.New("config: page.url is required")

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Page.Container == "" {
		c.Page.Container = DefaultContainer
	}
	if c.Page.LoadTimeout <= 0 {
		c.Page.LoadTimeout = DefaultLoadTimeout
	}
	if c.Throttle.Immediate {
		c.Throttle.Window = 0
	} else if c.Throttle.Window <= 0 {
		c.Throttle.Window = DefaultWindow
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Page.URL == "" {
		return ErrNoURL
	}
	if err := horosafe.ValidateURL(c.Page.URL, horosafe.URLPolicy{AllowPrivate: true}); err != nil {
		return fmt.Errorf("config: page.url: %w", err)
	}
	switch c.Browser.Stealth {
	case "headless", "headful":
	default:
		return fmt.Errorf("config: unknown browser.stealth %q", c.Browser.Stealth)
	}
	for _, s := range c.Sinks {
		switch s.Type {
		case "stdout", "websocket":
		case "webhook":
			if s.URL == "" {
				return fmt.Errorf("config: webhook sink needs a url")
			}
			if s.Retries != nil && *s.Retries < 0 {
				return fmt.Errorf("config: webhook sink: negative retries")
			}
			if s.Backoff < 0 {
				return fmt.Errorf("config: webhook sink: negative backoff")
			}
			policy := horosafe.URLPolicy{AllowPrivate: s.AllowPrivate}
			if err := horosafe.ValidateURL(s.URL, policy); err != nil {
				return fmt.Errorf("config: webhook sink: %w", err)
			}
		default:
			return fmt.Errorf("config: unknown sink type %q", s.Type)
		}
	}
	return nil
}
