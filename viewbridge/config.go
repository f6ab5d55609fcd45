package viewbridge

import (
	"github.com/hazyhaar/overlay/viewbridge/internal/builder"
	"github.com/hazyhaar/overlay/viewbridge/internal/config"
	"github.com/hazyhaar/overlay/viewbridge/internal/hook"
	"github.com/hazyhaar/overlay/viewbridge/internal/pinhole"
	"github.com/hazyhaar/overlay/viewbridge/internal/throttle"
)

// Config is the top-level viewbridge configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// PageConfig defines the page to attach to.
type PageConfig = config.PageConfig

// SinkConfig defines an output backend.
type SinkConfig = config.SinkConfig

// Keys are the reserved prop-bag keys shared with the rendering layer.
type Keys = builder.Keys

// ThrottleConfig controls recompute coalescing. A zero Window recomputes on
// every notification.
type ThrottleConfig = throttle.Config

// Hook is the introspection capability the bridge reads the tree through.
type Hook = hook.Hook

// Element is an on-screen host element.
type Element = hook.Element

// Surface renders the pinhole overlay segments.
type Surface = pinhole.Surface

// ErrNoHook is reported by a Hook when the page exposes no introspection hook.
var ErrNoHook = hook.ErrNoHook

// DefaultKeys returns the default reserved keys.
func DefaultKeys() Keys {
	return builder.DefaultKeys()
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// ParseConfig decodes YAML configuration and applies defaults. Empty input
// yields the defaults.
func ParseConfig(data []byte) (*Config, error) {
	return config.Parse(data)
}

// KeysFromConfig converts the configured key overrides. Empty fields keep
// their defaults.
func KeysFromConfig(c *Config) Keys {
	return Keys{
		NodeID:   c.Keys.NodeID,
		SlotName: c.Keys.SlotName,
		SlotType: c.Keys.SlotType,
		ParentID: c.Keys.ParentID,
	}
}

// ThrottleFromConfig converts the configured throttle.
func ThrottleFromConfig(c *Config) ThrottleConfig {
	return ThrottleConfig{Window: c.Throttle.Window, MaxBurst: c.Throttle.MaxBurst}
}
