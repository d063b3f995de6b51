package config

import (
	"time"

	"github.com/ovms-community/ovms-bridge/core/discovery"
)

// DiscoveryConfig bounds the setup-time sampling window.
type DiscoveryConfig struct {
	WindowSeconds       int `json:"window_seconds"`
	SamplesPerCandidate int `json:"samples_per_candidate"`
}

// SetDefaults applies sane defaults.
func (c *DiscoveryConfig) SetDefaults() {
	if c.WindowSeconds <= 0 {
		c.WindowSeconds = 5
	}
	if c.SamplesPerCandidate <= 0 {
		c.SamplesPerCandidate = 3
	}
}

// EngineConfig converts to the discovery engine's config.
func (c DiscoveryConfig) EngineConfig(qos byte) discovery.Config {
	return discovery.Config{
		Window:              time.Duration(c.WindowSeconds) * time.Second,
		QoS:                 qos,
		SamplesPerCandidate: c.SamplesPerCandidate,
	}
}
