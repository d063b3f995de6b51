package config

import (
	"fmt"

	"github.com/ovms-community/ovms-bridge/core/topic"
)

// TopicsConfig selects the topic naming scheme the OVMS module publishes
// under.
type TopicsConfig struct {
	// Prefix is the first topic level, "ovms" unless reconfigured on the
	// module.
	Prefix string `json:"prefix"`
	// Structure names a built-in layout or "custom".
	Structure string `json:"structure"`
	// CustomStructure is the placeholder template, required iff Structure
	// is "custom".
	CustomStructure string `json:"custom_structure"`
	// MQTTUsername fills the {mqtt_username} placeholder when the layout
	// uses one.
	MQTTUsername string `json:"mqtt_username"`
	// VehicleID may be left empty and discovered during setup.
	VehicleID string `json:"vehicle_id"`
}

// SetDefaults applies sane defaults.
func (c *TopicsConfig) SetDefaults() {
	if c.Prefix == "" {
		c.Prefix = "ovms"
	}
	if c.Structure == "" {
		c.Structure = topic.DefaultStructure.String()
	}
}

// Validate compiles the pattern once to reject bad templates at load time.
func (c TopicsConfig) Validate() error {
	if _, err := c.Pattern(); err != nil {
		return err
	}
	if c.VehicleID != "" && !topic.ValidVehicleID(c.VehicleID) {
		return fmt.Errorf("invalid vehicle_id %q", c.VehicleID)
	}
	return nil
}

// Pattern compiles the configured scheme into a resolver pattern.
func (c TopicsConfig) Pattern() (*topic.Pattern, error) {
	s, err := topic.ParseStructure(c.Structure)
	if err != nil {
		return nil, err
	}
	return topic.Build(c.Prefix, s, c.CustomStructure, c.MQTTUsername)
}
