package homeassistant

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ovms-community/ovms-bridge/core/entity"
	"github.com/ovms-community/ovms-bridge/infra/logger"
)

// Config controls discovery publishing.
type Config struct {
	Enabled         bool   `json:"enabled"`
	DiscoveryPrefix string `json:"discovery_prefix"`
	QoS             byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.DiscoveryPrefix == "" {
		c.DiscoveryPrefix = "homeassistant"
	}
}

// publishFunc matches the MQTT client publish signature.
type publishFunc interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Publisher announces entities to Home Assistant by publishing retained
// discovery configs. Each entity is announced at most once per process.
// Safe for concurrent use; the MQTT handler and the service goroutine both
// announce.
type Publisher struct {
	pub publishFunc
	cfg Config
	log logger.Logger

	mu        sync.Mutex
	announced map[string]struct{}
}

// NewPublisher builds a publisher over the shared MQTT connection.
func NewPublisher(pub publishFunc, cfg Config) *Publisher {
	cfg.SetDefaults()
	return &Publisher{
		pub:       pub,
		cfg:       cfg,
		log:       logger.New("ha_discovery"),
		announced: make(map[string]struct{}),
	}
}

func device(vehicleID string) Device {
	return Device{
		IDs:          "ovms_" + vehicleID,
		Name:         "OVMS " + vehicleID,
		Manufacturer: "Open Vehicles",
		Model:        "OVMS v3",
	}
}

// AnnounceEntity publishes the discovery config for a derived entity whose
// state lives on stateTopic. Repeat announcements are skipped.
func (p *Publisher) AnnounceEntity(vehicleID string, e entity.Entity, stateTopic, availabilityTopic string) error {
	if !p.cfg.Enabled {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, done := p.announced[e.Name]; done {
		return nil
	}

	cfg := EntityConfig{
		Name:              e.FriendlyName,
		StateTopic:        stateTopic,
		AvailabilityTopic: availabilityTopic,
		UniqueID:          e.Name,
		Device:            device(vehicleID),
	}
	if availabilityTopic != "" {
		cfg.PayloadAvailable = "on"
		cfg.PayloadNotAvailable = "off"
	}
	if t, ok := sensorTraits[e.MetricKey]; ok {
		cfg.DeviceClass = t.deviceClass
		cfg.UnitOfMeasurement = t.unit
		cfg.StateClass = t.stateClass
	}
	if e.Kind == entity.KindBinarySensor {
		cfg.PayloadOn = "yes"
		cfg.PayloadOff = "no"
	}

	if err := p.publishConfig(string(e.Kind), e.Name, cfg); err != nil {
		return err
	}
	p.announced[e.Name] = struct{}{}
	p.log.Debugw("announced entity", map[string]any{"entity": e.Name, "state_topic": stateTopic})
	return nil
}

// AnnounceTracker publishes the device tracker config. Location updates are
// sent as JSON attributes on attrTopic.
func (p *Publisher) AnnounceTracker(vehicleID, attrTopic, availabilityTopic string) error {
	if !p.cfg.Enabled {
		return nil
	}
	uniq := fmt.Sprintf("ovms_%s_location", vehicleID)
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, done := p.announced[uniq]; done {
		return nil
	}
	cfg := EntityConfig{
		Name:                vehicleID + " Location",
		UniqueID:            uniq,
		JSONAttributesTopic: attrTopic,
		AvailabilityTopic:   availabilityTopic,
		Device:              device(vehicleID),
	}
	if availabilityTopic != "" {
		cfg.PayloadAvailable = "on"
		cfg.PayloadNotAvailable = "off"
	}
	if err := p.publishConfig("device_tracker", uniq, cfg); err != nil {
		return err
	}
	p.announced[uniq] = struct{}{}
	return nil
}

func (p *Publisher) publishConfig(component, uniqueID string, cfg EntityConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%s/%s/config", p.cfg.DiscoveryPrefix, component, uniqueID)
	return p.pub.Publish(topic, p.cfg.QoS, true, payload)
}
