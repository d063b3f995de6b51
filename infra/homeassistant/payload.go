package homeassistant

// MQTT discovery payloads, abbreviated keys as Home Assistant documents
// them.

// Device groups all of a vehicle's entities under one HA device.
type Device struct {
	IDs          string `json:"ids"`
	Name         string `json:"name"`
	Manufacturer string `json:"mf,omitempty"`
	Model        string `json:"mdl,omitempty"`
}

// EntityConfig is the retained discovery config for one entity.
type EntityConfig struct {
	Name                string `json:"name"`
	StateTopic          string `json:"stat_t,omitempty"`
	AvailabilityTopic   string `json:"avty_t,omitempty"`
	PayloadAvailable    string `json:"pl_avail,omitempty"`
	PayloadNotAvailable string `json:"pl_not_avail,omitempty"`
	UniqueID            string `json:"uniq_id"`
	DeviceClass         string `json:"dev_cla,omitempty"`
	UnitOfMeasurement   string `json:"unit_of_meas,omitempty"`
	StateClass          string `json:"stat_cla,omitempty"`
	PayloadOn           string `json:"pl_on,omitempty"`
	PayloadOff          string `json:"pl_off,omitempty"`
	JSONAttributesTopic string `json:"json_attr_t,omitempty"`
	Device              Device `json:"dev"`
}

// sensorTraits maps well-known metric keys to HA sensor attributes.
var sensorTraits = map[string]struct {
	deviceClass string
	unit        string
	stateClass  string
}{
	"v/b/soc":         {"battery", "%", "measurement"},
	"v/b/range/est":   {"distance", "km", "measurement"},
	"v/b/12v/voltage": {"voltage", "V", "measurement"},
	"v/b/p/temp/avg":  {"temperature", "°C", "measurement"},
	"v/p/odometer":    {"distance", "km", "total_increasing"},
	"v/c/limit/soc":   {"battery", "%", "measurement"},
	"v/e/temp/cabin":  {"temperature", "°C", "measurement"},
}
