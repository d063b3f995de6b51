package entity

import (
	"strings"
)

// Kind is the Home Assistant platform an OVMS metric maps to.
type Kind string

const (
	KindSensor       Kind = "sensor"
	KindBinarySensor Kind = "binary_sensor"
)

// Entity describes the host-side entity derived from one metric topic.
type Entity struct {
	Kind     Kind
	Category string
	// MetricKey is the normalized metric path joined with '/', e.g. "v/b/soc".
	MetricKey string
	// Name is the unique entity id, e.g. "ovms_mycar_battery_v_b_soc".
	Name         string
	FriendlyName string
}

// friendlyNames covers the common OVMS metrics; everything else falls back
// to the raw path.
var friendlyNames = map[string]string{
	"v/b/soc":           "Battery State of Charge",
	"v/b/range/est":     "Estimated Range",
	"v/b/12v/voltage":   "12V Battery Voltage",
	"v/b/p/temp/avg":    "Battery Temperature",
	"b/soc/abs":         "Absolute Battery SOC",
	"b/soh/vw":          "Battery Health",
	"v/p/latitude":      "Latitude",
	"v/p/longitude":     "Longitude",
	"v/p/odometer":      "Odometer",
	"v/p/gpssq":         "GPS Signal Quality",
	"v/c/limit/soc":     "Charge Limit",
	"v/c/duration/full": "Full Charge Duration",
	"v/c/charging":      "Charging",
	"v/e/on":            "Vehicle On",
	"v/e/locked":        "Vehicle Locked",
}

// vehicleCategories maps the second level of "v/..." metrics.
var vehicleCategories = map[string]string{
	"b": "battery",
	"c": "charging",
	"p": "location",
	"e": "system",
	"d": "door",
	"m": "motor",
	"t": "tyre",
	"i": "inverter",
	"g": "generator",
}

var binaryLeaves = map[string]struct{}{
	"on":        {},
	"charging":  {},
	"locked":    {},
	"alarm":     {},
	"awake":     {},
	"plugged":   {},
	"running":   {},
	"connected": {},
	"pilot":     {},
}

// Derive maps a metric path (the remainder segments after the structure
// skeleton) to an entity. Returns false for paths that do not name a metric,
// such as the availability status topic or notification streams.
func Derive(vehicleID string, path []string) (Entity, bool) {
	if len(path) == 0 {
		return Entity{}, false
	}

	switch path[0] {
	case "metric":
		path = path[1:]
	case "notify":
		// Notifications are transient, no entity.
		return Entity{}, false
	case "status", "event", "client":
		return Entity{}, false
	}
	if len(path) == 0 {
		return Entity{}, false
	}

	// Vendor-specific metrics (e.g. "xvu/...") follow the standard shape
	// one level down.
	if path[0] == "xvu" && len(path) > 2 {
		path = append([]string{path[1]}, path[2:]...)
	}

	key := strings.Join(path, "/")
	e := Entity{
		Kind:      KindSensor,
		Category:  categoryFor(path),
		MetricKey: key,
	}
	if _, ok := binaryLeaves[path[len(path)-1]]; ok {
		e.Kind = KindBinarySensor
	}
	e.Name = entityName(vehicleID, e.Category, path)
	if fn, ok := friendlyNames[key]; ok {
		e.FriendlyName = fn
	} else {
		e.FriendlyName = strings.Join(path, " ")
	}
	return e, true
}

func categoryFor(path []string) string {
	if len(path) >= 2 && path[0] == "v" {
		if c, ok := vehicleCategories[path[1]]; ok {
			return c
		}
	}
	joined := strings.ToLower(strings.Join(path, "/"))
	switch {
	case strings.Contains(joined, "soc") || strings.Contains(joined, "batt"):
		return "battery"
	case strings.Contains(joined, "charg"):
		return "charging"
	case strings.Contains(joined, "lat") || strings.Contains(joined, "lon") || strings.Contains(joined, "gps"):
		return "location"
	case strings.Contains(joined, "temp") || strings.Contains(joined, "hvac") || strings.Contains(joined, "climate"):
		return "climate"
	case strings.Contains(joined, "door") || strings.Contains(joined, "lock"):
		return "door"
	}
	return "system"
}

func entityName(vehicleID, category string, path []string) string {
	parts := append([]string{"ovms", vehicleID, category}, path...)
	return strings.ToLower(strings.Join(parts, "_"))
}
