package topic

import "fmt"

// Structure selects one of the topic layouts an OVMS module can be
// configured to publish under. The custom variant carries a user-authored
// template validated by Build.
type Structure int

const (
	// StructurePrefixVehicle is "{prefix}/{vehicle_id}".
	StructurePrefixVehicle Structure = iota
	// StructureUsernameVehicle is "{prefix}/{mqtt_username}/{vehicle_id}",
	// the layout the OVMS firmware uses by default.
	StructureUsernameVehicle
	// StructureClientVehicle is "{prefix}/client/{vehicle_id}".
	StructureClientVehicle
	// StructureVehicleUsername is "{prefix}/{vehicle_id}/{mqtt_username}".
	StructureVehicleUsername
	// StructureCustom uses the template supplied by the user.
	StructureCustom
)

// DefaultStructure matches the OVMS firmware default.
const DefaultStructure = StructureUsernameVehicle

var structureNames = map[Structure]string{
	StructurePrefixVehicle:   "prefix_vehicle",
	StructureUsernameVehicle: "prefix_username_vehicle",
	StructureClientVehicle:   "prefix_client_vehicle",
	StructureVehicleUsername: "prefix_vehicle_username",
	StructureCustom:          "custom",
}

var structureTemplates = map[Structure]string{
	StructurePrefixVehicle:   "{prefix}/{vehicle_id}",
	StructureUsernameVehicle: "{prefix}/{mqtt_username}/{vehicle_id}",
	StructureClientVehicle:   "{prefix}/client/{vehicle_id}",
	StructureVehicleUsername: "{prefix}/{vehicle_id}/{mqtt_username}",
}

// Structures lists the built-in layouts in a stable order, custom last.
func Structures() []Structure {
	return []Structure{
		StructurePrefixVehicle,
		StructureUsernameVehicle,
		StructureClientVehicle,
		StructureVehicleUsername,
		StructureCustom,
	}
}

// String returns the configuration name of the structure.
func (s Structure) String() string {
	if n, ok := structureNames[s]; ok {
		return n
	}
	return "unknown"
}

// Template returns the placeholder template for a built-in structure. The
// custom structure has no fixed template; callers must pass their own to
// Build.
func (s Structure) Template() string {
	return structureTemplates[s]
}

// ParseStructure resolves a configuration name to a Structure.
func ParseStructure(name string) (Structure, error) {
	for s, n := range structureNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown topic structure %q", name)
}
