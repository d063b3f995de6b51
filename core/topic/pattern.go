package topic

import (
	"strings"
)

const (
	placeholderPrefix   = "{prefix}"
	placeholderVehicle  = "{vehicle_id}"
	placeholderUsername = "{mqtt_username}"
)

type segmentKind int

const (
	segmentLiteral segmentKind = iota
	// segmentVehicle captures the vehicle id.
	segmentVehicle
	// segmentAny matches any single level. Used for {mqtt_username} when no
	// username is configured.
	segmentAny
)

type segment struct {
	kind    segmentKind
	literal string
}

// Pattern is a compiled topic structure. It serves both as a subscription
// filter builder and as a parser for inbound topics. Immutable once built.
type Pattern struct {
	structure Structure
	template  string
	segments  []segment
}

// Match holds the fields extracted from a conforming topic.
type Match struct {
	VehicleID string
	// Remainder is the topic suffix after the structure skeleton, segment
	// boundaries preserved.
	Remainder string
}

// Build compiles a pattern from the configured prefix, structure choice,
// custom template (required iff structure is StructureCustom) and optional
// MQTT username. Validation happens here; the returned pattern never needs
// re-checking.
func Build(prefix string, structure Structure, customTemplate, mqttUsername string) (*Pattern, error) {
	if prefix == "" {
		return nil, &InvalidFormatError{Reason: "prefix must not be empty"}
	}
	if strings.ContainsAny(prefix, "+#") {
		return nil, &InvalidFormatError{Reason: "prefix must not contain MQTT wildcards"}
	}
	if strings.HasPrefix(prefix, "/") || strings.HasSuffix(prefix, "/") || strings.Contains(prefix, "//") {
		return nil, &InvalidFormatError{Reason: "prefix must not have leading, trailing or empty segments"}
	}

	var template string
	switch {
	case structure == StructureCustom:
		if customTemplate == "" {
			return nil, &MissingPlaceholderError{Placeholder: "prefix"}
		}
		if err := validateTemplate(customTemplate); err != nil {
			return nil, err
		}
		template = customTemplate
	default:
		template = structure.Template()
		if template == "" {
			return nil, &InvalidFormatError{Reason: "unknown structure choice"}
		}
	}

	p := &Pattern{structure: structure, template: template}
	for _, raw := range strings.Split(template, "/") {
		switch raw {
		case placeholderPrefix:
			for _, lit := range strings.Split(prefix, "/") {
				p.segments = append(p.segments, segment{kind: segmentLiteral, literal: lit})
			}
		case placeholderVehicle:
			p.segments = append(p.segments, segment{kind: segmentVehicle})
		case placeholderUsername:
			if mqttUsername == "" {
				p.segments = append(p.segments, segment{kind: segmentAny})
			} else {
				p.segments = append(p.segments, segment{kind: segmentLiteral, literal: mqttUsername})
			}
		default:
			p.segments = append(p.segments, segment{kind: segmentLiteral, literal: raw})
		}
	}
	return p, nil
}

// validateTemplate enforces the custom template invariant: {prefix} and
// {vehicle_id} exactly once, {mqtt_username} at most once, no unknown
// placeholders, no empty segments.
func validateTemplate(template string) error {
	if strings.HasPrefix(template, "/") || strings.HasSuffix(template, "/") {
		return &InvalidFormatError{Reason: "template must not start or end with '/'"}
	}
	if strings.ContainsAny(template, "+#") {
		return &InvalidFormatError{Reason: "template must not contain MQTT wildcards"}
	}
	counts := map[string]int{}
	for _, raw := range strings.Split(template, "/") {
		if raw == "" {
			return &InvalidFormatError{Reason: "template contains an empty segment"}
		}
		switch raw {
		case placeholderPrefix, placeholderVehicle, placeholderUsername:
			counts[raw]++
		default:
			if strings.ContainsAny(raw, "{}") {
				return &InvalidPlaceholderError{Token: raw}
			}
		}
	}
	if counts[placeholderPrefix] == 0 {
		return &MissingPlaceholderError{Placeholder: "prefix"}
	}
	if counts[placeholderVehicle] == 0 {
		return &MissingPlaceholderError{Placeholder: "vehicle_id"}
	}
	if counts[placeholderPrefix] > 1 || counts[placeholderVehicle] > 1 || counts[placeholderUsername] > 1 {
		return &InvalidFormatError{Reason: "placeholders must appear at most once"}
	}
	return nil
}

// Structure returns the structure choice the pattern was built from.
func (p *Pattern) Structure() Structure { return p.structure }

// SubscriptionFilter returns a broad filter with the vehicle id (and an
// unset username) held open as single-level wildcards, followed by a
// multi-level wildcard for the metric path. Used by discovery.
func (p *Pattern) SubscriptionFilter() string {
	return p.filter("+") + "/#"
}

// SubscriptionFilterFor returns the runtime filter for one known vehicle.
func (p *Pattern) SubscriptionFilterFor(vehicleID string) string {
	return p.filter(vehicleID) + "/#"
}

func (p *Pattern) filter(vehicle string) string {
	parts := make([]string, 0, len(p.segments))
	for _, s := range p.segments {
		switch s.kind {
		case segmentVehicle:
			parts = append(parts, vehicle)
		case segmentAny:
			parts = append(parts, "+")
		default:
			parts = append(parts, s.literal)
		}
	}
	return strings.Join(parts, "/")
}

// StructurePrefix renders the concrete topic prefix for one vehicle, usable
// for publishing. It fails when the pattern still has an open username
// segment, since publish topics cannot contain wildcards.
func (p *Pattern) StructurePrefix(vehicleID string) (string, error) {
	for _, s := range p.segments {
		if s.kind == segmentAny {
			return "", &InvalidFormatError{Reason: "mqtt username required to address this structure"}
		}
	}
	return p.filter(vehicleID), nil
}

// Match tests a literal topic against the pattern skeleton. The vehicle id
// is captured positionally; the remainder is everything after the skeleton.
// Matching is structural only, a topic either conforms or it does not.
func (p *Pattern) Match(topic string) (Match, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) <= len(p.segments) {
		return Match{}, false
	}
	var vehicleID string
	for i, s := range p.segments {
		switch s.kind {
		case segmentLiteral:
			if parts[i] != s.literal {
				return Match{}, false
			}
		case segmentVehicle:
			if parts[i] == "" {
				return Match{}, false
			}
			vehicleID = parts[i]
		case segmentAny:
			if parts[i] == "" {
				return Match{}, false
			}
		}
	}
	remainder := strings.Join(parts[len(p.segments):], "/")
	if remainder == "" {
		return Match{}, false
	}
	return Match{VehicleID: vehicleID, Remainder: remainder}, true
}

// MetricPath splits a match remainder into its path segments, dropping
// empties. The entity layer keys metric lookups on this.
func MetricPath(remainder string) []string {
	raw := strings.Split(remainder, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// ValidVehicleID reports whether s can stand as the vehicle id segment of a
// topic: one non-empty level without wildcards.
func ValidVehicleID(s string) bool {
	return s != "" && !strings.ContainsAny(s, "/+#")
}
