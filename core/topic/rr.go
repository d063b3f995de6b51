package topic

import "strings"

// OVMS request-response topics live under "client/rr" below the structure
// prefix. Commands carry a caller-chosen id echoed back on the response
// topic.

// CommandTopic returns the publish topic for a command.
func (p *Pattern) CommandTopic(vehicleID, commandID string) (string, error) {
	prefix, err := p.StructurePrefix(vehicleID)
	if err != nil {
		return "", err
	}
	return prefix + "/client/rr/command/" + commandID, nil
}

// ResponseTopic returns the topic the module answers a command on.
func (p *Pattern) ResponseTopic(vehicleID, commandID string) (string, error) {
	prefix, err := p.StructurePrefix(vehicleID)
	if err != nil {
		return "", err
	}
	return prefix + "/client/rr/response/" + commandID, nil
}

// ResponseFilter returns a subscription filter covering all command
// responses for one vehicle. Wildcards are fine here, so an unset username
// does not block it.
func (p *Pattern) ResponseFilter(vehicleID string) string {
	return p.filter(vehicleID) + "/client/rr/response/+"
}

// StatusTopic returns the module availability topic.
func (p *Pattern) StatusTopic(vehicleID string) (string, error) {
	prefix, err := p.StructurePrefix(vehicleID)
	if err != nil {
		return "", err
	}
	return prefix + "/status", nil
}

// IsCommandResponse reports whether a match remainder belongs to the
// request-response channel rather than to a metric.
func IsCommandResponse(remainder string) bool {
	return strings.Contains(remainder, "client/rr/")
}

// IsEvent reports whether the remainder is an event stream topic. Events do
// not map to entities.
func IsEvent(remainder string) bool {
	return remainder == "event" || strings.HasSuffix(remainder, "/event")
}
