package metrics

import "time"

// MessageEvent records one entity-bearing MQTT message.
type MessageEvent struct {
	VehicleID string
	Category  string
	At        time.Time
}

// DiscoveryEvent records the outcome of one discovery run.
type DiscoveryEvent struct {
	Candidates int
	Topics     int
	At         time.Time
}

// MetricPoint is a numeric OVMS metric sample, for time-series sinks.
type MetricPoint struct {
	VehicleID string
	Metric    string
	Category  string
	Value     float64
	At        time.Time
}

// MetricsSink receives bridge telemetry. Implementations must be safe for
// concurrent use.
type MetricsSink interface {
	RecordMessage(MessageEvent) error
	RecordDiscovery(DiscoveryEvent) error
	RecordConnection(connected bool) error
}

// MetricValueRecorder is implemented by sinks that persist raw metric
// values (e.g. InfluxDB).
type MetricValueRecorder interface {
	RecordMetricValue(MetricPoint) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordMessage(MessageEvent) error     { return nil }
func (NopSink) RecordDiscovery(DiscoveryEvent) error { return nil }
func (NopSink) RecordConnection(bool) error          { return nil }
