package metrics

import coremetrics "github.com/ovms-community/ovms-bridge/core/metrics"

// MultiSink fans bridge events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMessage forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordMessage(ev coremetrics.MessageEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordMessage(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDiscovery forwards discovery events.
func (m *MultiSink) RecordDiscovery(ev coremetrics.DiscoveryEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDiscovery(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordConnection forwards connectivity transitions.
func (m *MultiSink) RecordConnection(connected bool) error {
	for _, s := range m.Sinks {
		if err := s.RecordConnection(connected); err != nil {
			return err
		}
	}
	return nil
}

// RecordMetricValue forwards raw metric samples to the sinks that keep them.
func (m *MultiSink) RecordMetricValue(pt coremetrics.MetricPoint) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.MetricValueRecorder); ok {
			if err := rec.RecordMetricValue(pt); err != nil {
				return err
			}
		}
	}
	return nil
}
