package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/ovms-community/ovms-bridge/core/metrics"
)

// PromSink records bridge events in Prometheus metrics.
type PromSink struct {
	messages   *prometheus.CounterVec
	discovered prometheus.Gauge
	connected  prometheus.Gauge
}

// NewPromSink registers bridge metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ovms_messages_total",
		Help: "Total number of entity-bearing OVMS messages received",
	}, []string{"vehicle_id", "category"})
	discovered := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ovms_discovery_candidates",
		Help: "Number of vehicle candidates found by the last discovery run",
	})
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ovms_module_connected",
		Help: "Whether the OVMS module currently reports online",
	})

	if err := reg.Register(messages); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			messages = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(discovered); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			discovered = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(connected); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			connected = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{messages: messages, discovered: discovered, connected: connected}, nil
}

// RecordMessage increments the message counter.
func (s *PromSink) RecordMessage(ev coremetrics.MessageEvent) error {
	s.messages.WithLabelValues(ev.VehicleID, ev.Category).Inc()
	return nil
}

// RecordDiscovery sets the candidates gauge.
func (s *PromSink) RecordDiscovery(ev coremetrics.DiscoveryEvent) error {
	s.discovered.Set(float64(ev.Candidates))
	return nil
}

// RecordConnection sets the module connection gauge.
func (s *PromSink) RecordConnection(connected bool) error {
	if connected {
		s.connected.Set(1)
	} else {
		s.connected.Set(0)
	}
	return nil
}
