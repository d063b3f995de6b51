package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ovms-community/ovms-bridge/config"
	"github.com/ovms-community/ovms-bridge/core/entity"
	coremetrics "github.com/ovms-community/ovms-bridge/core/metrics"
	"github.com/ovms-community/ovms-bridge/core/services"
	"github.com/ovms-community/ovms-bridge/core/topic"
	"github.com/ovms-community/ovms-bridge/core/tracker"
	"github.com/ovms-community/ovms-bridge/infra/homeassistant"
	"github.com/ovms-community/ovms-bridge/infra/logger"
	"github.com/ovms-community/ovms-bridge/infra/metrics"
	"github.com/ovms-community/ovms-bridge/infra/mqtt"
	"github.com/ovms-community/ovms-bridge/internal/eventbus"
)

// Service orchestrates the bridge: one broker connection feeding entity
// derivation, Home Assistant announcements and metric sinks.
type Service struct {
	cfg       *config.Config
	client    *mqtt.PahoClient
	pattern   *topic.Pattern
	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	ha        *homeassistant.Publisher
	tracker   *tracker.Tracker
	commander *mqtt.Commander
	log       logger.Logger

	influx      *metrics.InfluxSink
	promEnabled bool
	promPort    string

	filter string
	once   sync.Once
}

// New creates a Service from the configuration. The vehicle id must be
// resolved (configured or discovered) before the bridge can run.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	pattern, err := cfg.Topics.Pattern()
	if err != nil {
		return nil, fmt.Errorf("topic pattern: %w", err)
	}
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}

	svc := &Service{
		cfg:         cfg,
		client:      client,
		pattern:     pattern,
		bus:         eventbus.New(),
		tracker:     tracker.New(),
		commander:   mqtt.NewCommander(client, pattern),
		ha:          homeassistant.NewPublisher(client, cfg.HomeAssistant),
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}
	svc.sink, svc.influx = buildSink(cfg)
	return svc, nil
}

// buildSink assembles the configured metric sinks into one fan-out. The
// InfluxDB sink is returned separately so callers can close it.
func buildSink(cfg *config.Config) (coremetrics.MetricsSink, *metrics.InfluxSink) {
	var sinks []coremetrics.MetricsSink
	var influx *metrics.InfluxSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			logger.New("service").Errorf("prom sink: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		if s, ok := sink.(*metrics.InfluxSink); ok {
			influx = s
		}
		sinks = append(sinks, sink)
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, influx
	case 1:
		return sinks[0], influx
	default:
		return metrics.NewMultiSink(sinks...), influx
	}
}

// Run subscribes to the vehicle's topic tree and blocks until the context is
// cancelled. The subscription is released on exit.
func (s *Service) Run(ctx context.Context) error {
	vehicleID := s.cfg.Topics.VehicleID
	if vehicleID == "" {
		return fmt.Errorf("no vehicle_id configured; run discovery first")
	}

	updates := s.bus.Subscribe()
	go s.consume(ctx, vehicleID, updates)

	s.filter = s.pattern.SubscriptionFilterFor(vehicleID)
	if err := s.client.Subscribe(s.filter, s.client.QoS(), s.onMessage); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.filter, err)
	}
	s.log.Infof("bridging vehicle %s on %s", vehicleID, s.filter)

	if attrTopic, err := s.announceTracker(vehicleID); err != nil {
		s.log.Errorf("announce tracker: %v", err)
	} else if attrTopic != "" {
		s.log.Debugf("device tracker attributes on %s", attrTopic)
	}

	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	<-ctx.Done()
	if err := s.client.Unsubscribe(s.filter); err != nil {
		s.log.Errorf("unsubscribe %s: %v", s.filter, err)
	}
	return nil
}

func (s *Service) announceTracker(vehicleID string) (string, error) {
	if !s.cfg.HomeAssistant.Enabled {
		return "", nil
	}
	attrTopic := locationTopic(vehicleID)
	availability, err := s.pattern.StatusTopic(vehicleID)
	if err != nil {
		availability = ""
	}
	return attrTopic, s.ha.AnnounceTracker(vehicleID, attrTopic, availability)
}

// locationTopic is the bridge-owned topic carrying paired coordinates as
// JSON attributes for the device tracker.
func locationTopic(vehicleID string) string {
	return "ovms-bridge/" + vehicleID + "/location"
}

// onMessage decodes one broker message into an update on the event bus.
// Command responses and event notifications never become entities.
func (s *Service) onMessage(_ paho.Client, m paho.Message) {
	match, ok := s.pattern.Match(m.Topic())
	if !ok {
		return
	}
	if match.Remainder == "status" {
		connected := isOnline(string(m.Payload()))
		if err := s.sink.RecordConnection(connected); err != nil {
			s.log.Errorf("record connection: %v", err)
		}
		return
	}
	if topic.IsCommandResponse(match.Remainder) || topic.IsEvent(match.Remainder) {
		return
	}

	path := topic.MetricPath(match.Remainder)
	e, ok := entity.Derive(match.VehicleID, path)
	if !ok {
		return
	}
	s.bus.Publish(eventbus.Update{
		VehicleID: match.VehicleID,
		Entity:    e,
		Topic:     m.Topic(),
		Payload:   string(m.Payload()),
		Retained:  m.Retained(),
		At:        time.Now(),
	})
}

// consume drains bus updates: announce new entities, feed metric sinks,
// pair coordinates into location publishes.
func (s *Service) consume(ctx context.Context, vehicleID string, updates <-chan eventbus.Update) {
	availability, err := s.pattern.StatusTopic(vehicleID)
	if err != nil {
		availability = ""
	}
	for {
		select {
		case <-ctx.Done():
			return
		case u, open := <-updates:
			if !open {
				return
			}
			s.handleUpdate(u, availability)
		}
	}
}

func (s *Service) handleUpdate(u eventbus.Update, availability string) {
	if err := s.ha.AnnounceEntity(u.VehicleID, u.Entity, u.Topic, availability); err != nil {
		s.log.Errorf("announce %s: %v", u.Entity.Name, err)
	}
	if err := s.sink.RecordMessage(coremetrics.MessageEvent{
		VehicleID: u.VehicleID,
		Category:  u.Entity.Category,
		At:        u.At,
	}); err != nil {
		s.log.Errorf("record message: %v", err)
	}

	value, numeric := parseNumeric(u.Payload)
	if !numeric {
		return
	}
	if rec, ok := s.sink.(coremetrics.MetricValueRecorder); ok {
		if err := rec.RecordMetricValue(coremetrics.MetricPoint{
			VehicleID: u.VehicleID,
			Metric:    u.Entity.MetricKey,
			Category:  u.Entity.Category,
			Value:     value,
			At:        u.At,
		}); err != nil {
			s.log.Errorf("record metric: %v", err)
		}
	}

	leaf := u.Entity.MetricKey[strings.LastIndex(u.Entity.MetricKey, "/")+1:]
	if pos, complete := s.tracker.Update(u.VehicleID, leaf, value, u.At); complete {
		s.publishLocation(pos)
	}
}

func (s *Service) publishLocation(pos tracker.Position) {
	payload, err := json.Marshal(map[string]any{
		"latitude":     pos.Latitude,
		"longitude":    pos.Longitude,
		"gps_accuracy": 1,
	})
	if err != nil {
		return
	}
	if err := s.client.Publish(locationTopic(pos.VehicleID), s.client.QoS(), true, payload); err != nil {
		s.log.Errorf("publish location: %v", err)
	}
}

func parseNumeric(payload string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	return v, err == nil
}

// isOnline interprets the module's status payload.
func isOnline(payload string) bool {
	switch strings.ToLower(strings.TrimSpace(payload)) {
	case "on", "yes", "online", "1", "true":
		return true
	}
	return false
}

// SendCommand executes a raw module command and returns the response text.
func (s *Service) SendCommand(ctx context.Context, req services.SendCommand) (string, error) {
	s.defaultVehicle(&req.VehicleID)
	if err := req.Validate(); err != nil {
		return "", err
	}
	return s.commander.Execute(ctx, req.VehicleID, req.CommandText(), req.CommandID, req.Timeout)
}

// SetFeature sets a module feature via a config command.
func (s *Service) SetFeature(ctx context.Context, req services.SetFeature) (string, error) {
	s.defaultVehicle(&req.VehicleID)
	if err := req.Validate(); err != nil {
		return "", err
	}
	return s.execute(ctx, req.VehicleID, req.CommandText())
}

// ControlClimate starts or stops climate preconditioning.
func (s *Service) ControlClimate(ctx context.Context, req services.ControlClimate) (string, error) {
	s.defaultVehicle(&req.VehicleID)
	if err := req.Validate(); err != nil {
		return "", err
	}
	return s.execute(ctx, req.VehicleID, req.CommandText())
}

// ControlCharging starts, stops or queries charging.
func (s *Service) ControlCharging(ctx context.Context, req services.ControlCharging) (string, error) {
	s.defaultVehicle(&req.VehicleID)
	if err := req.Validate(); err != nil {
		return "", err
	}
	return s.execute(ctx, req.VehicleID, req.CommandText())
}

func (s *Service) defaultVehicle(id *string) {
	if *id == "" {
		*id = s.cfg.Topics.VehicleID
	}
}

func (s *Service) execute(ctx context.Context, vehicleID, text string) (string, error) {
	return s.commander.Execute(ctx, vehicleID, text, "", services.DefaultCommandTimeout)
}

// Close releases the broker connection and sink resources.
func (s *Service) Close() error {
	s.once.Do(func() {
		s.bus.Close()
		if s.influx != nil {
			s.influx.Close()
		}
		s.client.Disconnect()
	})
	return nil
}
