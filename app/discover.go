package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ovms-community/ovms-bridge/config"
	"github.com/ovms-community/ovms-bridge/core/discovery"
	coremetrics "github.com/ovms-community/ovms-bridge/core/metrics"
	"github.com/ovms-community/ovms-bridge/infra/logger"
	"github.com/ovms-community/ovms-bridge/infra/mqtt"
)

// Discover connects to the broker, samples retained and live topics for the
// configured window and returns ranked vehicle id candidates. The connection
// is closed before returning.
func Discover(ctx context.Context, cfg *config.Config) ([]discovery.VehicleCandidate, error) {
	pattern, err := cfg.Topics.Pattern()
	if err != nil {
		return nil, fmt.Errorf("topic pattern: %w", err)
	}
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()

	engine := discovery.New(
		mqtt.NewSource(client),
		pattern,
		cfg.Discovery.EngineConfig(client.QoS()),
		logger.New("discovery"),
	)
	candidates, err := engine.Run(ctx)

	sink, influx := buildSink(cfg)
	if influx != nil {
		defer influx.Close()
	}
	topics := 0
	for _, c := range candidates {
		topics += c.MatchCount
	}
	if serr := sink.RecordDiscovery(coremetrics.DiscoveryEvent{
		Candidates: len(candidates),
		Topics:     topics,
		At:         time.Now(),
	}); serr != nil {
		logger.New("discovery").Errorf("record discovery: %v", serr)
	}
	return candidates, err
}
