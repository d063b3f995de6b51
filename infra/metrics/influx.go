package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/ovms-community/ovms-bridge/core/metrics"
	"github.com/ovms-community/ovms-bridge/infra/logger"
)

// InfluxSink persists bridge events and raw metric values to InfluxDB using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordMessage writes one message event.
func (s *InfluxSink) RecordMessage(ev coremetrics.MessageEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ovms_message").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("category", ev.Category).
		AddField("count", 1).
		SetTime(ev.At)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDiscovery persists the result of a discovery run.
func (s *InfluxSink) RecordDiscovery(ev coremetrics.DiscoveryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ovms_discovery").
		AddField("candidates", ev.Candidates).
		AddField("topics", ev.Topics).
		SetTime(ev.At)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordConnection writes a module connectivity transition.
func (s *InfluxSink) RecordConnection(connected bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ovms_connection").
		AddField("connected", connected).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMetricValue writes a numeric vehicle metric sample.
func (s *InfluxSink) RecordMetricValue(pt coremetrics.MetricPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ovms_metric").
		AddTag("vehicle_id", pt.VehicleID).
		AddTag("metric", pt.Metric).
		AddTag("category", pt.Category).
		AddField("value", pt.Value).
		SetTime(pt.At)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
