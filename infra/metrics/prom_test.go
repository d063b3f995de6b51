package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/ovms-community/ovms-bridge/core/metrics"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	ps := sink.(*PromSink)

	require.NoError(t, sink.RecordMessage(coremetrics.MessageEvent{VehicleID: "car1", Category: "battery", At: time.Now()}))
	require.NoError(t, sink.RecordMessage(coremetrics.MessageEvent{VehicleID: "car1", Category: "battery", At: time.Now()}))
	assert.Equal(t, 2.0, testutil.ToFloat64(ps.messages.WithLabelValues("car1", "battery")))

	require.NoError(t, sink.RecordDiscovery(coremetrics.DiscoveryEvent{Candidates: 3}))
	assert.Equal(t, 3.0, testutil.ToFloat64(ps.discovered))

	require.NoError(t, sink.RecordConnection(true))
	assert.Equal(t, 1.0, testutil.ToFloat64(ps.connected))
	require.NoError(t, sink.RecordConnection(false))
	assert.Equal(t, 0.0, testutil.ToFloat64(ps.connected))
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	_, err = NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	assert.NoError(t, err, "re-registration should reuse existing collectors")
}

func TestMultiSinkFanout(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	multi := NewMultiSink(sink, coremetrics.NopSink{})

	require.NoError(t, multi.RecordMessage(coremetrics.MessageEvent{VehicleID: "car1", Category: "system"}))
	require.NoError(t, multi.RecordDiscovery(coremetrics.DiscoveryEvent{Candidates: 1}))
	require.NoError(t, multi.RecordConnection(true))
	require.NoError(t, multi.RecordMetricValue(coremetrics.MetricPoint{VehicleID: "car1", Metric: "v/b/soc", Value: 80}))
}
