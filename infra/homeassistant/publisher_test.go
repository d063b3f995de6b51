package homeassistant

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovms-community/ovms-bridge/core/entity"
)

type capturingPub struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	retained []bool
}

func (c *capturingPub) Publish(topic string, _ byte, retained bool, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload)
	c.retained = append(c.retained, retained)
	return nil
}

func TestAnnounceEntity(t *testing.T) {
	pub := &capturingPub{}
	p := NewPublisher(pub, Config{Enabled: true})

	e, ok := entity.Derive("myCar", []string{"metric", "v", "b", "soc"})
	require.True(t, ok)
	require.NoError(t, p.AnnounceEntity("myCar", e, "ovms/alice/myCar/metric/v/b/soc", "ovms/alice/myCar/status"))

	require.Len(t, pub.topics, 1)
	assert.Equal(t, "homeassistant/sensor/ovms_mycar_battery_v_b_soc/config", pub.topics[0])
	assert.True(t, pub.retained[0])

	var cfg EntityConfig
	require.NoError(t, json.Unmarshal(pub.payloads[0], &cfg))
	assert.Equal(t, "Battery State of Charge", cfg.Name)
	assert.Equal(t, "ovms/alice/myCar/metric/v/b/soc", cfg.StateTopic)
	assert.Equal(t, "battery", cfg.DeviceClass)
	assert.Equal(t, "%", cfg.UnitOfMeasurement)
	assert.Equal(t, "ovms_myCar", cfg.Device.IDs)

	// Second announcement is a no-op.
	require.NoError(t, p.AnnounceEntity("myCar", e, "x", "y"))
	assert.Len(t, pub.topics, 1)
}

func TestAnnounceEntityDisabled(t *testing.T) {
	pub := &capturingPub{}
	p := NewPublisher(pub, Config{Enabled: false})
	e, _ := entity.Derive("myCar", []string{"metric", "v", "b", "soc"})
	require.NoError(t, p.AnnounceEntity("myCar", e, "t", ""))
	assert.Empty(t, pub.topics)
}

func TestAnnounceBinarySensorPayloads(t *testing.T) {
	pub := &capturingPub{}
	p := NewPublisher(pub, Config{Enabled: true})
	e, ok := entity.Derive("car1", []string{"metric", "v", "c", "charging"})
	require.True(t, ok)
	require.NoError(t, p.AnnounceEntity("car1", e, "t", ""))

	assert.Contains(t, pub.topics[0], "homeassistant/binary_sensor/")
	var cfg EntityConfig
	require.NoError(t, json.Unmarshal(pub.payloads[0], &cfg))
	assert.Equal(t, "yes", cfg.PayloadOn)
	assert.Equal(t, "no", cfg.PayloadOff)
}

func TestAnnounceConcurrent(t *testing.T) {
	pub := &capturingPub{}
	p := NewPublisher(pub, Config{Enabled: true})
	e, ok := entity.Derive("car1", []string{"metric", "v", "b", "soc"})
	require.True(t, ok)

	// Retained-message bursts announce entities while the service announces
	// the tracker on the same publisher.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.AnnounceEntity("car1", e, "ovms/car1/metric/v/b/soc", ""))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, p.AnnounceTracker("car1", "ovms-bridge/car1/location", ""))
		}()
	}
	wg.Wait()

	// One config per unique id, regardless of interleaving.
	assert.Len(t, pub.topics, 2)
}

func TestAnnounceTracker(t *testing.T) {
	pub := &capturingPub{}
	p := NewPublisher(pub, Config{Enabled: true})
	require.NoError(t, p.AnnounceTracker("myCar", "ovms-bridge/myCar/location", "ovms/alice/myCar/status"))
	require.Len(t, pub.topics, 1)
	assert.Equal(t, "homeassistant/device_tracker/ovms_myCar_location/config", pub.topics[0])

	var cfg EntityConfig
	require.NoError(t, json.Unmarshal(pub.payloads[0], &cfg))
	assert.Equal(t, "ovms-bridge/myCar/location", cfg.JSONAttributesTopic)
}
