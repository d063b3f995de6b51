package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var simRng = rand.New(rand.NewSource(time.Now().UnixNano()))

// SimulatedModule emulates one OVMS module on the broker: it publishes
// retained metric topics under its structure prefix, keeps the status topic
// fresh and answers request-response commands.
type SimulatedModule struct {
	VehicleID string
	Broker    string
	// Prefix is the resolved structure prefix, e.g. "ovms/alice/myCar".
	Prefix   string
	Interval time.Duration

	client paho.Client
	soc    float64
	lat    float64
	lon    float64
}

// NewSimulatedModule creates a module with a random initial state.
func NewSimulatedModule(vehicleID, broker, prefix string, interval time.Duration) *SimulatedModule {
	return &SimulatedModule{
		VehicleID: vehicleID,
		Broker:    broker,
		Prefix:    prefix,
		Interval:  interval,
		soc:       40 + simRng.Float64()*50,
		lat:       48.85 + simRng.Float64()*0.1,
		lon:       2.35 + simRng.Float64()*0.1,
	}
}

// Run connects, publishes metrics on each tick and serves commands until the
// context is done. Status flips to "off" on shutdown.
func (m *SimulatedModule) Run(ctx context.Context) error {
	cli, err := newMQTTClient(m.Broker, "ovms-sim-"+m.VehicleID)
	if err != nil {
		return err
	}
	m.client = cli

	cmdFilter := m.Prefix + "/client/rr/command/+"
	if token := cli.Subscribe(cmdFilter, 1, m.onCommand); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return token.Error()
	}

	m.publish("status", "on", true)
	m.publishMetrics()

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.publish("status", "off", true)
			cli.Disconnect(250)
			return nil
		case <-ticker.C:
			m.step()
			m.publishMetrics()
		}
	}
}

func (m *SimulatedModule) step() {
	m.soc -= simRng.Float64() * 0.5
	if m.soc < 5 {
		m.soc = 95
	}
	m.lat += (simRng.Float64() - 0.5) * 0.001
	m.lon += (simRng.Float64() - 0.5) * 0.001
}

func (m *SimulatedModule) publishMetrics() {
	m.publish("metric/v/b/soc", fmt.Sprintf("%.1f", m.soc), true)
	m.publish("metric/v/p/latitude", fmt.Sprintf("%.6f", m.lat), true)
	m.publish("metric/v/p/longitude", fmt.Sprintf("%.6f", m.lon), true)
	m.publish("metric/v/c/charging", "no", true)
}

func (m *SimulatedModule) publish(suffix, payload string, retained bool) {
	topic := m.Prefix + "/" + suffix
	if token := m.client.Publish(topic, 1, retained, payload); token.Wait() && token.Error() != nil {
		log.Printf("%s: publish %s: %v", m.VehicleID, topic, token.Error())
	}
}

// onCommand echoes a canned response on the matching response topic, the way
// the module's server shell does.
func (m *SimulatedModule) onCommand(_ paho.Client, msg paho.Message) {
	parts := strings.Split(msg.Topic(), "/")
	commandID := parts[len(parts)-1]
	resp := m.respond(string(msg.Payload()))
	m.publish("client/rr/response/"+commandID, resp, false)
}

func (m *SimulatedModule) respond(command string) string {
	switch {
	case command == "stat":
		return fmt.Sprintf("SOC: %.1f%%\nNot charging", m.soc)
	case strings.HasPrefix(command, "charge "):
		return "Charge " + strings.TrimPrefix(command, "charge ") + " requested"
	case strings.HasPrefix(command, "climatecontrol "):
		return "Climate control " + strings.TrimPrefix(command, "climatecontrol ")
	case strings.HasPrefix(command, "config set "):
		return "OK"
	}
	return "Unrecognised command: " + command
}
