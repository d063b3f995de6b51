package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/ovms-community/ovms-bridge/core/topic"
	"github.com/ovms-community/ovms-bridge/infra/logger"
)

// ErrResponseTimeout is returned when the module does not answer a command
// before its deadline.
var ErrResponseTimeout = errors.New("timeout waiting for command response")

// Commander runs the OVMS request-response protocol: publish a command on
// the rr command topic, wait for the echo on the matching response topic.
type Commander struct {
	cli     *PahoClient
	pattern *topic.Pattern
	qos     byte
	log     logger.Logger
}

// NewCommander builds a commander for one resolved pattern.
func NewCommander(cli *PahoClient, pattern *topic.Pattern) *Commander {
	return &Commander{cli: cli, pattern: pattern, qos: cli.QoS(), log: logger.New("commander")}
}

// NewCommandID returns a short unique command id, matching the module's
// expectations for the rr topic segment.
func NewCommandID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Execute sends commandText to the vehicle and waits for the response
// payload until the timeout or context cancellation. The response
// subscription is released on every exit path.
func (c *Commander) Execute(ctx context.Context, vehicleID, commandText, commandID string, timeout time.Duration) (string, error) {
	if commandID == "" {
		commandID = NewCommandID()
	}
	cmdTopic, err := c.pattern.CommandTopic(vehicleID, commandID)
	if err != nil {
		return "", err
	}
	respTopic, err := c.pattern.ResponseTopic(vehicleID, commandID)
	if err != nil {
		return "", err
	}

	responses := make(chan string, 1)
	if err := c.cli.Subscribe(respTopic, c.qos, func(_ paho.Client, m paho.Message) {
		select {
		case responses <- string(m.Payload()):
		default:
		}
	}); err != nil {
		return "", fmt.Errorf("subscribe response topic: %w", err)
	}
	defer func() {
		if uerr := c.cli.Unsubscribe(respTopic); uerr != nil {
			c.log.Errorf("unsubscribe %s: %v", respTopic, uerr)
		}
	}()

	if err := c.cli.Publish(cmdTopic, c.qos, false, []byte(commandText)); err != nil {
		return "", fmt.Errorf("publish command: %w", err)
	}
	c.log.Debugw("command sent", map[string]any{
		"vehicle_id": vehicleID,
		"command_id": commandID,
		"topic":      cmdTopic,
	})

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case resp := <-responses:
		return resp, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", fmt.Errorf("command %s: %w", commandID, ErrResponseTimeout)
	}
}
