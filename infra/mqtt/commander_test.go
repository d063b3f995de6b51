package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovms-community/ovms-bridge/core/topic"
)

func commanderPattern(t *testing.T) *topic.Pattern {
	t.Helper()
	p, err := topic.Build("ovms", topic.StructureUsernameVehicle, "", "alice")
	require.NoError(t, err)
	return p
}

func TestCommanderExecute(t *testing.T) {
	f := newFakePaho()
	withFakePaho(t, f)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)

	cmd := NewCommander(cli, commanderPattern(t))
	respTopic := "ovms/alice/myCar/client/rr/response/cmd00001"

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := cmd.Execute(context.Background(), "myCar", "stat", "cmd00001", time.Second)
		assert.NoError(t, err)
		assert.Equal(t, "SOC: 80%", resp)
	}()

	// Wait for the command publish, then answer like the module would.
	cmdTopic := "ovms/alice/myCar/client/rr/command/cmd00001"
	deadline := time.Now().Add(time.Second)
	for {
		f.mu.Lock()
		n := len(f.published[cmdTopic])
		f.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("command never published")
		}
		time.Sleep(5 * time.Millisecond)
	}
	f.deliver(respTopic, respTopic, []byte("SOC: 80%"), false)
	<-done

	assert.Contains(t, f.unsubscribed, respTopic)
}

func TestCommanderExecuteTimeout(t *testing.T) {
	f := newFakePaho()
	withFakePaho(t, f)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)

	cmd := NewCommander(cli, commanderPattern(t))
	_, err = cmd.Execute(context.Background(), "myCar", "stat", "", 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrResponseTimeout)
}

func TestCommanderRequiresAddressableStructure(t *testing.T) {
	f := newFakePaho()
	withFakePaho(t, f)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)

	// Username placeholder left open: publish topics cannot be built.
	p, err := topic.Build("ovms", topic.StructureUsernameVehicle, "", "")
	require.NoError(t, err)
	_, err = NewCommander(cli, p).Execute(context.Background(), "myCar", "stat", "", time.Second)
	assert.Error(t, err)
}

func TestNewCommandID(t *testing.T) {
	id := NewCommandID()
	assert.Len(t, id, 8)
	assert.NotEqual(t, id, NewCommandID())
}
