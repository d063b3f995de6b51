package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ovms-community/ovms-bridge/core/discovery"
)

// Source adapts the shared PahoClient to the discovery TopicSource port.
type Source struct {
	cli *PahoClient
}

// NewSource wraps an already connected client.
func NewSource(cli *PahoClient) *Source {
	return &Source{cli: cli}
}

// Subscribe acquires a scoped wildcard subscription. A broker rejection of
// the filter surfaces as discovery.ErrAccessDenied so the caller can tell
// "nothing published" from "not allowed to listen".
func (s *Source) Subscribe(filter string, qos byte, fn func(discovery.Sample)) (discovery.Subscription, error) {
	err := s.cli.Subscribe(filter, qos, func(_ paho.Client, m paho.Message) {
		fn(discovery.Sample{Topic: m.Topic(), Retained: m.Retained(), At: time.Now()})
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, discovery.ErrAccessDenied)
	}
	return &scopedSubscription{cli: s.cli, filter: filter}, nil
}

// scopedSubscription releases exactly once, on whichever exit path calls it
// first.
type scopedSubscription struct {
	cli    *PahoClient
	filter string
	once   sync.Once
}

func (s *scopedSubscription) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		err = s.cli.Unsubscribe(s.filter)
	})
	return err
}
