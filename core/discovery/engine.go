package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ovms-community/ovms-bridge/core/logger"
	"github.com/ovms-community/ovms-bridge/core/topic"
)

// Sample is one topic observed on the broker during the sampling window.
type Sample struct {
	Topic    string
	Retained bool
	At       time.Time
}

// Subscription is a scoped broker subscription. Unsubscribe must be safe to
// call exactly once on every exit path.
type Subscription interface {
	Unsubscribe() error
}

// TopicSource provides wildcard subscriptions on the shared broker
// connection. Implemented by infra/mqtt; faked in tests.
type TopicSource interface {
	Subscribe(filter string, qos byte, fn func(Sample)) (Subscription, error)
}

// State tracks where a discovery run currently is.
type State int

const (
	StateIdle State = iota
	StateSampling
	StateAggregating
)

func (s State) String() string {
	switch s {
	case StateSampling:
		return "sampling"
	case StateAggregating:
		return "aggregating"
	default:
		return "idle"
	}
}

// Config bounds one discovery run.
type Config struct {
	// Window is the sampling duration. Defaults to 5s.
	Window time.Duration
	// QoS for the broad subscription.
	QoS byte
	// SamplesPerCandidate caps the illustrative topics kept per candidate.
	// Defaults to 3.
	SamplesPerCandidate int
}

func (c *Config) setDefaults() {
	if c.Window <= 0 {
		c.Window = 5 * time.Second
	}
	if c.SamplesPerCandidate <= 0 {
		c.SamplesPerCandidate = 3
	}
}

// Engine samples the broker's live topic space and proposes vehicle ids.
// One run at a time; retry is always an explicit new Run call.
type Engine struct {
	src     TopicSource
	pattern *topic.Pattern
	cfg     Config
	log     logger.Logger

	mu    sync.Mutex
	state State
}

// New builds an engine around an already validated pattern.
func New(src TopicSource, pattern *topic.Pattern, cfg Config, log logger.Logger) *Engine {
	cfg.setDefaults()
	return &Engine{src: src, pattern: pattern, cfg: cfg, log: log}
}

// State returns the current run state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) enter(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Run performs one bounded sampling window and returns the ranked
// candidates. All sampled state is discarded when it returns; the broad
// subscription is released on every exit path.
func (e *Engine) Run(ctx context.Context) ([]VehicleCandidate, error) {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return nil, ErrRunning
	}
	e.state = StateSampling
	e.mu.Unlock()
	defer e.enter(StateIdle)

	filter := e.pattern.SubscriptionFilter()
	e.log.Infof("sampling broker topics on %s for %s", filter, e.cfg.Window)

	samples := make(chan Sample, 256)
	sub, err := e.src.Subscribe(filter, e.cfg.QoS, func(s Sample) {
		select {
		case samples <- s:
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("discovery subscribe: %w", err)
	}
	defer func() {
		if uerr := sub.Unsubscribe(); uerr != nil {
			e.log.Errorf("unsubscribe error: %v", uerr)
		}
	}()

	// Dedup by literal topic string so retained replays do not re-count.
	seen := make(map[string]struct{})
	var collected []Sample

	timer := time.NewTimer(e.cfg.Window)
	defer timer.Stop()
loop:
	for {
		select {
		case s := <-samples:
			if _, dup := seen[s.Topic]; dup {
				continue
			}
			seen[s.Topic] = struct{}{}
			collected = append(collected, s)
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			break loop
		}
	}

	e.enter(StateAggregating)
	if len(collected) == 0 {
		return nil, ErrNoTopics
	}
	candidates := aggregate(e.pattern, collected, e.cfg.SamplesPerCandidate)
	if len(candidates) == 0 {
		e.log.Warnf("observed %d topics but none matched the structure", len(collected))
		return nil, ErrTimedOut
	}
	e.log.Infof("discovery found %d candidate vehicle(s) from %d topics", len(candidates), len(collected))
	return candidates, nil
}
