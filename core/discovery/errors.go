package discovery

import "errors"

var (
	// ErrNoTopics means the sampling window elapsed without observing a
	// single topic under the broad filter.
	ErrNoTopics = errors.New("no topics observed on the broker")

	// ErrAccessDenied means the broker rejected the broad subscription.
	ErrAccessDenied = errors.New("broker denied the discovery subscription")

	// ErrTimedOut means topics were observed but none matched the structure.
	// Retryable without reconfiguration.
	ErrTimedOut = errors.New("no structurally matching topics before the window elapsed")

	// ErrRunning means a sampling window is already in progress. One run at
	// a time per engine.
	ErrRunning = errors.New("a discovery run is already in progress")
)
