package discovery

import (
	"sort"

	"github.com/ovms-community/ovms-bridge/core/topic"
)

// SampleTopic is one illustrative topic backing a candidate. The retained
// flag lets the operator spot candidates fed only by stale broker state.
type SampleTopic struct {
	Topic    string
	Retained bool
}

// VehicleCandidate is an inferred vehicle id with the evidence behind it.
// Consumed read-only by the setup flow; never persisted.
type VehicleCandidate struct {
	VehicleID    string
	MatchCount   int
	SampleTopics []SampleTopic
}

// reservedIDs are structural segments that can be captured in the vehicle id
// position but never name a vehicle.
var reservedIDs = map[string]struct{}{
	"client": {},
	"rr":     {},
}

// aggregate buckets the unique sampled topics by captured vehicle id and
// ranks the candidates by descending match count, ties broken lexically.
func aggregate(pattern *topic.Pattern, samples []Sample, maxSamples int) []VehicleCandidate {
	byID := map[string]*VehicleCandidate{}
	for _, s := range samples {
		m, ok := pattern.Match(s.Topic)
		if !ok {
			continue
		}
		if _, reserved := reservedIDs[m.VehicleID]; reserved {
			continue
		}
		c, ok := byID[m.VehicleID]
		if !ok {
			c = &VehicleCandidate{VehicleID: m.VehicleID}
			byID[m.VehicleID] = c
		}
		c.MatchCount++
		if len(c.SampleTopics) < maxSamples {
			c.SampleTopics = append(c.SampleTopics, SampleTopic{Topic: s.Topic, Retained: s.Retained})
		}
	}

	out := make([]VehicleCandidate, 0, len(byID))
	for _, c := range byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchCount != out[j].MatchCount {
			return out[i].MatchCount > out[j].MatchCount
		}
		return out[i].VehicleID < out[j].VehicleID
	})
	return out
}
