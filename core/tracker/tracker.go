package tracker

import (
	"sync"
	"time"
)

// Position is a complete vehicle location, emitted once both coordinate
// halves have been seen.
type Position struct {
	VehicleID string
	Latitude  float64
	Longitude float64
	At        time.Time
}

type pending struct {
	lat, lon *float64
	at       time.Time
}

// Tracker pairs latitude and longitude metric updates per vehicle into
// location updates for the device tracker entity.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]*pending
}

func New() *Tracker {
	return &Tracker{pending: make(map[string]*pending)}
}

// coordinate classifies a metric leaf as one half of a position. The OVMS
// metric names are "latitude" and "longitude" but payload attribute aliases
// exist in the wild.
func coordinate(metric string) (isLat, isLon bool) {
	switch metric {
	case "latitude", "lat":
		return true, false
	case "longitude", "lon", "lng":
		return false, true
	}
	return false, false
}

// Update records one coordinate half. It returns a Position and true when
// the vehicle has both coordinates, false while the pair is incomplete or
// the metric is not a coordinate.
func (t *Tracker) Update(vehicleID, metric string, value float64, at time.Time) (Position, bool) {
	isLat, isLon := coordinate(metric)
	if !isLat && !isLon {
		return Position{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[vehicleID]
	if !ok {
		p = &pending{}
		t.pending[vehicleID] = p
	}
	v := value
	if isLat {
		p.lat = &v
	} else {
		p.lon = &v
	}
	p.at = at
	if p.lat == nil || p.lon == nil {
		return Position{}, false
	}
	return Position{VehicleID: vehicleID, Latitude: *p.lat, Longitude: *p.lon, At: p.at}, true
}

// Forget drops the pending state for a vehicle.
func (t *Tracker) Forget(vehicleID string) {
	t.mu.Lock()
	delete(t.pending, vehicleID)
	t.mu.Unlock()
}
