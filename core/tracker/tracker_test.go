package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePairsCoordinates(t *testing.T) {
	tr := New()
	now := time.Now()

	_, ok := tr.Update("car1", "latitude", 48.85, now)
	assert.False(t, ok, "half a pair is not a position")

	pos, ok := tr.Update("car1", "longitude", 2.35, now)
	require.True(t, ok)
	assert.Equal(t, "car1", pos.VehicleID)
	assert.Equal(t, 48.85, pos.Latitude)
	assert.Equal(t, 2.35, pos.Longitude)
}

func TestUpdateSubsequentMoves(t *testing.T) {
	tr := New()
	now := time.Now()
	tr.Update("car1", "lat", 1, now)
	_, ok := tr.Update("car1", "lon", 2, now)
	require.True(t, ok)

	pos, ok := tr.Update("car1", "latitude", 1.5, now.Add(time.Second))
	require.True(t, ok, "once paired every coordinate update emits")
	assert.Equal(t, 1.5, pos.Latitude)
	assert.Equal(t, 2.0, pos.Longitude)
}

func TestUpdateIgnoresOtherMetrics(t *testing.T) {
	tr := New()
	_, ok := tr.Update("car1", "soc", 80, time.Now())
	assert.False(t, ok)
}

func TestVehiclesAreIndependent(t *testing.T) {
	tr := New()
	now := time.Now()
	tr.Update("car1", "latitude", 1, now)
	_, ok := tr.Update("car2", "longitude", 2, now)
	assert.False(t, ok, "coordinates must not pair across vehicles")
}

func TestForget(t *testing.T) {
	tr := New()
	now := time.Now()
	tr.Update("car1", "latitude", 1, now)
	tr.Forget("car1")
	_, ok := tr.Update("car1", "longitude", 2, now)
	assert.False(t, ok)
}
