package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

func TestSendCommandDefaultsAndBounds(t *testing.T) {
	r := SendCommand{VehicleID: "myCar", Command: "stat"}
	require.NoError(t, r.Validate())
	assert.Equal(t, DefaultCommandTimeout, r.Timeout)
	assert.Equal(t, "stat", r.CommandText())

	r = SendCommand{VehicleID: "myCar", Command: "homelink", Parameters: "1", Timeout: 30 * time.Second}
	require.NoError(t, r.Validate())
	assert.Equal(t, "homelink 1", r.CommandText())

	for _, bad := range []SendCommand{
		{VehicleID: "my/car", Command: "stat"},
		{VehicleID: "myCar", Command: "  "},
		{VehicleID: "myCar", Command: "stat", Timeout: 61 * time.Second},
		{VehicleID: "myCar", Command: "stat", Timeout: 500 * time.Millisecond},
	} {
		assert.Error(t, bad.Validate(), "%+v", bad)
	}
}

func TestSetFeature(t *testing.T) {
	r := SetFeature{VehicleID: "myCar", Feature: "vehicle units.distance", Value: "K"}
	require.NoError(t, r.Validate())
	assert.Equal(t, "config set vehicle units.distance K", r.CommandText())

	assert.Error(t, (&SetFeature{VehicleID: "myCar"}).Validate())
	assert.Error(t, (&SetFeature{VehicleID: "a+b", Feature: "x"}).Validate())
}

func TestControlClimate(t *testing.T) {
	r := ControlClimate{VehicleID: "myCar", Temperature: f64(21.5), Mode: HvacHeat, DurationMinutes: 30}
	require.NoError(t, r.Validate())
	assert.Equal(t, "climatecontrol on 21.5 30", r.CommandText())

	off := ControlClimate{VehicleID: "myCar", Mode: HvacOff}
	require.NoError(t, off.Validate())
	assert.Equal(t, "climatecontrol off", off.CommandText())

	for _, bad := range []ControlClimate{
		{VehicleID: "myCar", Temperature: f64(14.5)},
		{VehicleID: "myCar", Temperature: f64(30.5)},
		{VehicleID: "myCar", Temperature: f64(21.3)},
		{VehicleID: "myCar", Mode: "warm"},
		{VehicleID: "myCar", DurationMinutes: 61},
	} {
		assert.Error(t, bad.Validate(), "%+v", bad)
	}
}

func TestControlCharging(t *testing.T) {
	r := ControlCharging{VehicleID: "myCar", Action: ChargeStart, Mode: ChargeModeRange, LimitPercent: i(80)}
	require.NoError(t, r.Validate())
	assert.Equal(t, "charge start range 80", r.CommandText())

	stop := ControlCharging{VehicleID: "myCar", Action: ChargeStop}
	require.NoError(t, stop.Validate())
	assert.Equal(t, "charge stop", stop.CommandText())

	status := ControlCharging{VehicleID: "myCar", Action: ChargeStatus}
	require.NoError(t, status.Validate())
	assert.Equal(t, "stat", status.CommandText())

	for _, bad := range []ControlCharging{
		{VehicleID: "myCar", Action: "pause"},
		{VehicleID: "myCar", Action: ChargeStart, Mode: "turbo"},
		{VehicleID: "myCar", Action: ChargeStart, LimitPercent: i(0)},
		{VehicleID: "myCar", Action: ChargeStart, LimitPercent: i(101)},
	} {
		assert.Error(t, bad.Validate(), "%+v", bad)
	}
}
