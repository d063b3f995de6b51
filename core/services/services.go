package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ovms-community/ovms-bridge/core/topic"
)

// The four remote-command services. Each request validates itself before
// anything touches the broker; Command() renders the OVMS shell command the
// module executes.

const (
	DefaultCommandTimeout = 10 * time.Second
	MinCommandTimeout     = 1 * time.Second
	MaxCommandTimeout     = 60 * time.Second
)

// HvacMode enumerates climate modes accepted by control_climate.
type HvacMode string

const (
	HvacOff  HvacMode = "off"
	HvacHeat HvacMode = "heat"
	HvacCool HvacMode = "cool"
	HvacAuto HvacMode = "auto"
)

// ChargeAction enumerates control_charging actions.
type ChargeAction string

const (
	ChargeStart  ChargeAction = "start"
	ChargeStop   ChargeAction = "stop"
	ChargeStatus ChargeAction = "status"
)

// ChargeMode enumerates OVMS charge modes.
type ChargeMode string

const (
	ChargeModeStandard    ChargeMode = "standard"
	ChargeModeStorage     ChargeMode = "storage"
	ChargeModeRange       ChargeMode = "range"
	ChargeModePerformance ChargeMode = "performance"
)

func validVehicleID(id string) error {
	if !topic.ValidVehicleID(id) {
		return fmt.Errorf("invalid vehicle_id %q", id)
	}
	return nil
}

// SendCommand is the raw command escape hatch.
type SendCommand struct {
	VehicleID  string
	Command    string
	Parameters string
	CommandID  string
	Timeout    time.Duration
}

// Validate checks the request and applies the timeout default.
func (r *SendCommand) Validate() error {
	if err := validVehicleID(r.VehicleID); err != nil {
		return err
	}
	if strings.TrimSpace(r.Command) == "" {
		return fmt.Errorf("command must not be empty")
	}
	if r.Timeout == 0 {
		r.Timeout = DefaultCommandTimeout
	}
	if r.Timeout < MinCommandTimeout || r.Timeout > MaxCommandTimeout {
		return fmt.Errorf("timeout %s out of range [%s, %s]", r.Timeout, MinCommandTimeout, MaxCommandTimeout)
	}
	return nil
}

// CommandText renders the command line sent to the module.
func (r SendCommand) CommandText() string {
	if r.Parameters == "" {
		return r.Command
	}
	return r.Command + " " + r.Parameters
}

// SetFeature writes an OVMS config feature.
type SetFeature struct {
	VehicleID string
	Feature   string
	Value     string
}

func (r *SetFeature) Validate() error {
	if err := validVehicleID(r.VehicleID); err != nil {
		return err
	}
	if strings.TrimSpace(r.Feature) == "" {
		return fmt.Errorf("feature must not be empty")
	}
	return nil
}

func (r SetFeature) CommandText() string {
	return fmt.Sprintf("config set %s %s", r.Feature, r.Value)
}

// ControlClimate drives pre-heating / cooling.
type ControlClimate struct {
	VehicleID string
	// Temperature in °C, 15–30 in 0.5 steps. Optional.
	Temperature *float64
	Mode        HvacMode
	// DurationMinutes 1–60. Optional.
	DurationMinutes int
}

func (r *ControlClimate) Validate() error {
	if err := validVehicleID(r.VehicleID); err != nil {
		return err
	}
	if r.Temperature != nil {
		tc := *r.Temperature
		if tc < 15 || tc > 30 {
			return fmt.Errorf("temperature %.1f out of range [15, 30]", tc)
		}
		if math.Mod(tc*10, 5) != 0 {
			return fmt.Errorf("temperature %.2f is not a 0.5 step", tc)
		}
	}
	switch r.Mode {
	case "", HvacOff, HvacHeat, HvacCool, HvacAuto:
	default:
		return fmt.Errorf("unknown hvac_mode %q", r.Mode)
	}
	if r.DurationMinutes != 0 && (r.DurationMinutes < 1 || r.DurationMinutes > 60) {
		return fmt.Errorf("duration %d out of range [1, 60] minutes", r.DurationMinutes)
	}
	return nil
}

func (r ControlClimate) CommandText() string {
	if r.Mode == HvacOff {
		return "climatecontrol off"
	}
	parts := []string{"climatecontrol on"}
	if r.Temperature != nil {
		parts = append(parts, fmt.Sprintf("%.1f", *r.Temperature))
	}
	if r.DurationMinutes > 0 {
		parts = append(parts, fmt.Sprintf("%d", r.DurationMinutes))
	}
	return strings.Join(parts, " ")
}

// ControlCharging starts, stops or queries charging.
type ControlCharging struct {
	VehicleID string
	Action    ChargeAction
	Mode      ChargeMode
	// LimitPercent 1–100. Optional.
	LimitPercent *int
}

func (r *ControlCharging) Validate() error {
	if err := validVehicleID(r.VehicleID); err != nil {
		return err
	}
	switch r.Action {
	case ChargeStart, ChargeStop, ChargeStatus:
	default:
		return fmt.Errorf("unknown charging action %q", r.Action)
	}
	switch r.Mode {
	case "", ChargeModeStandard, ChargeModeStorage, ChargeModeRange, ChargeModePerformance:
	default:
		return fmt.Errorf("unknown charge mode %q", r.Mode)
	}
	if r.LimitPercent != nil && (*r.LimitPercent < 1 || *r.LimitPercent > 100) {
		return fmt.Errorf("limit %d out of range [1, 100]", *r.LimitPercent)
	}
	return nil
}

func (r ControlCharging) CommandText() string {
	switch r.Action {
	case ChargeStatus:
		return "stat"
	case ChargeStop:
		return "charge stop"
	}
	parts := []string{"charge start"}
	if r.Mode != "" {
		parts = append(parts, string(r.Mode))
	}
	if r.LimitPercent != nil {
		parts = append(parts, fmt.Sprintf("%d", *r.LimitPercent))
	}
	return strings.Join(parts, " ")
}
