// Package device talks to the pellet stove's cloud gateway.
package device

import (
	"context"
	"errors"
	"fmt"
)

// Level bounds accepted by the appliance.
const (
	MinPower = 1
	MaxPower = 5
	MinFan   = 1
	MaxFan   = 6
)

var (
	ErrInvalidLevel = errors.New("level out of range")
	ErrDeviceError  = errors.New("device reported an error")
)

// Gateway is the set of remote operations on the single managed appliance.
// Every call is independently failable.
type Gateway interface {
	GetStatus(ctx context.Context) (Status, error)
	GetFanLevel(ctx context.Context) (int, error)
	GetPowerLevel(ctx context.Context) (int, error)
	Ignite(ctx context.Context, power int) error
	Shutdown(ctx context.Context) error
	SetPowerLevel(ctx context.Context, level int) error
	SetFanLevel(ctx context.Context, level int) error
}

// ValidatePower checks a power level against the appliance range.
func ValidatePower(level int) error {
	if level < MinPower || level > MaxPower {
		return fmt.Errorf("%w: power %d not in %d-%d", ErrInvalidLevel, level, MinPower, MaxPower)
	}
	return nil
}

// ValidateFan checks a fan level against the appliance range.
func ValidateFan(level int) error {
	if level < MinFan || level > MaxFan {
		return fmt.Errorf("%w: fan %d not in %d-%d", ErrInvalidLevel, level, MinFan, MaxFan)
	}
	return nil
}
