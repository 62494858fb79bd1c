package drive

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	DefaultDeadband   = 0.02
	DefaultMaxOutput  = 1.0
	DefaultExpiration = 100 * time.Millisecond
)

// Limit clamps value to [-1.0, 1.0].
func Limit(value float64) float64 {
	if value > 1.0 {
		return 1.0
	}
	if value < -1.0 {
		return -1.0
	}
	return value
}

// ApplyDeadband zeroes values inside the deadband and rescales the rest so
// full scale is still reachable.
func ApplyDeadband(value, deadband float64) float64 {
	if math.Abs(value) < deadband || deadband >= 1.0 {
		return 0.0
	}
	return math.Copysign((math.Abs(value)-deadband)/(1.0-deadband), value)
}

// Normalize scales speeds in place so the largest magnitude is at most 1.0,
// keeping the ratios between them.
func Normalize(speeds []float64) {
	maxMagnitude := 0.0
	for _, speed := range speeds {
		maxMagnitude = max(maxMagnitude, math.Abs(speed))
	}
	if maxMagnitude > 1.0 {
		for i := range speeds {
			speeds[i] /= maxMagnitude
		}
	}
}

func square(value float64) float64 {
	return math.Copysign(value*value, value)
}

type base struct {
	maxOutput float64
	deadband  float64
	safety    *safety

	names   []string
	motors  []MotorController
	outputs []float64
}

func newBase(o options, names []string, motors []MotorController) base {
	return base{
		maxOutput: o.maxOutput,
		deadband:  o.deadband,
		safety:    newSafety(o.expiration, o.safetyEnabled),
		names:     names,
		motors:    motors,
		outputs:   make([]float64, len(motors)),
	}
}

func (b *base) SetMaxOutput(maxOutput float64) {
	b.maxOutput = maxOutput
}

func (b *base) SetDeadband(deadband float64) {
	b.deadband = deadband
}

func (b *base) MaxOutput() float64 {
	return b.maxOutput
}

func (b *base) Deadband() float64 {
	return b.deadband
}

func (b *base) SetSafetyEnabled(enabled bool) {
	b.safety.setEnabled(enabled)
}

func (b *base) IsSafetyEnabled() bool {
	return b.safety.isEnabled()
}

func (b *base) SetExpiration(expiration time.Duration) {
	b.safety.setExpiration(expiration)
}

func (b *base) Expiration() time.Duration {
	return b.safety.getExpiration()
}

func (b *base) IsAlive() bool {
	return b.safety.isAlive()
}

// Check stops the motors if safety is enabled and the drive has not been fed
// within the expiration.
func (b *base) Check() error {
	if !b.safety.expired() {
		return nil
	}
	err := b.StopMotor()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMotorSafetyTimeout, err)
	}
	return ErrMotorSafetyTimeout
}

// StopMotor sends a single stop to every motor.
func (b *base) StopMotor() error {
	var errs []error
	for i := range b.motors {
		b.outputs[i] = 0
		err := b.motors[i].StopMotor()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed stopping %s motor: %w", b.names[i], err))
		}
	}
	b.safety.feed()
	return errors.Join(errs...)
}

// send writes one command per motor, scaled by maxOutput, in binding order.
// A failing motor does not keep the rest from receiving their command.
func (b *base) send(speeds ...float64) error {
	var errs []error
	for i := range b.motors {
		b.outputs[i] = speeds[i] * b.maxOutput
		err := b.motors[i].Set(b.outputs[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("failed setting %s motor: %w", b.names[i], err))
		}
	}
	b.safety.feed()
	return errors.Join(errs...)
}

func (b *base) Properties() []Property {
	props := make([]Property, 0, len(b.names))
	for i := range b.names {
		props = append(props, Property{
			Name:  b.names[i] + " Motor Speed",
			Value: b.outputs[i],
		})
	}
	return props
}
