// Package drive turns operator inputs into per-wheel speed commands for
// differential, Killough and mecanum drivetrains.
package drive

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

type Topology string

const (
	TopologyDifferential Topology = "differential"
	TopologyKillough     Topology = "killough"
	TopologyMecanum      Topology = "mecanum"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnknownTopology    = errors.New("unknown drive topology")
	ErrMotorSafetyTimeout = errors.New("motor safety timeout")
)

// MotorController is the only capability a drive needs from an actuator.
type MotorController interface {
	Set(speed float64) error
	StopMotor() error
}

type Drive interface {
	DriveCartesian(x, y, rotation, gyroAngle float64) error
	StopMotor() error
	Description() string

	SetMaxOutput(maxOutput float64)
	SetDeadband(deadband float64)

	SetSafetyEnabled(enabled bool)
	IsAlive() bool
	Check() error

	Properties() []Property
}

// Holonomic drives can translate in any direction independent of rotation.
type Holonomic interface {
	Drive
	DrivePolar(magnitude, angle, rotation float64) error
}

// Property is a named value reported to dashboards.
type Property struct {
	Name  string
	Value float64
}

type Option func(*options)

type options struct {
	maxOutput     float64
	deadband      float64
	expiration    time.Duration
	safetyEnabled bool
	wheelAngles   [3]float64
}

func defaultOptions() options {
	return options{
		maxOutput:     DefaultMaxOutput,
		deadband:      DefaultDeadband,
		expiration:    DefaultExpiration,
		safetyEnabled: true,
		wheelAngles:   [3]float64{DefaultLeftMotorAngle, DefaultRightMotorAngle, DefaultBackMotorAngle},
	}
}

func WithMaxOutput(maxOutput float64) Option {
	return func(o *options) { o.maxOutput = maxOutput }
}

func WithDeadband(deadband float64) Option {
	return func(o *options) { o.deadband = deadband }
}

func WithExpiration(expiration time.Duration) Option {
	return func(o *options) { o.expiration = expiration }
}

func WithSafetyEnabled(enabled bool) Option {
	return func(o *options) { o.safetyEnabled = enabled }
}

// WithWheelAngles sets the Killough wheel mounting angles in degrees from the
// forward axis. Other topologies ignore it.
func WithWheelAngles(left, right, back float64) Option {
	return func(o *options) { o.wheelAngles = [3]float64{left, right, back} }
}

// New builds the drive for topology. motors must be in the topology's
// constructor order.
func New(topology Topology, motors []MotorController, opts ...Option) (Drive, error) {
	switch topology {
	case TopologyDifferential:
		if len(motors) != 2 {
			return nil, fmt.Errorf("%w: differential drive needs 2 motors, got %d", ErrInvalidArgument, len(motors))
		}
		return NewDifferentialDrive(motors[0], motors[1], opts...)
	case TopologyKillough:
		if len(motors) != 3 {
			return nil, fmt.Errorf("%w: killough drive needs 3 motors, got %d", ErrInvalidArgument, len(motors))
		}
		return NewKilloughDrive(motors[0], motors[1], motors[2], opts...)
	case TopologyMecanum:
		if len(motors) != 4 {
			return nil, fmt.Errorf("%w: mecanum drive needs 4 motors, got %d", ErrInvalidArgument, len(motors))
		}
		return NewMecanumDrive(motors[0], motors[1], motors[2], motors[3], opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopology, topology)
	}
}

// MotorCount is the number of actuators a topology binds, or 0 if unknown.
func MotorCount(topology Topology) int {
	switch topology {
	case TopologyDifferential:
		return 2
	case TopologyKillough:
		return 3
	case TopologyMecanum:
		return 4
	}
	return 0
}

// instance counters, diagnostics only
var (
	differentialInstances atomic.Int64
	killoughInstances     atomic.Int64
	mecanumInstances      atomic.Int64
)

// Instances reports how many drives of a topology have been constructed in
// this process.
func Instances(topology Topology) int {
	switch topology {
	case TopologyDifferential:
		return int(differentialInstances.Load())
	case TopologyKillough:
		return int(killoughInstances.Load())
	case TopologyMecanum:
		return int(mecanumInstances.Load())
	}
	return 0
}

func checkMotors(topology Topology, motors map[string]MotorController) error {
	for name, motor := range motors {
		if motor == nil {
			return fmt.Errorf("%w: %s drive %s motor is nil", ErrInvalidArgument, topology, name)
		}
	}
	return nil
}

var (
	_ Drive     = (*DifferentialDrive)(nil)
	_ Holonomic = (*KilloughDrive)(nil)
	_ Holonomic = (*MecanumDrive)(nil)
)
