package drive

import (
	"math"

	"go.uber.org/zap"
)

const (
	quickTurnThreshold = 0.2
	quickStopAlpha     = 0.1
)

// DifferentialDrive drives a two sided (tank style) robot.
type DifferentialDrive struct {
	base

	quickStopAccumulator float64
}

func NewDifferentialDrive(left, right MotorController, opts ...Option) (*DifferentialDrive, error) {
	err := checkMotors(TopologyDifferential, map[string]MotorController{"left": left, "right": right})
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	instance := differentialInstances.Add(1)
	zap.S().Infof("differential drive %d created", instance)
	return &DifferentialDrive{
		base: newBase(o, []string{"Left", "Right"}, []MotorController{left, right}),
	}, nil
}

func (d *DifferentialDrive) Description() string {
	return "Differential Drive"
}

// TankDrive drives each side independently. The right side is negated on the
// way out since its motor is mounted mirrored.
func (d *DifferentialDrive) TankDrive(leftSpeed, rightSpeed float64, squareInputs bool) error {
	leftSpeed = ApplyDeadband(Limit(leftSpeed), d.deadband)
	rightSpeed = ApplyDeadband(Limit(rightSpeed), d.deadband)

	if squareInputs {
		leftSpeed = square(leftSpeed)
		rightSpeed = square(rightSpeed)
	}

	return d.send(leftSpeed, -rightSpeed)
}

// ArcadeDrive drives from a forward speed and a rotation rate. Unlike
// TankDrive the right output is not negated.
func (d *DifferentialDrive) ArcadeDrive(forward, rotation float64, squareInputs bool) error {
	forward = ApplyDeadband(Limit(forward), d.deadband)
	rotation = ApplyDeadband(Limit(rotation), d.deadband)

	if squareInputs {
		forward = square(forward)
		rotation = square(rotation)
	}

	maxInput := math.Copysign(max(math.Abs(forward), math.Abs(rotation)), forward)

	var leftSpeed, rightSpeed float64
	if forward > 0.0 {
		if rotation > 0.0 {
			leftSpeed = maxInput
			rightSpeed = forward - rotation
		} else {
			leftSpeed = forward + rotation
			rightSpeed = maxInput
		}
	} else {
		if rotation > 0.0 {
			leftSpeed = forward + rotation
			rightSpeed = maxInput
		} else {
			leftSpeed = maxInput
			rightSpeed = forward - rotation
		}
	}

	return d.send(leftSpeed, rightSpeed)
}

// CurvatureDrive steers by path curvature, or pivots in place when
// isQuickTurn is set. The quick stop accumulator keeps the heading from
// snapping when leaving a quick turn.
func (d *DifferentialDrive) CurvatureDrive(forward, rotation float64, isQuickTurn bool) error {
	forward = ApplyDeadband(Limit(forward), d.deadband)
	rotation = Limit(rotation)

	var overPower bool
	var angularPower float64

	if isQuickTurn {
		if math.Abs(forward) < quickTurnThreshold {
			d.quickStopAccumulator = (1-quickStopAlpha)*d.quickStopAccumulator + quickStopAlpha*rotation*2
		}
		overPower = true
		angularPower = rotation
	} else {
		overPower = false
		angularPower = math.Abs(forward)*rotation - d.quickStopAccumulator

		if d.quickStopAccumulator > 1 {
			d.quickStopAccumulator -= 1
		} else if d.quickStopAccumulator < -1 {
			d.quickStopAccumulator += 1
		} else {
			d.quickStopAccumulator = 0.0
		}
	}

	leftSpeed := forward + angularPower
	rightSpeed := forward - angularPower

	if overPower {
		if leftSpeed > 1.0 {
			rightSpeed -= leftSpeed - 1.0
			leftSpeed = 1.0
		} else if rightSpeed > 1.0 {
			leftSpeed -= rightSpeed - 1.0
			rightSpeed = 1.0
		} else if leftSpeed < -1.0 {
			rightSpeed -= leftSpeed + 1.0
			leftSpeed = -1.0
		} else if rightSpeed < -1.0 {
			leftSpeed -= rightSpeed + 1.0
			rightSpeed = -1.0
		}
	}

	return d.send(leftSpeed, rightSpeed)
}

// DriveCartesian lets a differential drive stand in where a holonomic one is
// expected. It cannot strafe, so y and gyroAngle are ignored.
func (d *DifferentialDrive) DriveCartesian(x, y, rotation, gyroAngle float64) error {
	return d.ArcadeDrive(x, rotation, true)
}

// QuickStopAccumulator exposes the curvature drive smoothing state.
func (d *DifferentialDrive) QuickStopAccumulator() float64 {
	return d.quickStopAccumulator
}
