package drive

import (
	"math"

	"go.uber.org/zap"
)

const (
	DefaultLeftMotorAngle  = 60.0
	DefaultRightMotorAngle = -60.0
	DefaultBackMotorAngle  = 180.0
)

// KilloughDrive drives a three wheel omni ("kiwi") robot.
type KilloughDrive struct {
	base

	leftVec  Vector2d
	rightVec Vector2d
	backVec  Vector2d
}

func NewKilloughDrive(left, right, back MotorController, opts ...Option) (*KilloughDrive, error) {
	err := checkMotors(TopologyKillough, map[string]MotorController{"left": left, "right": right, "back": back})
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	instance := killoughInstances.Add(1)
	zap.S().Infof("killough drive %d created - wheel angles: %.1f %.1f %.1f", instance, o.wheelAngles[0], o.wheelAngles[1], o.wheelAngles[2])
	return &KilloughDrive{
		base:     newBase(o, []string{"Left", "Right", "Back"}, []MotorController{left, right, back}),
		leftVec:  unitVector(o.wheelAngles[0]),
		rightVec: unitVector(o.wheelAngles[1]),
		backVec:  unitVector(o.wheelAngles[2]),
	}, nil
}

func (d *KilloughDrive) Description() string {
	return "Killough Drive"
}

// DriveCartesian drives with x forward and y to the right. A non zero
// gyroAngle makes the input field relative. rotation is limited but not
// deadbanded.
func (d *KilloughDrive) DriveCartesian(x, y, rotation, gyroAngle float64) error {
	x = ApplyDeadband(Limit(x), d.deadband)
	y = ApplyDeadband(Limit(y), d.deadband)
	rotation = Limit(rotation)

	input := Vector2d{X: x, Y: y}
	if gyroAngle != 0 {
		input.Rotate(-gyroAngle)
	}

	speeds := []float64{
		input.ScalarProject(d.leftVec) + rotation,
		input.ScalarProject(d.rightVec) + rotation,
		input.ScalarProject(d.backVec) + rotation,
	}
	Normalize(speeds)

	return d.send(speeds...)
}

// DrivePolar drives at magnitude toward angle degrees from forward.
func (d *KilloughDrive) DrivePolar(magnitude, angle, rotation float64) error {
	x, y := polarToCartesian(magnitude, angle)
	return d.DriveCartesian(x, y, rotation, 0.0)
}

func polarToCartesian(magnitude, angle float64) (float64, float64) {
	return magnitude * math.Cos(angle*(math.Pi/180.0)), magnitude * math.Sin(angle*(math.Pi/180.0))
}
