package drive

import "go.uber.org/zap"

// MecanumDrive drives a four wheel mecanum robot.
type MecanumDrive struct {
	base
}

func NewMecanumDrive(frontLeft, rearLeft, frontRight, rearRight MotorController, opts ...Option) (*MecanumDrive, error) {
	err := checkMotors(TopologyMecanum, map[string]MotorController{
		"front left":  frontLeft,
		"rear left":   rearLeft,
		"front right": frontRight,
		"rear right":  rearRight,
	})
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	instance := mecanumInstances.Add(1)
	zap.S().Infof("mecanum drive %d created", instance)
	return &MecanumDrive{
		base: newBase(o,
			[]string{"Front Left", "Rear Left", "Front Right", "Rear Right"},
			[]MotorController{frontLeft, rearLeft, frontRight, rearRight},
		),
	}, nil
}

func (d *MecanumDrive) Description() string {
	return "Mecanum Drive"
}

// DriveCartesian drives with x forward and y to the right. A non zero
// gyroAngle makes the input field relative. Unlike the Killough drive the
// rotation input is deadbanded too.
func (d *MecanumDrive) DriveCartesian(x, y, rotation, gyroAngle float64) error {
	x = ApplyDeadband(Limit(x), d.deadband)
	y = ApplyDeadband(Limit(y), d.deadband)
	rotation = ApplyDeadband(Limit(rotation), d.deadband)

	input := Vector2d{X: x, Y: y}
	if gyroAngle != 0 {
		input.Rotate(-gyroAngle)
	}

	speeds := []float64{
		input.X + input.Y + rotation, // front left
		input.X - input.Y + rotation, // rear left
		input.X - input.Y - rotation, // front right
		input.X + input.Y - rotation, // rear right
	}
	Normalize(speeds)

	return d.send(speeds...)
}

func (d *MecanumDrive) DrivePolar(magnitude, angle, rotation float64) error {
	x, y := polarToCartesian(magnitude, angle)
	return d.DriveCartesian(x, y, rotation, 0.0)
}
