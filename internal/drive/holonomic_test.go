package drive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sets(motors []*fakeMotor) []float64 {
	out := make([]float64, 0, len(motors))
	for _, m := range motors {
		if len(m.sets) == 0 {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, m.sets[len(m.sets)-1])
	}
	return out
}

func assertSpeeds(t *testing.T, want []float64, motors []*fakeMotor) {
	t.Helper()
	got := sets(motors)
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "motor %d: want %v got %v", i, want, got)
	}
}

func newTestKillough(t *testing.T, opts ...Option) (*KilloughDrive, []*fakeMotor) {
	t.Helper()
	motors := newFakeMotors(3)
	d, err := NewKilloughDrive(motors[0], motors[1], motors[2], opts...)
	require.NoError(t, err)
	return d, motors
}

func newTestMecanum(t *testing.T, opts ...Option) (*MecanumDrive, []*fakeMotor) {
	t.Helper()
	motors := newFakeMotors(4)
	d, err := NewMecanumDrive(motors[0], motors[1], motors[2], motors[3], opts...)
	require.NoError(t, err)
	return d, motors
}

func TestNew(t *testing.T) {
	tests := []struct {
		topology    Topology
		count       int
		description string
	}{
		{TopologyDifferential, 2, "Differential Drive"},
		{TopologyKillough, 3, "Killough Drive"},
		{TopologyMecanum, 4, "Mecanum Drive"},
	}
	for _, tt := range tests {
		t.Run(string(tt.topology), func(t *testing.T) {
			assert.Equal(t, tt.count, MotorCount(tt.topology))

			before := Instances(tt.topology)
			motors := make([]MotorController, tt.count)
			for i := range motors {
				motors[i] = &fakeMotor{}
			}
			d, err := New(tt.topology, motors)
			require.NoError(t, err)
			assert.Equal(t, tt.description, d.Description())
			assert.Equal(t, before+1, Instances(tt.topology))

			_, err = New(tt.topology, motors[:tt.count-1])
			assert.ErrorIs(t, err, ErrInvalidArgument)
			_, err = New(tt.topology, append(motors, &fakeMotor{}))
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	_, err := New("swerve", nil)
	assert.ErrorIs(t, err, ErrUnknownTopology)
	assert.Equal(t, 0, MotorCount("swerve"))
	assert.Equal(t, 0, Instances("swerve"))
}

func TestNewNilMotor(t *testing.T) {
	_, err := NewKilloughDrive(&fakeMotor{}, &fakeMotor{}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewMecanumDrive(&fakeMotor{}, nil, &fakeMotor{}, &fakeMotor{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = New(TopologyMecanum, []MotorController{&fakeMotor{}, &fakeMotor{}, &fakeMotor{}, nil})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMecanumDriveCartesianZero(t *testing.T) {
	d, motors := newTestMecanum(t)
	require.NoError(t, d.DriveCartesian(0, 0, 0, 0))
	assertSpeeds(t, []float64{0, 0, 0, 0}, motors)
}

func TestMecanumDriveCartesianForward(t *testing.T) {
	d, motors := newTestMecanum(t)
	require.NoError(t, d.DriveCartesian(1, 0, 0, 0))
	assert.Equal(t, []float64{1, 1, 1, 1}, sets(motors))
}

func TestMecanumDriveCartesianMixing(t *testing.T) {
	d, motors := newTestMecanum(t, WithDeadband(0))

	require.NoError(t, d.DriveCartesian(0, 0.5, 0, 0))
	assertSpeeds(t, []float64{0.5, -0.5, -0.5, 0.5}, motors)

	require.NoError(t, d.DriveCartesian(0, 0, 0.5, 0))
	assertSpeeds(t, []float64{0.5, 0.5, -0.5, -0.5}, motors)

	require.NoError(t, d.DriveCartesian(0.2, 0.1, 0.3, 0))
	assertSpeeds(t, []float64{0.6, 0.4, -0.2, 0}, motors)
}

func TestMecanumDriveCartesianNormalized(t *testing.T) {
	d, motors := newTestMecanum(t, WithDeadband(0), WithMaxOutput(0.8))
	require.NoError(t, d.DriveCartesian(1, 1, 1, 0))
	// raw 3, 1, -1, 1
	assertSpeeds(t, []float64{0.8, 0.8 / 3, -0.8 / 3, 0.8 / 3}, motors)
}

func TestMecanumDriveCartesianFieldOriented(t *testing.T) {
	d, motors := newTestMecanum(t, WithDeadband(0))
	// heading 90 degrees, forward on the field is to the robot's left
	require.NoError(t, d.DriveCartesian(0.5, 0, 0, 90))
	input := Vector2d{X: 0.5}
	input.Rotate(-90)
	assertSpeeds(t, []float64{
		input.X + input.Y,
		input.X - input.Y,
		input.X - input.Y,
		input.X + input.Y,
	}, motors)
	assertSpeeds(t, []float64{-0.5, 0.5, 0.5, -0.5}, motors)
}

func TestMecanumRotationDeadband(t *testing.T) {
	d, motors := newTestMecanum(t)
	require.NoError(t, d.DriveCartesian(0, 0, 0.01, 0))
	assertSpeeds(t, []float64{0, 0, 0, 0}, motors)
}

func TestMecanumDrivePolar(t *testing.T) {
	d, motors := newTestMecanum(t, WithDeadband(0))
	require.NoError(t, d.DrivePolar(0.3, 20, -0.4))

	x := 0.3 * math.Cos(20*math.Pi/180)
	y := 0.3 * math.Sin(20*math.Pi/180)
	assertSpeeds(t, []float64{x + y - 0.4, x - y - 0.4, x - y + 0.4, x + y + 0.4}, motors)
	for i := range motors {
		assert.Len(t, motors[i].sets, 1)
	}
}

func TestMecanumStopMotor(t *testing.T) {
	d, motors := newTestMecanum(t)
	require.NoError(t, d.DriveCartesian(0.3, 0.4, -0.2, -20))
	require.NoError(t, d.StopMotor())
	for i := range motors {
		assert.Equal(t, 1, motors[i].stops, "motor %d", i)
	}
}

func TestMecanumProperties(t *testing.T) {
	d, _ := newTestMecanum(t, WithDeadband(0))
	require.NoError(t, d.DriveCartesian(0.5, 0, 0, 0))
	props := d.Properties()
	require.Len(t, props, 4)
	assert.Equal(t, "Front Left Motor Speed", props[0].Name)
	assert.Equal(t, "Rear Left Motor Speed", props[1].Name)
	assert.Equal(t, "Front Right Motor Speed", props[2].Name)
	assert.Equal(t, "Rear Right Motor Speed", props[3].Name)
	for _, prop := range props {
		assert.Equal(t, 0.5, prop.Value)
	}
}

func expectedKillough(x, y, rotation, gyroAngle float64, angles [3]float64) []float64 {
	input := Vector2d{X: x, Y: y}
	if gyroAngle != 0 {
		input.Rotate(-gyroAngle)
	}
	speeds := make([]float64, 3)
	for i, angle := range angles {
		wheel := Vector2d{X: math.Cos(angle * math.Pi / 180), Y: math.Sin(angle * math.Pi / 180)}
		speeds[i] = input.X*wheel.X + input.Y*wheel.Y + rotation
	}
	Normalize(speeds)
	return speeds
}

func TestKilloughDriveCartesian(t *testing.T) {
	angles := [3]float64{DefaultLeftMotorAngle, DefaultRightMotorAngle, DefaultBackMotorAngle}
	tests := []struct {
		name                      string
		x, y, rotation, gyroAngle float64
	}{
		{"zero", 0, 0, 0, 0},
		{"forward", 0.5, 0, 0, 0},
		{"strafe", 0, 0.5, 0, 0},
		{"rotate", 0, 0, 0.4, 0},
		{"mixed", 0.3, -0.4, 0.2, 0},
		{"saturated", 1, 1, 1, 0},
		{"field oriented", 0.6, 0.2, -0.1, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, motors := newTestKillough(t, WithDeadband(0))
			require.NoError(t, d.DriveCartesian(tt.x, tt.y, tt.rotation, tt.gyroAngle))
			assertSpeeds(t, expectedKillough(tt.x, tt.y, tt.rotation, tt.gyroAngle, angles), motors)
			for _, speed := range sets(motors) {
				assert.LessOrEqual(t, math.Abs(speed), 1.0+delta)
			}
		})
	}
}

func TestKilloughDriveGeometry(t *testing.T) {
	d, motors := newTestKillough(t, WithDeadband(0))
	require.NoError(t, d.DriveCartesian(0.5, 0, 0, 0))
	assertSpeeds(t, []float64{0.25, 0.25, -0.5}, motors)

	d, motors = newTestKillough(t, WithDeadband(0), WithWheelAngles(90, -90, 0))
	require.NoError(t, d.DriveCartesian(0.5, 0.25, 0, 0))
	assertSpeeds(t, []float64{0.25, -0.25, 0.5}, motors)
}

func TestKilloughRotationNotDeadbanded(t *testing.T) {
	d, motors := newTestKillough(t)
	require.NoError(t, d.DriveCartesian(0.01, 0.01, 0.01, 0))
	// translation falls inside the deadband, rotation does not
	assertSpeeds(t, []float64{0.01, 0.01, 0.01}, motors)

	require.NoError(t, d.DriveCartesian(0, 0, 3, 0))
	assertSpeeds(t, []float64{1, 1, 1}, motors)
}

func TestKilloughDrivePolar(t *testing.T) {
	d, motors := newTestKillough(t, WithDeadband(0))
	require.NoError(t, d.DrivePolar(0.5, 30, 0.1))

	x := 0.5 * math.Cos(30*math.Pi/180)
	y := 0.5 * math.Sin(30*math.Pi/180)
	angles := [3]float64{DefaultLeftMotorAngle, DefaultRightMotorAngle, DefaultBackMotorAngle}
	assertSpeeds(t, expectedKillough(x, y, 0.1, 0, angles), motors)
}

func TestKilloughStopMotor(t *testing.T) {
	d, motors := newTestKillough(t)
	assert.Equal(t, "Killough Drive", d.Description())
	require.NoError(t, d.DriveCartesian(0.3, 0.4, -0.2, 10))
	require.NoError(t, d.StopMotor())
	for i := range motors {
		assert.Equal(t, 1, motors[i].stops, "motor %d", i)
	}
}
