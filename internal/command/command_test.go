package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDriver struct {
	cmds []DriverCommand
	err  error
}

func (f *fakeDriver) Init() error { return nil }
func (f *fakeDriver) Stop() error { return nil }

func (f *fakeDriver) Set(cmd DriverCommand) error {
	f.cmds = append(f.cmds, cmd)
	return f.err
}

func (f *fakeDriver) SetMany(cmds []DriverCommand) error {
	for i := range cmds {
		if err := f.Set(cmds[i]); err != nil {
			return err
		}
	}
	return nil
}

func TestMapToRange(t *testing.T) {
	assert.Equal(t, 0.5, MapToRange(0, -1, 1, 0, 1))
	assert.Equal(t, 1.0, MapToRange(1, -1, 1, 0, 1))
	assert.Equal(t, 0.0, MapToRange(-1, -1, 1, 0, 1))
	assert.Equal(t, 1.0, MapToRange(3, -1, 1, 0, 1), "clamped high")
	assert.Equal(t, 0.0, MapToRange(-3, -1, 1, 0, 1), "clamped low")
	assert.Equal(t, 1500.0, MapToRange(0, -1, 1, 1000, 2000))
}

func TestMotor(t *testing.T) {
	driver := &fakeDriver{}
	motor := NewMotor(driver, "left")
	assert.Equal(t, "left", motor.Name())

	require.NoError(t, motor.Set(0.25))
	require.NoError(t, motor.StopMotor())

	assert.Equal(t, []DriverCommand{
		{Name: "left", Value: 0.25, Min: MinSpeed, Max: MaxSpeed},
		{Name: "left", Value: 0.0, Min: MinSpeed, Max: MaxSpeed},
	}, driver.cmds)
}

func TestMotorError(t *testing.T) {
	driverErr := errors.New("i2c write failed")
	motor := NewMotor(&fakeDriver{err: driverErr}, "back")

	err := motor.Set(1)
	require.ErrorIs(t, err, driverErr)
	assert.Contains(t, err.Error(), "back")
}
