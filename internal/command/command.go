package command

import "fmt"

const (
	MinSpeed = -1.0
	MaxSpeed = 1.0
)

type DriverCommand struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
}

type CommandDriverIFace interface {
	Init() error
	Set(DriverCommand) error
	SetMany([]DriverCommand) error
	Stop() error
}

// Motor is one named ESC channel on a command driver. It satisfies the drive
// package's motor controller.
type Motor struct {
	name   string
	driver CommandDriverIFace
}

func NewMotor(driver CommandDriverIFace, name string) *Motor {
	return &Motor{
		name:   name,
		driver: driver,
	}
}

func (m *Motor) Name() string {
	return m.name
}

func (m *Motor) Set(speed float64) error {
	err := m.driver.Set(DriverCommand{
		Name:  m.name,
		Value: speed,
		Min:   MinSpeed,
		Max:   MaxSpeed,
	})
	if err != nil {
		return fmt.Errorf("failed setting motor %s: %w", m.name, err)
	}
	return nil
}

// StopMotor returns the ESC to neutral.
func (m *Motor) StopMotor() error {
	return m.Set(0.0)
}

func MapToRange(value, min, max, minReturn, maxReturn float64) float64 {
	mappedValue := (maxReturn-minReturn)*(value-min)/(max-min) + minReturn

	if mappedValue > maxReturn {
		return maxReturn
	} else if mappedValue < minReturn {
		return minReturn
	} else {
		return mappedValue
	}
}
