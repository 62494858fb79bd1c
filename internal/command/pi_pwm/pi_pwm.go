package pipwm

import (
	"fmt"

	"github.com/Speshl/gorrc_drive/internal/command"
	"github.com/Speshl/gorrc_drive/internal/config"
	"github.com/stianeikeland/go-rpio/v4"
	"go.uber.org/zap"
)

const (
	Frequency          = 100000
	CycleLength        = uint32(2000)
	MaxSupportedServos = 4
)

var PinMap = []int{12, 13, 18, 19} // Servo0..Servo3, the hardware PWM capable pins

type dutyCycler interface {
	DutyCycle(dutyLen, cycleLen uint32)
}

type CommandDriver struct {
	cfg    config.CommandConfig
	servos map[string]Servo
}

type Servo struct {
	name     string
	inverted bool
	offset   float64
	servo    dutyCycler
	maxValue uint32
	minValue uint32
}

func NewCommand(cfg config.CommandConfig) *CommandDriver {
	return &CommandDriver{
		cfg: cfg,
	}
}

func (c *CommandDriver) Init() error {
	err := rpio.Open()
	if err != nil {
		return fmt.Errorf("failed opening rpio: %w", err)
	}

	servos := make(map[string]Servo, MaxSupportedServos)
	for i := range c.cfg.ServoCfgs {
		if i >= MaxSupportedServos {
			zap.S().Warnf("pi pwm supports %d servos, ignoring %s", MaxSupportedServos, c.cfg.ServoCfgs[i].Name)
			continue
		}

		pin := rpio.Pin(PinMap[i])
		pin.Mode(rpio.Pwm)
		pin.Freq(Frequency)

		name := c.cfg.ServoCfgs[i].Name
		servos[name] = Servo{
			name:     name,
			inverted: c.cfg.ServoCfgs[i].Inverted,
			offset:   float64(c.cfg.ServoCfgs[i].Offset) / 100,
			servo:    pin,
			maxValue: uint32(c.cfg.ServoCfgs[i].MaxPulse),
			minValue: uint32(c.cfg.ServoCfgs[i].MinPulse),
		}
		zap.S().Infof("servo added: %s", name)
	}
	c.servos = servos
	c.CenterAll()
	return nil
}

func (c *CommandDriver) Stop() error {
	c.CenterAll()
	err := rpio.Close()
	if err != nil {
		return fmt.Errorf("failed closing rpio: %w", err)
	}
	return nil
}

func (c *CommandDriver) CenterAll() {
	zap.S().Info("centering all servos")
	for i := range c.servos {
		midValue := (c.servos[i].maxValue + c.servos[i].minValue) / 2
		c.servos[i].servo.DutyCycle(midValue, CycleLength)
	}
}

// HasServo reports whether name has a configured channel. Valid after Init.
func (c *CommandDriver) HasServo(name string) bool {
	_, ok := c.servos[name]
	return ok
}

func (c *CommandDriver) SetMany(cmds []command.DriverCommand) error {
	for i := range cmds {
		err := c.Set(cmds[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *CommandDriver) Set(cmd command.DriverCommand) error {
	val, ok := c.servos[cmd.Name]
	if ok {
		val.servo.DutyCycle(c.dutyLength(val, cmd), CycleLength)
	}
	return nil
}

func (c *CommandDriver) dutyLength(val Servo, cmd command.DriverCommand) uint32 {
	mappedValue := command.MapToRange(cmd.Value+val.offset, cmd.Min, cmd.Max, float64(val.minValue), float64(val.maxValue))
	if val.inverted {
		mappedValue = float64(val.maxValue+val.minValue) - mappedValue
	}
	return uint32(mappedValue)
}
