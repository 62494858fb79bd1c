package pca9685

import (
	"fmt"

	"github.com/Speshl/gorrc_drive/internal/command"
	"github.com/Speshl/gorrc_drive/internal/config"
	"github.com/googolgl/go-i2c"
	pca "github.com/googolgl/go-pca9685"
	"go.uber.org/zap"
)

const (
	MaxValue = 1.0
	MinValue = 0.0
	MidValue = 0.5
	AcRange  = pca.ServoRangeDef

	MaxSupportedServos = 16
)

// fractionSetter is the part of a pca9685 servo the driver uses.
type fractionSetter interface {
	Fraction(float32) error
}

type CommandDriver struct {
	cfg    config.CommandConfig
	servos map[string]Servo
	driver *pca.PCA9685
}

type Servo struct {
	name     string
	inverted bool
	offset   float64
	servo    fractionSetter
}

func NewCommand(cfg config.CommandConfig) *CommandDriver {
	return &CommandDriver{
		cfg: cfg,
	}
}

func (c *CommandDriver) Init() error {
	i2c, err := i2c.New(c.cfg.Address, c.cfg.I2CDevice)
	if err != nil {
		return fmt.Errorf("error starting i2c with address - %w", err)
	}

	c.driver, err = pca.New(i2c, nil)
	if err != nil {
		return fmt.Errorf("error getting servo driver - %w", err)
	}

	servos := make(map[string]Servo, MaxSupportedServos)
	for i := range c.cfg.ServoCfgs {
		if i >= MaxSupportedServos {
			break
		}
		name := c.cfg.ServoCfgs[i].Name
		servos[name] = Servo{
			name:     name,
			inverted: c.cfg.ServoCfgs[i].Inverted,
			offset:   float64(c.cfg.ServoCfgs[i].Offset) / 100,
			servo: c.driver.ServoNew(c.cfg.ServoCfgs[i].Channel, &pca.ServOptions{
				AcRange:  AcRange,
				MinPulse: float32(c.cfg.ServoCfgs[i].MinPulse),
				MaxPulse: float32(c.cfg.ServoCfgs[i].MaxPulse),
			}),
		}
		zap.S().Infof("servo added: %s", name)
	}
	c.servos = servos
	return c.CenterAll()
}

func (c *CommandDriver) Stop() error {
	zap.S().Info("stopping pca9685 command driver")
	return c.CenterAll()
}

// CenterAll puts every channel at mid pulse, which is neutral for an ESC.
func (c *CommandDriver) CenterAll() error {
	zap.S().Info("centering all servos")
	for name := range c.servos {
		err := c.servos[name].servo.Fraction(MidValue)
		if err != nil {
			return fmt.Errorf("failed centering servo %s: %w", name, err)
		}
	}
	return nil
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
	if !ok {
		return nil
	}

	mappedValue := c.fraction(val, cmd)
	err := val.servo.Fraction(float32(mappedValue))
	if err != nil {
		return fmt.Errorf("failed setting servo value - name: %s value: %.2f - error: %w", cmd.Name, mappedValue, err)
	}
	return nil
}

func (c *CommandDriver) fraction(val Servo, cmd command.DriverCommand) float64 {
	mappedValue := command.MapToRange(cmd.Value+val.offset, cmd.Min, cmd.Max, MinValue, MaxValue)
	if val.inverted {
		mappedValue = MaxValue - mappedValue
	}
	return mappedValue
}
