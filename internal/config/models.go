package config

import (
	"fmt"
	"time"
)

const (
	MaxSupportedServos = 16
	AppEnvBase         = "GORRC_"

	DefaultServer         = "127.0.0.1:8181"
	DefaultCarKey         = ""
	DefaultPassword       = ""
	DefaultSeatCount      = 1
	DefaultSilentConnect  = false
	DefaultDebug          = false
	DefaultConfigFile     = ""
	DefaultStunServer     = "stun:stun.l.google.com:19302"
	DefaultHealthInterval = 30 * time.Second

	DefaultMaxPulse = 2250 //2000
	DefaultMinPulse = 750  //1000
	DefaultInverted = false
	DefaultOffset   = 0

	// Default Command Options
	DefaultCommandDriver = "pca9685"
	DefaultAddress       = 0x40
	DefaultI2CDevice     = "/dev/i2c-1"

	DefaultNetInterface = "wlan0"

	// Default Drive Options
	DefaultTopology        = "differential"
	DefaultDriveMode       = "arcade"
	DefaultDeadband        = 0.02
	DefaultSquareInputs    = true
	DefaultSafetyEnabled   = true
	DefaultExpiration      = 100 * time.Millisecond
	DefaultLeftMotorAngle  = 60.0
	DefaultRightMotorAngle = -60.0
	DefaultBackMotorAngle  = 180.0

	DefaultLeftMotor       = "left"
	DefaultRightMotor      = "right"
	DefaultBackMotor       = "back"
	DefaultFrontLeftMotor  = "front_left"
	DefaultRearLeftMotor   = "rear_left"
	DefaultFrontRightMotor = "front_right"
	DefaultRearRightMotor  = "rear_right"

	// Gear ratios cap drive output
	DefaultGear1Max = 0.20
	DefaultGear2Max = 0.35
	DefaultGear3Max = 0.50
	DefaultGear4Max = 0.65
	DefaultGear5Max = 0.80
	DefaultGear6Max = 1.00
)

type Config struct {
	ServerCfg  ServerConfig  `yaml:"server"`
	CommandCfg CommandConfig `yaml:"command"`
	RoverCfg   RoverConfig   `yaml:"rover"`
	Debug      bool          `yaml:"debug"`
}

type ServerConfig struct {
	Server         string        `yaml:"server"`
	Key            string        `yaml:"key"`
	Password       string        `yaml:"password"`
	SeatCount      int           `yaml:"seat_count"`
	SilentConnect  bool          `yaml:"silent_connect"`
	StunServer     string        `yaml:"stun_server"`
	HealthInterval time.Duration `yaml:"health_interval"`
}

// String keeps the password out of logs.
func (c ServerConfig) String() string {
	type plain ServerConfig
	redacted := plain(c)
	if redacted.Password != "" {
		redacted.Password = "[redacted]"
	}
	return fmt.Sprintf("%+v", redacted)
}

type CommandConfig struct {
	CommandDriver string        `yaml:"driver"`
	Address       byte          `yaml:"address"`
	I2CDevice     string        `yaml:"i2c_device"`
	ServoCfgs     []ServoConfig `yaml:"servos"`
}

type ServoConfig struct {
	Name     string  `yaml:"name"`
	Inverted bool    `yaml:"inverted"`
	Channel  int     `yaml:"channel"`
	MaxPulse float64 `yaml:"max_pulse"`
	MinPulse float64 `yaml:"min_pulse"`
	Offset   int     `yaml:"mid_offset"`
}

type RoverConfig struct {
	VehicleConfig `yaml:",inline"`
	NetInterface  string      `yaml:"net_interface"` // reported on the hud
	DriveCfg      DriveConfig `yaml:"drive"`
}

type DriveConfig struct {
	Topology      string        `yaml:"topology"`
	Mode          string        `yaml:"mode"`
	Deadband      float64       `yaml:"deadband"`
	SquareInputs  bool          `yaml:"square_inputs"`
	SafetyEnabled bool          `yaml:"safety_enabled"`
	Expiration    time.Duration `yaml:"expiration"`

	// Killough wheel mounting angles, degrees from forward
	LeftMotorAngle  float64 `yaml:"left_motor_angle"`
	RightMotorAngle float64 `yaml:"right_motor_angle"`
	BackMotorAngle  float64 `yaml:"back_motor_angle"`

	// Servo names for each wheel
	LeftMotor       string `yaml:"left_motor"`
	RightMotor      string `yaml:"right_motor"`
	BackMotor       string `yaml:"back_motor"`
	FrontLeftMotor  string `yaml:"front_left_motor"`
	RearLeftMotor   string `yaml:"rear_left_motor"`
	FrontRightMotor string `yaml:"front_right_motor"`
	RearRightMotor  string `yaml:"rear_right_motor"`
}

type VehicleConfig struct {
	Gear1Max float64 `yaml:"gear1_max"`
	Gear2Max float64 `yaml:"gear2_max"`
	Gear3Max float64 `yaml:"gear3_max"`
	Gear4Max float64 `yaml:"gear4_max"`
	Gear5Max float64 `yaml:"gear5_max"`
	Gear6Max float64 `yaml:"gear6_max"`
}
