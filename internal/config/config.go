package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// GetConfig builds the config from defaults, then the optional yaml file named
// by GORRC_CONFIGFILE, then GORRC_ environment variables.
func GetConfig() (Config, error) {
	cfg := DefaultConfig()

	configFile := GetRawEnv("CONFIGFILE", DefaultConfigFile)
	if configFile != "" {
		err := LoadFile(configFile, &cfg)
		if err != nil {
			return cfg, err
		}
	}

	cfg = Config{
		ServerCfg:  GetServerConfig(cfg.ServerCfg),
		CommandCfg: GetCommandConfig(cfg.CommandCfg),
		RoverCfg:   GetRoverConfig(cfg.RoverCfg),
		Debug:      GetBoolEnv("DEBUG", cfg.Debug),
	}

	zap.S().Infof("app config: %+v", cfg)
	return cfg, nil
}

func DefaultConfig() Config {
	return Config{
		ServerCfg: ServerConfig{
			Server:         DefaultServer,
			Key:            DefaultCarKey,
			Password:       DefaultPassword,
			SeatCount:      DefaultSeatCount,
			SilentConnect:  DefaultSilentConnect,
			StunServer:     DefaultStunServer,
			HealthInterval: DefaultHealthInterval,
		},
		CommandCfg: CommandConfig{
			CommandDriver: DefaultCommandDriver,
			Address:       DefaultAddress,
			I2CDevice:     DefaultI2CDevice,
		},
		RoverCfg: RoverConfig{
			VehicleConfig: VehicleConfig{
				Gear1Max: DefaultGear1Max,
				Gear2Max: DefaultGear2Max,
				Gear3Max: DefaultGear3Max,
				Gear4Max: DefaultGear4Max,
				Gear5Max: DefaultGear5Max,
				Gear6Max: DefaultGear6Max,
			},
			NetInterface: DefaultNetInterface,
			DriveCfg: DriveConfig{
				Topology:        DefaultTopology,
				Mode:            DefaultDriveMode,
				Deadband:        DefaultDeadband,
				SquareInputs:    DefaultSquareInputs,
				SafetyEnabled:   DefaultSafetyEnabled,
				Expiration:      DefaultExpiration,
				LeftMotorAngle:  DefaultLeftMotorAngle,
				RightMotorAngle: DefaultRightMotorAngle,
				BackMotorAngle:  DefaultBackMotorAngle,
				LeftMotor:       DefaultLeftMotor,
				RightMotor:      DefaultRightMotor,
				BackMotor:       DefaultBackMotor,
				FrontLeftMotor:  DefaultFrontLeftMotor,
				RearLeftMotor:   DefaultRearLeftMotor,
				FrontRightMotor: DefaultFrontRightMotor,
				RearRightMotor:  DefaultRearRightMotor,
			},
		},
		Debug: DefaultDebug,
	}
}

// LoadFile overlays the yaml file at path onto cfg. Keys missing from the file
// keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed reading config file %s: %w", path, err)
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return fmt.Errorf("failed parsing config file %s: %w", path, err)
	}
	return nil
}

func GetServerConfig(base ServerConfig) ServerConfig {
	return ServerConfig{
		Server:         GetStringEnv("SERVER", base.Server),
		Key:            GetStringEnv("CARKEY", base.Key),
		Password:       GetRawEnv("CARPASSWORD", base.Password),
		SeatCount:      GetIntEnv("SEATCOUNT", base.SeatCount),
		SilentConnect:  GetBoolEnv("SILENTCONNECT", base.SilentConnect),
		StunServer:     GetStringEnv("STUNSERVER", base.StunServer),
		HealthInterval: GetDurationEnv("HEALTHINTERVAL", base.HealthInterval),
	}
}

func GetCommandConfig(base CommandConfig) CommandConfig {
	commandCfg := CommandConfig{
		CommandDriver: GetStringEnv("SERVODRIVER", base.CommandDriver),
		Address:       byte(GetIntEnv("ADDRESS", int(base.Address))),
		I2CDevice:     GetRawEnv("I2CDEVICE", base.I2CDevice),
		ServoCfgs:     make([]ServoConfig, 0, MaxSupportedServos),
	}

	for i := 0; i < MaxSupportedServos; i++ {
		envPrefix := fmt.Sprintf("SERVO%d_", i)
		servoCfg := ServoConfig{
			Name:     GetStringEnv(envPrefix+"NAME", ""),
			Channel:  GetIntEnv(envPrefix+"CHANNEL", i),
			MaxPulse: float64(GetIntEnv(envPrefix+"MAXPULSE", DefaultMaxPulse)),
			MinPulse: float64(GetIntEnv(envPrefix+"MINPULSE", DefaultMinPulse)),
			Inverted: GetBoolEnv(envPrefix+"INVERTED", DefaultInverted),
			Offset:   GetIntEnv(envPrefix+"MIDOFFSET", DefaultOffset),
		}

		if servoCfg.Name != "" {
			zap.S().Infof("found config for servo: %s", servoCfg.Name)
			commandCfg.ServoCfgs = append(commandCfg.ServoCfgs, servoCfg)
		}
	}

	// servos from the environment replace any from the config file
	if len(commandCfg.ServoCfgs) == 0 {
		commandCfg.ServoCfgs = append(commandCfg.ServoCfgs, base.ServoCfgs...)
	}
	return commandCfg
}

func GetRoverConfig(base RoverConfig) RoverConfig {
	return RoverConfig{
		VehicleConfig: GetVehicleConfig(base.VehicleConfig),
		NetInterface:  GetStringEnv("NETINTERFACE", base.NetInterface),
		DriveCfg:      GetDriveConfig(base.DriveCfg),
	}
}

func GetDriveConfig(base DriveConfig) DriveConfig {
	envPrefix := "DRIVE_"
	return DriveConfig{
		Topology:        GetStringEnv(envPrefix+"TOPOLOGY", base.Topology),
		Mode:            GetStringEnv(envPrefix+"MODE", base.Mode),
		Deadband:        GetFloatEnv(envPrefix+"DEADBAND", base.Deadband),
		SquareInputs:    GetBoolEnv(envPrefix+"SQUAREINPUTS", base.SquareInputs),
		SafetyEnabled:   GetBoolEnv(envPrefix+"SAFETY", base.SafetyEnabled),
		Expiration:      GetDurationEnv(envPrefix+"EXPIRATION", base.Expiration),
		LeftMotorAngle:  GetFloatEnv(envPrefix+"LEFT_ANGLE", base.LeftMotorAngle),
		RightMotorAngle: GetFloatEnv(envPrefix+"RIGHT_ANGLE", base.RightMotorAngle),
		BackMotorAngle:  GetFloatEnv(envPrefix+"BACK_ANGLE", base.BackMotorAngle),
		LeftMotor:       GetStringEnv(envPrefix+"LEFT_MOTOR", base.LeftMotor),
		RightMotor:      GetStringEnv(envPrefix+"RIGHT_MOTOR", base.RightMotor),
		BackMotor:       GetStringEnv(envPrefix+"BACK_MOTOR", base.BackMotor),
		FrontLeftMotor:  GetStringEnv(envPrefix+"FRONT_LEFT_MOTOR", base.FrontLeftMotor),
		RearLeftMotor:   GetStringEnv(envPrefix+"REAR_LEFT_MOTOR", base.RearLeftMotor),
		FrontRightMotor: GetStringEnv(envPrefix+"FRONT_RIGHT_MOTOR", base.FrontRightMotor),
		RearRightMotor:  GetStringEnv(envPrefix+"REAR_RIGHT_MOTOR", base.RearRightMotor),
	}
}

func GetVehicleConfig(base VehicleConfig) VehicleConfig {
	return VehicleConfig{
		Gear1Max: GetFloatEnv("GEAR1_MAX", base.Gear1Max),
		Gear2Max: GetFloatEnv("GEAR2_MAX", base.Gear2Max),
		Gear3Max: GetFloatEnv("GEAR3_MAX", base.Gear3Max),
		Gear4Max: GetFloatEnv("GEAR4_MAX", base.Gear4Max),
		Gear5Max: GetFloatEnv("GEAR5_MAX", base.Gear5Max),
		Gear6Max: GetFloatEnv("GEAR6_MAX", base.Gear6Max),
	}
}

func GetIntEnv(env string, defaultValue int) int {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseInt(strings.Trim(envValue, "\r"), 0, 32)
		if err != nil {
			zap.S().Warnf("%s not parsed - error: %s", env, err)
			return defaultValue
		} else {
			return int(value)
		}
	}
}

func GetBoolEnv(env string, defaultValue bool) bool {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseBool(strings.Trim(envValue, "\r"))
		if err != nil {
			zap.S().Warnf("%s not parsed - error: %s", env, err)
			return defaultValue
		} else {
			return value
		}
	}
}

func GetStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		return strings.ToLower(strings.Trim(envValue, "\r"))
	}
}

// GetRawEnv is GetStringEnv without the lower casing, for paths and secrets.
func GetRawEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	}
	return strings.Trim(envValue, "\r")
}

func GetFloatEnv(env string, defaultValue float64) float64 {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := strconv.ParseFloat(strings.Trim(envValue, "\r"), 64)
		if err != nil {
			zap.S().Warnf("%s not parsed - error: %s", env, err)
			return defaultValue
		}
		return value
	}
}

func GetDurationEnv(env string, defaultValue time.Duration) time.Duration {
	envValue, found := os.LookupEnv(AppEnvBase + env)
	if !found {
		return defaultValue
	} else {
		value, err := time.ParseDuration(strings.Trim(envValue, "\r"))
		if err != nil {
			zap.S().Warnf("%s not parsed - error: %s", env, err)
			return defaultValue
		}
		return value
	}
}
