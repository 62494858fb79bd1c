package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().ServerCfg, cfg.ServerCfg)
	assert.Equal(t, DefaultConfig().RoverCfg, cfg.RoverCfg)
	assert.Equal(t, byte(DefaultAddress), cfg.CommandCfg.Address)
	assert.Empty(t, cfg.CommandCfg.ServoCfgs)
}

func TestGetConfigEnv(t *testing.T) {
	t.Setenv("GORRC_SERVER", "10.0.0.2:8181")
	t.Setenv("GORRC_CARPASSWORD", "HunTer2")
	t.Setenv("GORRC_SEATCOUNT", "2")
	t.Setenv("GORRC_ADDRESS", "0x41")
	t.Setenv("GORRC_DRIVE_TOPOLOGY", "Mecanum")
	t.Setenv("GORRC_DRIVE_DEADBAND", "0.1")
	t.Setenv("GORRC_DRIVE_EXPIRATION", "250ms")
	t.Setenv("GORRC_DRIVE_SQUAREINPUTS", "false")
	t.Setenv("GORRC_GEAR3_MAX", "0.55")
	t.Setenv("GORRC_SERVO0_NAME", "front_left")
	t.Setenv("GORRC_SERVO0_INVERTED", "true")
	t.Setenv("GORRC_SERVO3_NAME", "rear_right")
	t.Setenv("GORRC_SERVO3_CHANNEL", "7")

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.2:8181", cfg.ServerCfg.Server)
	assert.Equal(t, "HunTer2", cfg.ServerCfg.Password)
	assert.Equal(t, 2, cfg.ServerCfg.SeatCount)
	assert.Equal(t, byte(0x41), cfg.CommandCfg.Address)
	assert.Equal(t, "mecanum", cfg.RoverCfg.DriveCfg.Topology)
	assert.Equal(t, 0.1, cfg.RoverCfg.DriveCfg.Deadband)
	assert.Equal(t, 250*time.Millisecond, cfg.RoverCfg.DriveCfg.Expiration)
	assert.False(t, cfg.RoverCfg.DriveCfg.SquareInputs)
	assert.Equal(t, 0.55, cfg.RoverCfg.Gear3Max)

	require.Len(t, cfg.CommandCfg.ServoCfgs, 2)
	assert.Equal(t, ServoConfig{
		Name:     "front_left",
		Inverted: true,
		Channel:  0,
		MaxPulse: DefaultMaxPulse,
		MinPulse: DefaultMinPulse,
	}, cfg.CommandCfg.ServoCfgs[0])
	assert.Equal(t, "rear_right", cfg.CommandCfg.ServoCfgs[1].Name)
	assert.Equal(t, 7, cfg.CommandCfg.ServoCfgs[1].Channel)
}

func TestGetConfigBadEnvKeepsDefault(t *testing.T) {
	t.Setenv("GORRC_SEATCOUNT", "two")
	t.Setenv("GORRC_DRIVE_DEADBAND", "small")
	t.Setenv("GORRC_DRIVE_SAFETY", "maybe")
	t.Setenv("GORRC_HEALTHINTERVAL", "soon")

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultSeatCount, cfg.ServerCfg.SeatCount)
	assert.Equal(t, DefaultDeadband, cfg.RoverCfg.DriveCfg.Deadband)
	assert.Equal(t, DefaultSafetyEnabled, cfg.RoverCfg.DriveCfg.SafetyEnabled)
	assert.Equal(t, DefaultHealthInterval, cfg.ServerCfg.HealthInterval)
}

const testConfigFile = `
server:
  server: robots.example.com:8181
  seat_count: 1
command:
  driver: pipwm
  servos:
    - name: left
      channel: 0
      max_pulse: 2000
      min_pulse: 1000
    - name: right
      channel: 1
      max_pulse: 2000
      min_pulse: 1000
      inverted: true
rover:
  gear1_max: 0.1
  drive:
    topology: killough
    mode: polar
    expiration: 150ms
    back_motor_angle: 270
`

func TestGetConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gorrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigFile), 0o600))
	t.Setenv("GORRC_CONFIGFILE", path)
	t.Setenv("GORRC_DRIVE_MODE", "cartesian")

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, "robots.example.com:8181", cfg.ServerCfg.Server)
	assert.Equal(t, DefaultStunServer, cfg.ServerCfg.StunServer, "keys missing from the file keep defaults")
	assert.Equal(t, "pipwm", cfg.CommandCfg.CommandDriver)
	require.Len(t, cfg.CommandCfg.ServoCfgs, 2)
	assert.True(t, cfg.CommandCfg.ServoCfgs[1].Inverted)
	assert.Equal(t, 2000.0, cfg.CommandCfg.ServoCfgs[0].MaxPulse)

	assert.Equal(t, 0.1, cfg.RoverCfg.Gear1Max)
	assert.Equal(t, DefaultGear2Max, cfg.RoverCfg.Gear2Max)
	assert.Equal(t, "killough", cfg.RoverCfg.DriveCfg.Topology)
	assert.Equal(t, "cartesian", cfg.RoverCfg.DriveCfg.Mode, "env overrides the file")
	assert.Equal(t, 150*time.Millisecond, cfg.RoverCfg.DriveCfg.Expiration)
	assert.Equal(t, 270.0, cfg.RoverCfg.DriveCfg.BackMotorAngle)
	assert.Equal(t, DefaultLeftMotorAngle, cfg.RoverCfg.DriveCfg.LeftMotorAngle)
}

func TestGetConfigMissingFile(t *testing.T) {
	t.Setenv("GORRC_CONFIGFILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := GetConfig()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGetConfigFileMixedCase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Pi")
	require.NoError(t, os.Mkdir(dir, 0o700))
	path := filepath.Join(dir, "GorrcRover.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rover:\n  drive:\n    topology: mecanum\n"), 0o600))
	t.Setenv("GORRC_CONFIGFILE", path)

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "mecanum", cfg.RoverCfg.DriveCfg.Topology)
}

func TestGetConfigLogHidesPassword(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	t.Setenv("GORRC_CARPASSWORD", "Sup3rSecret")
	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "Sup3rSecret", cfg.ServerCfg.Password)

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, "Sup3rSecret")
	}
	assert.Contains(t, cfg.ServerCfg.String(), "Password:[redacted]")
}

func TestServerConfigStringNoPassword(t *testing.T) {
	cfg := DefaultConfig().ServerCfg
	assert.Contains(t, cfg.String(), "Password: ")
	assert.NotContains(t, cfg.String(), "[redacted]")
}
