package rover

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Speshl/gorrc_drive/internal/command"
	"github.com/Speshl/gorrc_drive/internal/config"
	"github.com/Speshl/gorrc_drive/internal/drive"
	"github.com/Speshl/gorrc_drive/internal/models"
	"github.com/Speshl/gorrc_drive/internal/vehicle"
	"github.com/prometheus/procfs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ControlInterval = 33 * time.Millisecond // 30hz
	NetInterval     = 1 * time.Second
)

var ErrUnsupportedMode = errors.New("drive mode not supported by topology")

func NewRover(cfg config.RoverConfig, commandDriver command.CommandDriverIFace, seats []models.Seat) (*Rover, error) {
	zap.S().Infof("setting up rover with %d seats", len(seats))

	topology := drive.Topology(cfg.DriveCfg.Topology)
	names, err := motorNames(topology, cfg.DriveCfg)
	if err != nil {
		return nil, err
	}

	motors := make([]drive.MotorController, 0, len(names))
	for _, name := range names {
		motors = append(motors, command.NewMotor(commandDriver, name))
	}

	robotDrive, err := drive.New(topology, motors,
		drive.WithDeadband(cfg.DriveCfg.Deadband),
		drive.WithExpiration(cfg.DriveCfg.Expiration),
		drive.WithSafetyEnabled(cfg.DriveCfg.SafetyEnabled),
		drive.WithWheelAngles(cfg.DriveCfg.LeftMotorAngle, cfg.DriveCfg.RightMotorAngle, cfg.DriveCfg.BackMotorAngle),
	)
	if err != nil {
		return nil, fmt.Errorf("failed building %s drive: %w", topology, err)
	}

	modes := DifferentialModes
	if _, ok := robotDrive.(drive.Holonomic); ok {
		modes = HolonomicModes
	}

	mode := cfg.DriveCfg.Mode
	if !slices.Contains(modes, mode) {
		zap.S().Warnf("%s: %s drive can not use mode %q, using %q", ErrUnsupportedMode, topology, mode, modes[0])
		mode = modes[0]
	}

	return &Rover{
		cfg:           cfg,
		commandDriver: commandDriver,
		drive:         robotDrive,
		state:         NewRoverState(cfg, mode, modes),
		seats:         NewRoverSeats(seats),
		motorNames:    names,
		readNetDev:    readSelfNetDev,
	}, nil
}

// motorNames lists the command channel for each wheel in the order drive.New
// expects for the topology.
func motorNames(topology drive.Topology, cfg config.DriveConfig) ([]string, error) {
	switch topology {
	case drive.TopologyDifferential:
		return []string{cfg.LeftMotor, cfg.RightMotor}, nil
	case drive.TopologyKillough:
		return []string{cfg.LeftMotor, cfg.RightMotor, cfg.BackMotor}, nil
	case drive.TopologyMecanum:
		return []string{cfg.FrontLeftMotor, cfg.RearLeftMotor, cfg.FrontRightMotor, cfg.RearRightMotor}, nil
	}
	return nil, fmt.Errorf("%w: %q", drive.ErrUnknownTopology, topology)
}

// servoChecker is implemented by command drivers that know their channels.
type servoChecker interface {
	HasServo(name string) bool
}

// missingMotors lists wheel names the command driver has no channel for.
// Commands to them are dropped, so those wheels never move.
func (c *Rover) missingMotors() []string {
	checker, ok := c.commandDriver.(servoChecker)
	if !ok {
		return nil
	}

	var missing []string
	for _, name := range c.motorNames {
		if !checker.HasServo(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func NewRoverState(cfg config.RoverConfig, mode string, modes []string) RoverState {
	return RoverState{
		Gear:         NeutralGear,
		Mode:         mode,
		Modes:        modes,
		SquareInputs: cfg.DriveCfg.SquareInputs,

		Ratios: map[int]Ratio{
			0: {Name: "N", Max: 0.0},
			1: {Name: "1", Max: cfg.Gear1Max},
			2: {Name: "2", Max: cfg.Gear2Max},
			3: {Name: "3", Max: cfg.Gear3Max},
			4: {Name: "4", Max: cfg.Gear4Max},
			5: {Name: "5", Max: cfg.Gear5Max},
			6: {Name: "6", Max: cfg.Gear6Max},
		},
	}
}

func NewRoverSeats(seats []models.Seat) []*vehicle.VehicleSeat[RoverState] {
	vehicleSeats := make([]*vehicle.VehicleSeat[RoverState], 0, len(seats))
	for i := range seats {
		switch i {
		case 0:
			zap.S().Info("setting up driver seat")
			vehicleSeats = append(vehicleSeats, NewDriverSeat(&seats[i]))
		case 1:
			zap.S().Info("setting up passenger seat")
			vehicleSeats = append(vehicleSeats, NewPassengerSeat(&seats[i]))
		default:
			zap.S().Warnf("rover supports %d seats, ignoring seat %d", MaxSeats, i)
		}
	}
	return vehicleSeats
}

func readSelfNetDev() (procfs.NetDev, error) {
	p, err := procfs.Self()
	if err != nil {
		return nil, fmt.Errorf("procfs could not get process: %w", err)
	}
	return p.NetDev()
}

func (c *Rover) Init() error {
	err := c.commandDriver.Init()
	if err != nil {
		return fmt.Errorf("failed initializing rover command interface: %w", err)
	}

	for _, name := range c.missingMotors() {
		zap.S().Warnf("no servo configured for %s drive motor %q, it will not move", c.cfg.DriveCfg.Topology, name)
	}

	for i := range c.seats {
		err = c.seats[i].Init()
		if err != nil {
			return err
		}
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	return c.drive.StopMotor()
}

func (c *Rover) Stop() error {
	zap.S().Info("stopping rover")
	c.lock.Lock()
	defer c.lock.Unlock()

	var errs []error
	err := c.drive.StopMotor()
	if err != nil {
		errs = append(errs, fmt.Errorf("failed stopping drive: %w", err))
	}
	err = c.commandDriver.Stop()
	if err != nil {
		errs = append(errs, fmt.Errorf("failed stopping command driver: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Rover) Start(ctx context.Context) error {
	zap.S().Infof("starting rover with %s", c.drive.Description())
	errGroup, errGroupCtx := errgroup.WithContext(ctx)

	defer func() {
		err := c.Stop()
		if err != nil {
			zap.S().Errorf("failed stopping rover: %s", err)
		}
	}()

	for i := range c.seats {
		seatNum := i
		errGroup.Go(func() error {
			return c.seats[seatNum].Start(errGroupCtx)
		})
	}

	errGroup.Go(func() error {
		commandTicker := time.NewTicker(ControlInterval)
		defer commandTicker.Stop()
		for {
			select {
			case <-errGroupCtx.Done():
				zap.S().Infof("stopping rover state syncer: %s", errGroupCtx.Err())
				return errGroupCtx.Err()
			case <-commandTicker.C:
				err := c.step()
				if err != nil {
					return fmt.Errorf("failed applying rover state: %w", err)
				}
			}
		}
	})

	errGroup.Go(func() error {
		return c.watchdog(errGroupCtx)
	})

	errGroup.Go(func() error {
		netTicker := time.NewTicker(NetInterval)
		defer netTicker.Stop()
		for {
			select {
			case <-errGroupCtx.Done():
				return errGroupCtx.Err()
			case <-netTicker.C:
				c.updateNetInfo()
			}
		}
	})

	err := errGroup.Wait()
	if err != nil {
		return fmt.Errorf("rover error group closed: %w", err)
	}
	return nil
}

// step runs one control cycle: every seat folds its command into the state,
// the merged state goes to the drive and the huds are refreshed.
func (c *Rover) step() error {
	c.lock.Lock()
	current := c.state
	c.lock.Unlock()

	statesWithNewCommand := make([]RoverState, 0, len(c.seats))
	for i := range c.seats {
		statesWithNewCommand = append(statesWithNewCommand, c.seats[i].ApplyCommand(current))
	}

	err := c.applyState(c.mergeSeatStates(statesWithNewCommand))
	if err != nil {
		return err
	}

	c.lock.Lock()
	state := c.state
	netInfo := c.netInfo
	c.lock.Unlock()
	for i := range c.seats {
		c.seats[i].UpdateHud(state, netInfo)
	}
	return nil
}

// watchdog checks the drive at half its expiration so a stalled control loop
// stops the motors.
func (c *Rover) watchdog(ctx context.Context) error {
	interval := c.cfg.DriveCfg.Expiration / 2
	if interval <= 0 {
		interval = drive.DefaultExpiration / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.lock.Lock()
			err := c.drive.Check()
			c.lock.Unlock()
			if errors.Is(err, drive.ErrMotorSafetyTimeout) {
				zap.S().Warnf("%s: motors stopped", err)
			} else if err != nil {
				return err
			}
		}
	}
}

func (c *Rover) updateNetInfo() {
	netDev, err := c.readNetDev()
	if err != nil {
		zap.S().Warnf("failed getting netstat: %s", err)
		return
	}

	stats, ok := netDev[c.cfg.NetInterface]
	if !ok {
		zap.S().Debugf("no netstat for interface %s", c.cfg.NetInterface)
		return
	}

	c.lock.Lock()
	c.netInfo = stats
	c.lock.Unlock()
}

// mergeSeatStates merges multiple states into one state. Only the driver seat
// has controls so its state wins.
func (c *Rover) mergeSeatStates(states []RoverState) RoverState {
	if len(states) < 1 {
		zap.S().Debug("no rover states given, so centering the current one")
		c.lock.Lock()
		defer c.lock.Unlock()
		state := c.state
		state.center()
		return state
	}

	return states[0]
}

func (c *Rover) applyState(state RoverState) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.state = state
	c.drive.SetMaxOutput(state.maxOutput())

	err := c.driveState(state)
	c.state.Outputs = c.drive.Properties()
	if err != nil {
		return fmt.Errorf("failed driving rover in %s mode: %w", state.Mode, err)
	}
	return nil
}

func (c *Rover) driveState(state RoverState) error {
	switch state.Mode {
	case ModeCartesian:
		return c.drive.DriveCartesian(state.Forward, state.Strafe, state.Rotation, 0.0)
	case ModePolar:
		holonomic, ok := c.drive.(drive.Holonomic)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnsupportedMode, state.Mode)
		}
		magnitude, angle := state.polar()
		return holonomic.DrivePolar(magnitude, angle, state.Rotation)
	}

	differential, ok := c.drive.(*drive.DifferentialDrive)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, state.Mode)
	}
	switch state.Mode {
	case ModeTank:
		return differential.TankDrive(state.Forward, state.Right, state.SquareInputs)
	case ModeArcade:
		return differential.ArcadeDrive(state.Forward, state.Rotation, state.SquareInputs)
	case ModeCurvature:
		return differential.CurvatureDrive(state.Forward, state.Rotation, state.QuickTurn)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedMode, state.Mode)
}

func (c *Rover) State() RoverState {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

func (c *Rover) Properties() []drive.Property {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.drive.Properties()
}

var _ vehicle.Vehicle = (*Rover)(nil)
