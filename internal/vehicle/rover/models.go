package rover

import (
	"sync"

	"github.com/Speshl/gorrc_drive/internal/command"
	"github.com/Speshl/gorrc_drive/internal/config"
	"github.com/Speshl/gorrc_drive/internal/drive"
	"github.com/Speshl/gorrc_drive/internal/vehicle"
	"github.com/prometheus/procfs"
)

const (
	MaxSeats = 2

	//Axis Maps
	RotationAxis = 0
	ForwardAxis  = 1
	StrafeAxis   = 2
	RightAxis    = 3 // right stick for tank

	//Button Maps
	UpShift      = 3
	DownShift    = 4
	QuickTurn    = 5 // held
	CycleMode    = 6
	ToggleSquare = 7

	//Drive Modes
	ModeTank      = "tank"
	ModeArcade    = "arcade"
	ModeCurvature = "curvature"
	ModeCartesian = "cartesian"
	ModePolar     = "polar"

	NeutralGear = 0
	TopGear     = 6
)

var (
	DifferentialModes = []string{ModeTank, ModeArcade, ModeCurvature}
	HolonomicModes    = []string{ModeCartesian, ModePolar}
)

type Ratio struct {
	Name string
	Max  float64
}

type Rover struct {
	cfg           config.RoverConfig
	lock          sync.Mutex
	seats         []*vehicle.VehicleSeat[RoverState]
	state         RoverState
	commandDriver command.CommandDriverIFace
	drive         drive.Drive
	motorNames    []string

	netInfo    procfs.NetDevLine
	readNetDev func() (procfs.NetDev, error)
}

// RoverState is the operator intent for one control cycle. Inputs are raw
// stick values; the drive applies deadband, limits and squaring.
type RoverState struct {
	Forward  float64
	Rotation float64
	Strafe   float64
	Right    float64

	QuickTurn    bool
	SquareInputs bool

	Gear   int
	Ratios map[int]Ratio

	Mode  string
	Modes []string

	// last commanded wheel speeds, for the hud
	Outputs []drive.Property
}
