package rover

import (
	"math"
	"slices"

	"github.com/Speshl/gorrc_drive/internal/models"
)

func (c *RoverState) upShift() {
	if c.Gear < TopGear {
		c.Gear++
	}
}

func (c *RoverState) downShift() {
	if c.Gear > NeutralGear {
		c.Gear--
	}
}

func (c *RoverState) cycleMode() {
	if len(c.Modes) == 0 {
		return
	}
	index := slices.Index(c.Modes, c.Mode)
	c.Mode = c.Modes[(index+1)%len(c.Modes)]
}

func (c *RoverState) toggleSquare() {
	c.SquareInputs = !c.SquareInputs
}

func (c *RoverState) mapAxes(newState models.ControlState) {
	c.Rotation = newState.Axis(RotationAxis)
	c.Forward = newState.Axis(ForwardAxis)
	c.Strafe = newState.Axis(StrafeAxis)
	c.Right = newState.Axis(RightAxis)
	c.QuickTurn = newState.Button(QuickTurn)
}

func (c *RoverState) center() {
	c.Forward = 0.0
	c.Rotation = 0.0
	c.Strafe = 0.0
	c.Right = 0.0
	c.QuickTurn = false
	c.Gear = NeutralGear
}

// maxOutput is the drive output cap for the current gear. Neutral and unknown
// gears give 0.
func (c *RoverState) maxOutput() float64 {
	ratio, ok := c.Ratios[c.Gear]
	if !ok {
		return 0.0
	}
	return ratio.Max
}

// polar converts the translation sticks to a magnitude and an angle in degrees
// clockwise from forward.
func (c *RoverState) polar() (float64, float64) {
	magnitude := math.Min(math.Hypot(c.Forward, c.Strafe), 1.0)
	angle := math.Atan2(c.Strafe, c.Forward) * (180.0 / math.Pi)
	return magnitude, angle
}
