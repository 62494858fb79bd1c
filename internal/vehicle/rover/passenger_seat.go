package rover

import (
	"fmt"

	"github.com/Speshl/gorrc_drive/internal/models"
	"github.com/Speshl/gorrc_drive/internal/vehicle"
	"github.com/prometheus/procfs"
)

// The passenger rides along: it sees the hud but has no controls.
func NewPassengerSeat(seat *models.Seat) *vehicle.VehicleSeat[RoverState] {
	return vehicle.NewVehicleSeat[RoverState](seat, "passenger", passengerParser, passengerCenter, passengerHudUpdater)
}

func passengerParser(_, _ models.ControlState, state RoverState) RoverState {
	return state
}

func passengerCenter(state RoverState) RoverState {
	return state
}

func passengerHudUpdater(state RoverState, netInfo procfs.NetDevLine) models.Hud {
	return models.Hud{
		Lines: []string{
			netLine(netInfo),
			fmt.Sprintf("Gear:%s | Mode:%s", gearName(state), state.Mode),
		},
	}
}
