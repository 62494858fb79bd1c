package rover

import (
	"fmt"
	"strings"

	"github.com/Speshl/gorrc_drive/internal/drive"
	"github.com/Speshl/gorrc_drive/internal/models"
	"github.com/Speshl/gorrc_drive/internal/vehicle"
	"github.com/prometheus/procfs"
	"go.uber.org/zap"
)

func NewDriverSeat(seat *models.Seat) *vehicle.VehicleSeat[RoverState] {
	return vehicle.NewVehicleSeat[RoverState](seat, "driver", driverParser, driverCenter, driverHudUpdater)
}

func driverParser(oldCommand, newCommand models.ControlState, state RoverState) RoverState {
	presses := map[int]func(){
		UpShift:      state.upShift,
		DownShift:    state.downShift,
		CycleMode:    state.cycleMode,
		ToggleSquare: state.toggleSquare,
	}
	for button, f := range presses {
		_, err := vehicle.NewPress(oldCommand, newCommand, button, f)
		if err != nil {
			zap.S().Warnf("driver seat failed reading button %d: %s", button, err)
		}
	}

	state.mapAxes(newCommand)
	return state
}

func driverCenter(state RoverState) RoverState {
	state.center()
	return state
}

func driverHudUpdater(state RoverState, netInfo procfs.NetDevLine) models.Hud {
	lines := make([]string, 3)

	lines[0] = netLine(netInfo)
	lines[1] = fmt.Sprintf("Gear:%s | Mode:%s | Sq:%t | Fwd:%.2f | Rot:%.2f | Str:%.2f",
		gearName(state),
		state.Mode,
		state.SquareInputs,
		state.Forward,
		state.Rotation,
		state.Strafe,
	)
	lines[2] = outputLine(state.Outputs)

	return models.Hud{
		Lines: lines,
	}
}

func netLine(netInfo procfs.NetDevLine) string {
	return fmt.Sprintf("RxPkt:%d | RxErr:%d | RxDrop: %d | TxPkt:%d | TxErr:%d | TxDrop: %d",
		netInfo.RxPackets,
		netInfo.RxErrors,
		netInfo.RxDropped,
		netInfo.TxPackets,
		netInfo.TxErrors,
		netInfo.TxDropped,
	)
}

func outputLine(outputs []drive.Property) string {
	parts := make([]string, 0, len(outputs))
	for _, output := range outputs {
		parts = append(parts, fmt.Sprintf("%s:%.2f", strings.TrimSuffix(output.Name, " Motor Speed"), output.Value))
	}
	return strings.Join(parts, " | ")
}

func gearName(state RoverState) string {
	ratio, ok := state.Ratios[state.Gear]
	if !ok {
		return "?"
	}
	return ratio.Name
}
