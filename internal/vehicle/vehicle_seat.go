package vehicle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Speshl/gorrc_drive/internal/models"
	"github.com/prometheus/procfs"
	"go.uber.org/zap"
)

const (
	SafetyTime = 200 * time.Millisecond
	MaxLatency = int64(200) // ms between consecutive commands
)

type SeatParser[T any] func(oldCommand, newCommand models.ControlState, state T) T
type SeatCenterer[T any] func(state T) T
type HudUpdater[T any] func(state T, netInfo procfs.NetDevLine) models.Hud

type VehicleSeat[T any] struct {
	lock sync.RWMutex
	seat *models.Seat

	seatCenterer      SeatCenterer[T]
	seatCommandParser SeatParser[T]
	hudUpdater        HudUpdater[T]

	seatType string
	active   bool

	buttonMasks []uint32

	nextCommand     models.ControlState
	lastCommand     models.ControlState
	lastCommandTime time.Time
}

func NewVehicleSeat[T any](seat *models.Seat, seatType string, parser SeatParser[T], centerer SeatCenterer[T], hudUpdater HudUpdater[T]) *VehicleSeat[T] {
	return &VehicleSeat[T]{
		seat:              seat,
		seatCommandParser: parser,
		seatCenterer:      centerer,
		hudUpdater:        hudUpdater,
		seatType:          seatType,
		active:            false,
		buttonMasks:       BuildButtonMasks(),
	}
}

func (c *VehicleSeat[T]) Init() error {
	if c.seat == nil {
		return fmt.Errorf("%s seat has no transport seat", c.seatType)
	}
	return nil
}

func (c *VehicleSeat[T]) SeatType() string {
	return c.seatType
}

func (c *VehicleSeat[T]) IsActive() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.active
}

func (c *VehicleSeat[T]) Start(ctx context.Context) error {
	zap.S().Infof("starting %s seat", c.seatType)

	safetyTicker := time.NewTicker(SafetyTime)
	defer safetyTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			zap.S().Infof("stopping %s seat state syncer: %s", c.seatType, ctx.Err().Error())
			return ctx.Err()
		case now := <-safetyTicker.C:
			c.expire(now)
		case command, ok := <-c.seat.CommandChannel:
			if !ok {
				return fmt.Errorf("%s seat command channel closed", c.seatType)
			}
			c.receive(command, time.Now())
		}
	}
}

func (c *VehicleSeat[T]) expire(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.active && now.Sub(c.lastCommandTime) > SafetyTime {
		zap.S().Debugf("setting %s seat inactive due to time since last command", c.seatType)
		c.active = false
	}
}

// receive keeps the newest command by client timestamp.
func (c *VehicleSeat[T]) receive(command models.ControlState, now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.nextCommand.TimeStamp == 0 {
		c.nextCommand = command
	}

	if command.TimeStamp >= c.nextCommand.TimeStamp {
		c.nextCommand = command
		c.lastCommandTime = now
		c.active = true
	}
}

func (c *VehicleSeat[T]) ApplyCommand(state T) T {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.active {
		return c.seatCenterer(state)
	}

	c.nextCommand.Buttons = ParseButtons(c.nextCommand.BitButton, c.buttonMasks)
	if c.lastCommand.TimeStamp == 0 {
		zap.S().Debugf("%s seat skipping first command", c.seatType)
		c.lastCommand = c.nextCommand
		return state
	}

	if c.nextCommand.TimeStamp-c.lastCommand.TimeStamp > MaxLatency {
		zap.S().Debugf("%s seat skipping command due to latency", c.seatType)
		c.lastCommand = c.nextCommand
		return state
	}

	newState := c.seatCommandParser(c.lastCommand, c.nextCommand, state)
	c.lastCommand = c.nextCommand
	return newState
}

func (c *VehicleSeat[T]) UpdateHud(state T, netInfo procfs.NetDevLine) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if !c.active {
		return
	}

	select {
	case c.seat.HudChannel <- c.hudUpdater(state, netInfo):
	default:
		zap.S().Debugf("%s seat hud channel full, skipping", c.seatType)
	}
}

func NewPress(oldState, newState models.ControlState, buttonIndex int, f func()) (bool, error) {
	if len(newState.Buttons) != len(oldState.Buttons) {
		return false, fmt.Errorf("length of buttons states mismatched")
	}

	if buttonIndex < 0 || buttonIndex >= len(oldState.Buttons) {
		return false, fmt.Errorf("buttonIndex out of bounds - buttonIndex: %d maxIndex: %d", buttonIndex, len(oldState.Buttons)-1)
	}

	if newState.Buttons[buttonIndex] && !oldState.Buttons[buttonIndex] {
		f()
		return true, nil
	}
	return false, nil
}

func ParseButtons(bitButton uint32, masks []uint32) []bool {
	returnvalue := make([]bool, len(masks))
	for i := range masks {
		returnvalue[i] = ((bitButton & masks[i]) != 0) //Check if bitbutton and mask both have bits in same place
	}
	return returnvalue
}
