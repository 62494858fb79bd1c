package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Speshl/gorrc_drive/internal/command"
	"github.com/Speshl/gorrc_drive/internal/command/pca9685"
	pipwm "github.com/Speshl/gorrc_drive/internal/command/pi_pwm"
	"github.com/Speshl/gorrc_drive/internal/config"
	"github.com/Speshl/gorrc_drive/internal/models"
	"github.com/Speshl/gorrc_drive/internal/vehicle"
	"github.com/Speshl/gorrc_drive/internal/vehicle/rover"
	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const SeatBufferSize = 100

var ErrUnknownCommandDriver = errors.New("unknown command driver")

type App struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	cfg    config.Config
	client *socketio.Client

	carInfo   models.Car
	trackInfo models.Track

	seats []models.Seat
	car   vehicle.Vehicle

	connLock  sync.Mutex
	userConns map[int]*Connection
}

func NewApp(cfg config.Config, client *socketio.Client) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	seats := make([]models.Seat, 0, cfg.ServerCfg.SeatCount)
	for i := 0; i < cfg.ServerCfg.SeatCount; i++ {
		seats = append(seats, models.NewSeat(i, SeatBufferSize))
	}

	commandDriver, err := NewCommandDriver(cfg.CommandCfg)
	if err != nil {
		cancel()
		return nil, err
	}

	car, err := rover.NewRover(cfg.RoverCfg, commandDriver, seats)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed creating rover: %w", err)
	}

	return &App{
		ctx:       ctx,
		ctxCancel: cancel,
		cfg:       cfg,
		client:    client,
		seats:     seats,
		car:       car,
		userConns: make(map[int]*Connection, len(seats)),
	}, nil
}

func NewCommandDriver(cfg config.CommandConfig) (command.CommandDriverIFace, error) {
	switch cfg.CommandDriver {
	case "pca9685":
		return pca9685.NewCommand(cfg), nil
	case "pipwm":
		return pipwm.NewCommand(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommandDriver, cfg.CommandDriver)
	}
}

func (a *App) RegisterHandlers() error {
	zap.S().Info("registering handlers")
	a.client.OnEvent("reply", func(s socketio.Conn, msg string) {
		zap.S().Infof("receive message /reply: %s", msg)
	})

	a.client.OnEvent("offer", a.onOffer)

	a.client.OnEvent("candidate", a.onICECandidate)

	a.client.OnEvent("register_success", a.onRegisterSuccess)

	zap.S().Info("attempting to connect to server...")
	err := a.client.Connect() //Client must have atleast 1 event handler to work
	if err != nil {
		return fmt.Errorf("error connecting to server - %w", err)
	}
	zap.S().Info("connected to server")
	return nil
}

func (a *App) Start() error {
	group, groupCtx := errgroup.WithContext(a.ctx)
	zap.S().Info("starting...")

	defer func() {
		zap.S().Info("stopping...")
		a.disconnectAll()
		err := a.client.Close()
		if err != nil {
			zap.S().Warnf("failed closing socket client: %s", err)
		}
	}()

	err := a.car.Init()
	if err != nil {
		return fmt.Errorf("failed initializing rover: %w", err)
	}

	//kill listener
	group.Go(func() error {
		signalChannel := make(chan os.Signal, 1)
		signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(signalChannel)
		select {
		case sig := <-signalChannel:
			zap.S().Infof("received signal: %s", sig)
			a.ctxCancel()
			return fmt.Errorf("received signal %s: %w", sig, context.Canceled)
		case <-groupCtx.Done():
			zap.S().Info("closing signal goroutine")
			return groupCtx.Err()
		}
	})

	//Start car
	group.Go(func() error {
		return a.car.Start(groupCtx)
	})

	//Send connect and send healthchecks
	group.Go(func() error {
		encodedMsg, err := encode(models.ConnectReq{
			Key:       a.cfg.ServerCfg.Key,
			Password:  a.cfg.ServerCfg.Password,
			SeatCount: len(a.seats),
		})
		if err != nil {
			return fmt.Errorf("failed encoding connect request: %w", err)
		}
		a.client.Emit("car_connect", encodedMsg)

		healthInterval := a.cfg.ServerCfg.HealthInterval
		if healthInterval <= 0 {
			healthInterval = config.DefaultHealthInterval
		}
		healthTicker := time.NewTicker(healthInterval)
		defer healthTicker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				zap.S().Info("health checker stopped")
				return groupCtx.Err()
			case <-healthTicker.C:
				zap.S().Debug("healthcheck: healthy")
				a.client.Emit("car_healthy", "")
			}
		}
	})

	err = group.Wait()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			zap.S().Info("context was cancelled")
			return nil
		}
		return fmt.Errorf("client stopping due to error - %w", err)
	}
	return nil
}

func (a *App) setConnection(seatNumber int, conn *Connection) {
	a.connLock.Lock()
	defer a.connLock.Unlock()
	existing, ok := a.userConns[seatNumber]
	if ok {
		zap.S().Infof("replacing connection on seat %d", seatNumber)
		existing.Disconnect()
	}
	a.userConns[seatNumber] = conn
}

func (a *App) disconnectAll() {
	a.connLock.Lock()
	defer a.connLock.Unlock()
	for seatNumber, conn := range a.userConns {
		conn.Disconnect()
		delete(a.userConns, seatNumber)
	}
}
