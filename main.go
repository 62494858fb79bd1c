package main

import (
	"fmt"
	"os"

	"github.com/Speshl/gorrc_drive/internal/app"
	"github.com/Speshl/gorrc_drive/internal/config"
	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"
)

func newLogger() (*zap.Logger, error) {
	if config.GetBoolEnv("DEBUG", config.DefaultDebug) {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed creating logger: %s\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	err = run()
	if err != nil {
		zap.S().Errorf("client shutdown with error: %s", err.Error())
		_ = logger.Sync()
		os.Exit(1)
	}
	zap.S().Info("client shutdown successfully")
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("error loading config - %w", err)
	}

	socketURI := fmt.Sprintf("http://%s", cfg.ServerCfg.Server)
	client, err := socketio.NewClient(socketURI, nil)
	if err != nil {
		return fmt.Errorf("error creating client - %w", err)
	}

	rc, err := app.NewApp(cfg, client)
	if err != nil {
		return fmt.Errorf("error creating app - %w", err)
	}

	err = rc.RegisterHandlers()
	if err != nil {
		return err
	}

	return rc.Start()
}
