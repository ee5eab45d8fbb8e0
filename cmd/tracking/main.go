package main

import (
	"context"
	"flag"
	"os"

	"github.com/fleetgate/fleet-tracking-system/config"
	"github.com/fleetgate/fleet-tracking-system/internal/app"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	"github.com/joho/godotenv"
)

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	// Local development overrides, ignored when the file is absent.
	_ = godotenv.Load()

	ctx := context.Background()
	log := logger.InitLogger("", logger.LevelDebug)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		return
	}

	// Printing configuration
	config.PrintConfig(cfg)

	if !logger.ValidateLogLevel(cfg.Log.Level) {
		cfg.Log.Level = logger.LevelDebug
	}
	log = logger.InitLogger("tracking-engine", cfg.Log.Level)

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the application
	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
