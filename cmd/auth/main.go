package main

import (
	"context"
	"flag"
	"os"

	"github.com/Temutjin2k/auth-service/config"
	"github.com/Temutjin2k/auth-service/internal/app"
	"github.com/Temutjin2k/auth-service/pkg/logger"
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

	ctx := context.Background()
	log := logger.InitLogger("auth-service", logger.LevelInfo)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	config.PrintConfig(os.Stdout, cfg)

	log = logger.InitLogger(cfg.ServiceName, cfg.LogLevel)

	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
