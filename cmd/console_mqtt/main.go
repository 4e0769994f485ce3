package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/adis16470_imu/internal/app"
	"github.com/relabs-tech/adis16470_imu/internal/config"
)

func main() {
	configPath := flag.String("config", "./adis16470_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting ADIS16470 heading console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsoleMQTT(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
