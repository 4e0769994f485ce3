// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

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
	mock := flag.Bool("mock", false, "use a simulated ADIS16470 instead of the SPI bus")
	flag.Parse()

	log.Println("starting ADIS16470 register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Open http://localhost:%d in your browser", config.Get().RegisterDebugPort)
	if err := app.RunRegisterDebug(ctx, *mock); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
