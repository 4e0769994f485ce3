// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/adis16470_imu/internal/config"
	"github.com/relabs-tech/adis16470_imu/internal/logging"
)

// RunRegisterDebug starts the IMU and serves the register debug tool on
// REGISTER_DEBUG_PORT until ctx is cancelled.
func RunRegisterDebug(ctx context.Context, mock bool) error {
	cfg := config.Get()
	logger, err := logging.NewLogger("register_debug", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dev, err := openIMU(cfg, mock, logger)
	if err != nil {
		return errors.Wrap(err, "open IMU")
	}
	defer func() {
		if err := dev.Close(); err != nil {
			logger.Warnw("closing IMU", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.RegisterDebugPort),
		Handler:           newRegisterDebugMux(dev, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("register debug tool listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "register debug server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
