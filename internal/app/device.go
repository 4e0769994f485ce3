// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.viam.com/utils"

	"github.com/relabs-tech/adis16470_imu/internal/adis16470"
	"github.com/relabs-tech/adis16470_imu/internal/config"
	"github.com/relabs-tech/adis16470_imu/internal/sensors"
	"github.com/relabs-tech/adis16470_imu/internal/sim"
	"github.com/relabs-tech/adis16470_imu/internal/telemetry"
)

// Controller is what the control socket drives.
type Controller interface {
	Snapshot() adis16470.HeadingSnapshot
	Stats() adis16470.Stats
	Mode() adis16470.Mode
	Bias() adis16470.BiasOffsets
	CalibrationTime() adis16470.CalibrationTime
	Reset()
	Reconfigure(ctx context.Context, cal adis16470.CalibrationTime) error
}

// RegisterAccess is what the register debug socket drives.
type RegisterAccess interface {
	ReadRegister(reg uint8) (uint16, error)
	WriteRegister(reg uint8, val uint16) error
	EnterManualMode() error
	EnterStreamingMode() error
	Mode() adis16470.Mode
}

// imuDevice is a running driver, real or simulated.
type imuDevice interface {
	Controller
	RegisterAccess
	RegisterTelemetry(t *telemetry.Table)
	Close() error
}

// simDevice runs the driver against the in-memory sensor with a motion
// generator feeding it.
type simDevice struct {
	*adis16470.IMU
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

func (d *simDevice) Close() error {
	d.cancel()
	d.workers.Wait()
	return d.IMU.Close()
}

// openIMU starts the configured ADIS16470, or a simulated one when mock is set.
func openIMU(cfg *config.Config, mock bool, logger *zap.SugaredLogger) (imuDevice, error) {
	if !mock {
		d, err := sensors.Open(sensors.HardwareFromConfig(cfg), cfg.IMUOptions(), logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	opts := cfg.IMUOptions()
	period := time.Duration(float64(time.Second) / adis16470.OutputRate(opts.DecimationRate))
	motion := sim.DefaultMotion(period)

	dev := sim.New()
	dev.SetDeltaAngles(motion.Rest())
	logger.Infow("using simulated ADIS16470", "yaw_rate", motion.YawRate)

	imu, err := adis16470.New(dev, dev, opts, logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &simDevice{IMU: imu, cancel: cancel}
	d.workers.Add(1)
	utils.PanicCapturingGo(func() {
		defer d.workers.Done()
		motion.Run(ctx, dev)
	})
	return d, nil
}
