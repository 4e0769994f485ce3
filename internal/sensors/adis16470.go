// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/adis16470_imu/internal/adis16470"
	"github.com/relabs-tech/adis16470_imu/internal/config"
)

// Hardware names the bus and the data-ready line of one ADIS16470.
type Hardware struct {
	SPIDevice string // e.g. "/dev/spidev0.0"
	DRPin     string // e.g. "GPIO25"
	SpeedHz   int
}

// HardwareFromConfig returns the hardware section of cfg.
func HardwareFromConfig(cfg *config.Config) Hardware {
	return Hardware{SPIDevice: cfg.IMUSPIDevice, DRPin: cfg.IMUDRPin, SpeedHz: cfg.IMUSPISpeedHz}
}

// Device is a running ADIS16470 together with the SPI port it owns.
type Device struct {
	*adis16470.IMU
	port spi.PortCloser
}

// Close stops the driver first and only then releases the port.
func (d *Device) Close() error {
	return multierr.Combine(d.IMU.Close(), d.port.Close())
}

// Open initializes periph, opens the SPI port in mode 3 and starts the
// driver, which calibrates before returning. Keep the sensor still.
func Open(hw Hardware, opts *adis16470.Options, logger *zap.SugaredLogger) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("ADIS16470: periph host init: %w", err)
	}

	drdy := gpioreg.ByName(hw.DRPin)
	if drdy == nil {
		return nil, fmt.Errorf("ADIS16470: data-ready pin %q not found", hw.DRPin)
	}

	port, err := spireg.Open(hw.SPIDevice)
	if err != nil {
		return nil, fmt.Errorf("ADIS16470: open %s: %w", hw.SPIDevice, err)
	}

	conn, err := port.Connect(physic.Frequency(hw.SpeedHz)*physic.Hertz, spi.Mode3, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("ADIS16470: connect %s at %d Hz: %w", hw.SPIDevice, hw.SpeedHz, err)
	}
	logger.Infow("SPI connected", "device", hw.SPIDevice, "speed_hz", hw.SpeedHz, "drdy", hw.DRPin)

	imu, err := adis16470.New(conn, drdy, opts, logger)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("ADIS16470: %w", err)
	}
	return &Device{IMU: imu, port: port}, nil
}
