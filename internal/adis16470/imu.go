// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package adis16470 drives an Analog Devices ADIS16470 IMU over SPI and
// integrates its delta angle output into a continuous heading.
//
// After construction the driver calibrates the gyro bias while the sensor is
// at rest, then streams a burst read on every data-ready edge from a
// background goroutine. Queries never touch the bus.
package adis16470

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"

	"github.com/relabs-tech/adis16470_imu/internal/telemetry"
)

// DataReadyPin is the subset of gpio.PinIn the driver needs from the line
// the sensor pulses when a new sample is available.
type DataReadyPin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	WaitForEdge(timeout time.Duration) bool
	Halt() error
}

// Options configures the driver.
type Options struct {
	// YawAxis is the axis reported by Angle and Rate.
	YawAxis Axis
	// CalibrationTime is the bias averaging window.
	CalibrationTime CalibrationTime
	// DecimationRate is written to DEC_RATE; output rate = 2000/(DecimationRate+1) Hz.
	DecimationRate uint16
	// EdgeTimeout bounds each wait for a data-ready edge.
	EdgeTimeout time.Duration
	// MaxRetries bounds product ID and register echo checks.
	MaxRetries int
	// RetryDelay separates those checks.
	RetryDelay time.Duration
	// SettleDelay follows the self test command.
	SettleDelay time.Duration
	// Clock is the time source; nil selects the wall clock.
	Clock clock.Clock
}

// DefaultOpts matches the stock robot configuration: yaw on Z, 4s bias
// averaging and a 400 Hz output rate.
var DefaultOpts = Options{
	YawAxis:         AxisZ,
	CalibrationTime: CalTime4s,
	DecimationRate:  4,
	EdgeTimeout:     100 * time.Millisecond,
	MaxRetries:      10,
	RetryDelay:      10 * time.Millisecond,
	SettleDelay:     50 * time.Millisecond,
}

// Stats counts what the acquisition loop has seen since construction.
type Stats struct {
	Samples    uint64 `json:"samples"`
	Dropped    uint64 `json:"dropped"`
	Timeouts   uint64 `json:"timeouts"`
	ReadErrors uint64 `json:"read_errors"`
}

// IMU is an ADIS16470 driver instance.
type IMU struct {
	bus     *transport
	drdy    DataReadyPin
	opts    Options
	clock   clock.Clock
	logger  *zap.SugaredLogger
	heading *Heading

	// cmdMu serialises commands. Everything below it is only touched with
	// cmdMu held, and only while the acquisition loop is stopped.
	cmdMu      sync.Mutex
	mode       Mode
	calTime    CalibrationTime
	bias       BiasOffsets
	calibrated bool
	closed     bool
	cancel     context.CancelFunc
	workers    sync.WaitGroup

	samples    atomic.Uint64
	dropped    atomic.Uint64
	timeouts   atomic.Uint64
	readErrors atomic.Uint64
	warn       *rate.Limiter
}

// New verifies the device, calibrates it and starts streaming. opts may be nil
// for DefaultOpts. On error the data-ready pin is halted and nothing keeps
// running.
func New(bus spi.Conn, drdy DataReadyPin, opts *Options, logger *zap.SugaredLogger) (*IMU, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if !o.YawAxis.Valid() {
		return nil, errors.Errorf("adis16470: invalid yaw axis %d", int(o.YawAxis))
	}
	if !o.CalibrationTime.Valid() {
		return nil, errors.Wrapf(ErrInvalidCalibrationTime, "%d", int(o.CalibrationTime))
	}
	if o.DecimationRate > MaxDecimationRate {
		return nil, errors.Errorf("adis16470: DEC_RATE %d exceeds %d", o.DecimationRate, MaxDecimationRate)
	}
	if o.MaxRetries < 1 {
		o.MaxRetries = 1
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	period := time.Duration(float64(time.Second) / OutputRate(o.DecimationRate))
	imu := &IMU{
		bus:     &transport{conn: bus},
		drdy:    drdy,
		opts:    o,
		clock:   o.Clock,
		logger:  logger,
		heading: NewHeading(o.YawAxis, period),
		mode:    ModeManual,
		calTime: o.CalibrationTime,
		warn:    rate.NewLimiter(rate.Every(time.Second), 1),
	}

	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	err := imu.disarm()
	if err == nil {
		err = imu.verifyProductID()
	}
	if err == nil {
		err = imu.calibrate(context.Background())
	}
	if err == nil {
		err = imu.enterStreaming()
	}
	if err != nil {
		imu.stopAcquisition()
		imu.closed = true
		if herr := drdy.Halt(); herr != nil {
			logger.Warnw("halting data-ready pin", "error", herr)
		}
		return nil, err
	}
	logger.Infow("ADIS16470 ready", "yaw_axis", o.YawAxis, "calibration", o.CalibrationTime,
		"output_rate_hz", OutputRate(o.DecimationRate))
	return imu, nil
}

// Calibrate recomputes the bias offsets and zeroes the totals. The device
// must be in manual mode; use Reconfigure to recalibrate a streaming device.
func (imu *IMU) Calibrate(ctx context.Context) error {
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	if imu.closed {
		return ErrClosed
	}
	return imu.calibrate(ctx)
}

// Reconfigure stops streaming, recalibrates with a new averaging window and
// streams again. An invalid window is rejected before anything is touched.
// On any other failure the previous window and bias are kept and the driver
// is returned to the mode it was in.
func (imu *IMU) Reconfigure(ctx context.Context, cal CalibrationTime) error {
	if !cal.Valid() {
		return errors.Wrapf(ErrInvalidCalibrationTime, "%d", int(cal))
	}
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	if imu.closed {
		return ErrClosed
	}

	prevMode, prevCal := imu.mode, imu.calTime
	if err := imu.enterManual(); err != nil {
		return err
	}
	restore := func(err error) error {
		imu.calTime = prevCal
		if prevMode == ModeStreaming {
			if rerr := imu.enterStreaming(); rerr != nil {
				imu.logger.Errorw("restoring streaming after failed reconfigure", "error", rerr)
			}
		}
		return err
	}

	imu.calTime = cal
	bias, err := imu.measureBias(ctx)
	if err != nil {
		return restore(err)
	}
	// Totals restart before the new loop can add to them.
	prevBias, prevCalibrated := imu.bias, imu.calibrated
	prevAngle := imu.heading.Snapshot().Angle
	imu.commitBias(bias)
	if err := imu.enterStreaming(); err != nil {
		imu.bias, imu.calibrated = prevBias, prevCalibrated
		imu.heading.setAngles(prevAngle)
		return restore(err)
	}
	imu.logger.Infow("reconfigured", "calibration", cal)
	return nil
}

// Reset zeroes the three totals without touching the bias or the mode.
func (imu *IMU) Reset() {
	imu.heading.Reset()
}

// Angle returns the continuous yaw angle in degrees.
func (imu *IMU) Angle() float64 { return imu.heading.Angle() }

// AngleX returns the X total in degrees.
func (imu *IMU) AngleX() float64 { return imu.heading.AngleX() }

// AngleY returns the Y total in degrees.
func (imu *IMU) AngleY() float64 { return imu.heading.AngleY() }

// AngleZ returns the Z total in degrees.
func (imu *IMU) AngleZ() float64 { return imu.heading.AngleZ() }

// Rate returns the latest yaw rate in degrees per second.
func (imu *IMU) Rate() float64 { return imu.heading.Rate() }

// Snapshot returns all totals and rates from the same instant.
func (imu *IMU) Snapshot() HeadingSnapshot { return imu.heading.Snapshot() }

// RateX returns the latest X rate in degrees per second.
func (imu *IMU) RateX() float64 { return imu.heading.RateX() }

// RateY returns the latest Y rate in degrees per second.
func (imu *IMU) RateY() float64 { return imu.heading.RateY() }

// RateZ returns the latest Z rate in degrees per second.
func (imu *IMU) RateZ() float64 { return imu.heading.RateZ() }

// YawAxis returns the configured primary axis.
func (imu *IMU) YawAxis() Axis { return imu.opts.YawAxis }

// Mode returns the current transport mode.
func (imu *IMU) Mode() Mode {
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	return imu.mode
}

// Bias returns the offsets from the last successful calibration.
func (imu *IMU) Bias() BiasOffsets {
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	return imu.bias
}

// CalibrationTime returns the configured averaging window.
func (imu *IMU) CalibrationTime() CalibrationTime {
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	return imu.calTime
}

// Stats returns the acquisition counters.
func (imu *IMU) Stats() Stats {
	return Stats{
		Samples:    imu.samples.Load(),
		Dropped:    imu.dropped.Load(),
		Timeouts:   imu.timeouts.Load(),
		ReadErrors: imu.readErrors.Load(),
	}
}

// ReadRegister reads one 16-bit register. Manual mode only.
func (imu *IMU) ReadRegister(reg uint8) (uint16, error) {
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	if err := imu.checkManual(); err != nil {
		return 0, err
	}
	v, err := imu.bus.readRegister(reg)
	if err != nil {
		return 0, hardwareFault(err, "read register 0x%02X", reg)
	}
	return v, nil
}

// WriteRegister writes one 16-bit register. Manual mode only.
func (imu *IMU) WriteRegister(reg uint8, val uint16) error {
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	if err := imu.checkManual(); err != nil {
		return err
	}
	if err := imu.bus.writeRegister(reg, val); err != nil {
		return hardwareFault(err, "write register 0x%02X", reg)
	}
	return nil
}

func (imu *IMU) checkManual() error {
	if imu.closed {
		return ErrClosed
	}
	if imu.mode != ModeManual {
		return ErrWrongMode
	}
	return nil
}

// RegisterTelemetry publishes the heading on a dashboard table. All fields
// are refreshed from one snapshot.
func (imu *IMU) RegisterTelemetry(t *telemetry.Table) {
	t.SetType("ADIS16470 IMU")
	t.AddDoubles(
		[]string{"Yaw Angle", "Yaw Rate", "Angle X", "Angle Y", "Angle Z"},
		func() []float64 {
			s := imu.heading.Snapshot()
			return []float64{s.YawAngle(), s.YawRate(), s.Angle[AxisX], s.Angle[AxisY], s.Angle[AxisZ]}
		})
}

// Close stops the acquisition loop, waits for it to exit and releases the
// data-ready pin. Every step runs even if an earlier one fails; failures are
// logged and returned together.
func (imu *IMU) Close() error {
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	if imu.closed {
		return nil
	}
	imu.closed = true

	imu.stopAcquisition()
	imu.mode = ModeManual

	var err error
	if e := imu.drdy.In(gpio.PullNoChange, gpio.NoEdge); e != nil {
		imu.logger.Warnw("disabling data-ready edge", "error", e)
		err = multierr.Append(err, e)
	}
	if e := imu.drdy.Halt(); e != nil {
		imu.logger.Warnw("halting data-ready pin", "error", e)
		err = multierr.Append(err, e)
	}
	imu.logger.Infow("ADIS16470 closed", "stats", imu.Stats())
	return err
}
