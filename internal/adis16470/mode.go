// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package adis16470

import (
	"context"

	"go.viam.com/utils"
	"periph.io/x/conn/v3/gpio"
)

// Mode is the transport mode of the driver.
type Mode int

const (
	// ModeManual allows ad-hoc register reads and writes; nothing is streaming.
	ModeManual Mode = iota
	// ModeStreaming runs the acquisition loop on data-ready edges.
	ModeStreaming
)

func (m Mode) String() string {
	if m == ModeStreaming {
		return "streaming"
	}
	return "manual"
}

// EnterManualMode stops the acquisition loop and returns once the bus answers
// register reads again. It is a no-op in manual mode.
func (imu *IMU) EnterManualMode() error {
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	if imu.closed {
		return ErrClosed
	}
	return imu.enterManual()
}

// EnterStreamingMode programs the output rate and starts the acquisition
// loop. It is a no-op while streaming and requires a prior calibration.
func (imu *IMU) EnterStreamingMode() error {
	imu.cmdMu.Lock()
	defer imu.cmdMu.Unlock()
	if imu.closed {
		return ErrClosed
	}
	return imu.enterStreaming()
}

func (imu *IMU) enterManual() error {
	if imu.mode == ModeManual {
		return nil
	}
	imu.stopAcquisition()

	err := imu.disarm()
	if err == nil {
		err = imu.verifyProductID()
	}
	if err != nil {
		// Stay in the last mode that worked.
		if rerr := imu.startAcquisition(); rerr != nil {
			imu.logger.Errorw("re-arming acquisition", "error", rerr)
			imu.mode = ModeManual
		}
		return err
	}
	imu.mode = ModeManual
	imu.logger.Debugw("entered manual mode")
	return nil
}

func (imu *IMU) enterStreaming() error {
	if imu.mode == ModeStreaming {
		return nil
	}
	if !imu.calibrated {
		return ErrNotCalibrated
	}
	if err := imu.configureSampling(); err != nil {
		return err
	}
	if err := imu.startAcquisition(); err != nil {
		return err
	}
	imu.mode = ModeStreaming
	imu.logger.Debugw("entered streaming mode", "output_rate_hz", OutputRate(imu.opts.DecimationRate))
	return nil
}

// disarm turns off edge detection on the data-ready line.
func (imu *IMU) disarm() error {
	if err := imu.drdy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return hardwareFault(err, "disable data-ready edge")
	}
	return nil
}

// verifyProductID polls PROD_ID until it echoes ProductID.
func (imu *IMU) verifyProductID() error {
	var (
		lastErr error
		lastVal uint16
	)
	for attempt := 0; attempt < imu.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			_ = imu.sleep(context.Background(), imu.opts.RetryDelay)
		}
		v, err := imu.bus.readRegister(PROD_ID)
		if err == nil && v == ProductID {
			return nil
		}
		lastErr, lastVal = err, v
	}
	return hardwareFault(lastErr, "PROD_ID read 0x%04X after %d attempts, want 0x%04X",
		lastVal, imu.opts.MaxRetries, ProductID)
}

// configureSampling writes the data-ready polarity, the filter and the
// decimation rate, then checks that DEC_RATE reads back.
func (imu *IMU) configureSampling() error {
	writes := []struct {
		reg uint8
		val uint16
	}{
		{MSC_CTRL, mscCtrlDataReadyHigh},
		{FILT_CTRL, 0x0000},
		{DEC_RATE, imu.opts.DecimationRate},
	}
	for _, w := range writes {
		if err := imu.bus.writeRegister(w.reg, w.val); err != nil {
			return hardwareFault(err, "write 0x%02X", w.reg)
		}
	}

	var (
		lastErr error
		lastVal uint16
	)
	for attempt := 0; attempt < imu.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			_ = imu.sleep(context.Background(), imu.opts.RetryDelay)
		}
		v, err := imu.bus.readRegister(DEC_RATE)
		if err == nil && v == imu.opts.DecimationRate {
			return nil
		}
		lastErr, lastVal = err, v
	}
	return hardwareFault(lastErr, "DEC_RATE read back %d, want %d", lastVal, imu.opts.DecimationRate)
}

// startAcquisition arms the rising edge and launches the loop with a copy of
// the current bias.
func (imu *IMU) startAcquisition() error {
	if err := imu.drdy.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return hardwareFault(err, "enable data-ready edge")
	}
	imu.heading.restart()
	ctx, cancel := context.WithCancel(context.Background())
	imu.cancel = cancel
	bias := imu.bias
	imu.workers.Add(1)
	utils.PanicCapturingGo(func() {
		defer imu.workers.Done()
		imu.acquire(ctx, bias)
	})
	return nil
}

// stopAcquisition cancels the loop, wakes it from its edge wait and joins it.
func (imu *IMU) stopAcquisition() {
	if imu.cancel == nil {
		return
	}
	imu.cancel()
	if err := imu.drdy.Halt(); err != nil {
		imu.logger.Warnw("halting data-ready wait", "error", err)
	}
	imu.workers.Wait()
	imu.cancel = nil
}
