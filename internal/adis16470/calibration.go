// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package adis16470

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CalibrationTime selects the bias averaging window, 32ms << n.
type CalibrationTime int

// Supported averaging windows.
const (
	CalTime32ms CalibrationTime = iota
	CalTime64ms
	CalTime128ms
	CalTime256ms
	CalTime512ms
	CalTime1s
	CalTime2s
	CalTime4s
	CalTime8s
	CalTime16s
	CalTime32s
	CalTime64s
)

var calTimeNames = [...]string{
	"32ms", "64ms", "128ms", "256ms", "512ms", "1s", "2s", "4s", "8s", "16s", "32s", "64s",
}

// Valid reports whether c is one of the twelve supported steps.
func (c CalibrationTime) Valid() bool {
	return c >= CalTime32ms && c <= CalTime64s
}

func (c CalibrationTime) String() string {
	if !c.Valid() {
		return fmt.Sprintf("CalibrationTime(%d)", int(c))
	}
	return calTimeNames[c]
}

// Window returns the averaging duration.
func (c CalibrationTime) Window() time.Duration {
	return (32 * time.Millisecond) << uint(c)
}

// Samples returns how many samples fit in the window at the given output rate.
// It never returns less than one.
func (c CalibrationTime) Samples(rate float64) int {
	n := int(math.Round(c.Window().Seconds() * rate))
	if n < 1 {
		return 1
	}
	return n
}

// ParseCalibrationTime accepts a step name such as "4s" or "128ms", or the
// step index 0-11.
func ParseCalibrationTime(s string) (CalibrationTime, error) {
	s = strings.TrimSpace(s)
	for i, name := range calTimeNames {
		if strings.EqualFold(s, name) {
			return CalibrationTime(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if c := CalibrationTime(n); c.Valid() {
			return c, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidCalibrationTime, "%q", s)
}

// calibrate measures new offsets and commits them, zeroing the totals. It
// must be called with cmdMu held and the device in manual mode.
func (imu *IMU) calibrate(ctx context.Context) error {
	bias, err := imu.measureBias(ctx)
	if err != nil {
		return err
	}
	imu.commitBias(bias)
	return nil
}

func (imu *IMU) commitBias(bias BiasOffsets) {
	imu.bias = bias
	imu.calibrated = true
	imu.heading.Reset()
	imu.logger.Infow("calibration complete",
		"bias_x", bias[AxisX], "bias_y", bias[AxisY], "bias_z", bias[AxisZ])
}

// measureBias runs the self test and averages the delta angle registers over
// the calibration window. Any diagnostic bit aborts the whole measurement.
func (imu *IMU) measureBias(ctx context.Context) (BiasOffsets, error) {
	if imu.mode != ModeManual {
		return BiasOffsets{}, ErrWrongMode
	}
	if err := imu.configureSampling(); err != nil {
		return BiasOffsets{}, err
	}
	if err := imu.bus.writeRegister(GLOB_CMD, globCmdSelfTest); err != nil {
		return BiasOffsets{}, hardwareFault(err, "self test command")
	}
	if err := imu.sleep(ctx, imu.opts.SettleDelay); err != nil {
		return BiasOffsets{}, err
	}

	rate := OutputRate(imu.opts.DecimationRate)
	n := imu.calTime.Samples(rate)
	period := time.Duration(float64(time.Second) / rate)
	imu.logger.Infow("calibrating", "window", imu.calTime, "samples", n, "period", period)

	ticker := imu.clock.Ticker(period)
	defer ticker.Stop()

	var sum [3]float64
	for i := 0; i < n; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return BiasOffsets{}, ctx.Err()
			case <-ticker.C:
			}
		}
		diag, err := imu.bus.readRegister(DIAG_STAT)
		if err != nil {
			return BiasOffsets{}, hardwareFault(err, "read DIAG_STAT")
		}
		if diag&^0x0001 != 0 {
			return BiasOffsets{}, errors.Wrapf(ErrCalibrationFailed, "DIAG_STAT=0x%04X at sample %d of %d", diag, i+1, n)
		}
		counts, err := imu.bus.readDeltaAngles()
		if err != nil {
			return BiasOffsets{}, hardwareFault(err, "read delta angles")
		}
		for axis := range sum {
			sum[axis] += CountsToDegrees(counts[axis])
		}
	}

	var bias BiasOffsets
	for axis := range sum {
		bias[axis] = sum[axis] / float64(n)
	}
	return bias, nil
}

func (imu *IMU) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := imu.clock.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
