// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package adis16470

import (
	"context"
)

// acquire is the streaming loop. It runs until ctx is cancelled; the caller
// also halts the data-ready pin so a pending wait returns early, and
// EdgeTimeout bounds the wait when the pin cannot be interrupted.
func (imu *IMU) acquire(ctx context.Context, bias BiasOffsets) {
	imu.logger.Debugw("acquisition started", "bias", bias)
	defer imu.logger.Debugw("acquisition stopped")

	for {
		if ctx.Err() != nil {
			return
		}
		if !imu.drdy.WaitForEdge(imu.opts.EdgeTimeout) {
			if ctx.Err() != nil {
				return
			}
			imu.timeouts.Inc()
			if imu.warn.Allow() {
				imu.logger.Warnw("no data-ready edge", "timeout", imu.opts.EdgeTimeout,
					"timeouts", imu.timeouts.Load())
			}
			continue
		}
		if ctx.Err() != nil {
			return
		}

		sample, err := imu.bus.readBurst()
		if err != nil {
			imu.readErrors.Inc()
			if imu.warn.Allow() {
				imu.logger.Warnw("burst read failed", "error", err, "read_errors", imu.readErrors.Load())
			}
			continue
		}
		imu.ingest(sample, bias)
	}
}

// ingest applies one burst. Frames failing validation are counted and
// otherwise ignored.
func (imu *IMU) ingest(sample DeviceSample, bias BiasOffsets) {
	if !sample.Valid() {
		imu.dropped.Inc()
		if imu.warn.Allow() {
			imu.logger.Debugw("dropped frame", "echo", sample.Echo, "dropped", imu.dropped.Load())
		}
		return
	}
	imu.heading.accumulate(sample.Degrees(), bias, imu.clock.Now())
	imu.samples.Inc()
}
