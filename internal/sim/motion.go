// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sim

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
)

// Motion generates smoothly changing angular rates: a steady yaw turn with
// gentle roll and pitch oscillation.
type Motion struct {
	YawRate   float64 // degrees per second about Z
	RollAmp   float64 // peak degrees about X
	PitchAmp  float64 // peak degrees about Y
	Bias      [3]float64
	Clock     clock.Clock
	SamplePer time.Duration
}

// DefaultMotion turns at 30 deg/s with a small constant gyro bias.
func DefaultMotion(period time.Duration) Motion {
	return Motion{
		YawRate:   30,
		RollAmp:   20,
		PitchAmp:  15,
		Bias:      [3]float64{0.0002, -0.0001, 0.0003},
		SamplePer: period,
	}
}

// Frame returns the delta angles for the sample ending at elapsed seconds.
func (m Motion) Frame(elapsed float64) Frame {
	dt := m.SamplePer.Seconds()
	roll := m.RollAmp * math.Sin(elapsed)
	prevRoll := m.RollAmp * math.Sin(elapsed-dt)
	pitch := m.PitchAmp * math.Cos(elapsed*0.7)
	prevPitch := m.PitchAmp * math.Cos((elapsed-dt)*0.7)

	return Frame{DeltaAngle: [3]int32{
		DegreesToCounts(roll - prevRoll + m.Bias[0]),
		DegreesToCounts(pitch - prevPitch + m.Bias[1]),
		DegreesToCounts(m.YawRate*dt + m.Bias[2]),
	}}
}

// Rest returns the delta angles of a stationary sensor: the bias alone.
func (m Motion) Rest() [3]int32 {
	return [3]int32{
		DegreesToCounts(m.Bias[0]),
		DegreesToCounts(m.Bias[1]),
		DegreesToCounts(m.Bias[2]),
	}
}

// Run feeds d one frame per sample period until ctx is done. Frames the
// driver is not ready for are skipped, like a real sensor that keeps
// sampling while nobody reads it.
func (m Motion) Run(ctx context.Context, d *Device) {
	clk := m.Clock
	if clk == nil {
		clk = clock.New()
	}
	start := clk.Now()
	ticker := clk.Ticker(m.SamplePer)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.TryFeed(m.Frame(now.Sub(start).Seconds()))
		}
	}
}
