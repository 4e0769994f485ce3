// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package adis16470

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Axis selects one of the three sensor axes.
type Axis int

// The sensor axes.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Valid reports whether a is one of AxisX, AxisY or AxisZ.
func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

// ParseAxis accepts "x", "y" or "z" in any case.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return AxisX, nil
	case "Y":
		return AxisY, nil
	case "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q (want X, Y or Z)", s)
}

// BiasOffsets are the per-axis delta angle offsets in degrees per sample,
// indexed by Axis.
type BiasOffsets [3]float64

// HeadingSnapshot is a consistent copy of the estimator state.
type HeadingSnapshot struct {
	Yaw   Axis       `json:"yaw_axis"`
	Angle [3]float64 `json:"angle"` // degrees, continuous
	Rate  [3]float64 `json:"rate"`  // degrees per second
}

// YawAngle returns the total of the yaw axis.
func (s HeadingSnapshot) YawAngle() float64 { return s.Angle[s.Yaw] }

// YawRate returns the rate of the yaw axis.
func (s HeadingSnapshot) YawRate() float64 { return s.Rate[s.Yaw] }

// Heading holds the integrated angles. The acquisition loop is the only
// writer; any number of goroutines may read.
type Heading struct {
	yaw     Axis
	nominal time.Duration // sample period used for the first rate

	mu    sync.Mutex
	angle [3]float64
	rate  [3]float64
	last  time.Time
}

// NewHeading returns a zeroed estimator reporting yaw as its primary axis.
// period is the expected time between samples.
func NewHeading(yaw Axis, period time.Duration) *Heading {
	return &Heading{yaw: yaw, nominal: period}
}

// accumulate adds one bias-corrected sample, given in degrees, to the totals.
// The axes are added in X, Y, Z order and frames in arrival order, so the
// totals equal the sequential float64 sum of (delta - bias).
func (h *Heading) accumulate(delta [3]float64, bias BiasOffsets, now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	dt := h.nominal.Seconds()
	if !h.last.IsZero() {
		if elapsed := now.Sub(h.last).Seconds(); elapsed > 0 {
			dt = elapsed
		}
	}
	h.last = now

	for axis := range h.angle {
		d := delta[axis] - bias[axis]
		h.angle[axis] += d
		if dt > 0 {
			h.rate[axis] = d / dt
		}
	}
}

// restart makes the next frame's rate use the nominal period. Called before
// each streaming session.
func (h *Heading) restart() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = time.Time{}
}

// setAngles puts back totals saved from a snapshot.
func (h *Heading) setAngles(angle [3]float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.angle = angle
}

// Reset zeroes the three totals. Rates and bias are untouched.
func (h *Heading) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.angle = [3]float64{}
}

// Snapshot returns all totals and rates taken under one lock.
func (h *Heading) Snapshot() HeadingSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HeadingSnapshot{Yaw: h.yaw, Angle: h.angle, Rate: h.rate}
}

func (h *Heading) angleOf(axis Axis) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.angle[axis]
}

func (h *Heading) rateOf(axis Axis) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rate[axis]
}

// Angle returns the continuous total of the yaw axis in degrees.
func (h *Heading) Angle() float64 { return h.angleOf(h.yaw) }

// AngleX returns the X total in degrees regardless of the yaw axis.
func (h *Heading) AngleX() float64 { return h.angleOf(AxisX) }

// AngleY returns the Y total in degrees regardless of the yaw axis.
func (h *Heading) AngleY() float64 { return h.angleOf(AxisY) }

// AngleZ returns the Z total in degrees regardless of the yaw axis.
func (h *Heading) AngleZ() float64 { return h.angleOf(AxisZ) }

// Rate returns the latest yaw rate in degrees per second.
func (h *Heading) Rate() float64 { return h.rateOf(h.yaw) }

// RateX returns the latest X rate in degrees per second.
func (h *Heading) RateX() float64 { return h.rateOf(AxisX) }

// RateY returns the latest Y rate in degrees per second.
func (h *Heading) RateY() float64 { return h.rateOf(AxisY) }

// RateZ returns the latest Z rate in degrees per second.
func (h *Heading) RateZ() float64 { return h.rateOf(AxisZ) }

// YawAxis returns the axis reported by Angle and Rate.
func (h *Heading) YawAxis() Axis { return h.yaw }
