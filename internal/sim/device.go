// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sim is an in-memory ADIS16470. It answers the SPI word protocol
// with the one-word response latency of the real part and pulses a fake
// data-ready line whenever a frame is fed to it.
package sim

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"

	"github.com/relabs-tech/adis16470_imu/internal/adis16470"
)

// Frame is one sample presented on a data-ready edge.
type Frame struct {
	DeltaAngle [3]int32
	// Corrupt replaces the PROD_ID echo at the end of the burst.
	Corrupt bool
}

// DegreesToCounts converts a delta angle in degrees to register counts.
func DegreesToCounts(deg float64) int32 {
	return int32(deg / 2160.0 * 2147483648.0)
}

// Device implements spi.Conn and the data-ready pin.
type Device struct {
	mu        sync.Mutex
	regs      map[uint8]uint16
	pending   uint16
	rest      [3]int32
	latched   Frame
	armed     bool
	reads     map[uint8]int
	diagAfter int
	diagValue uint16
	mute      bool
	busErr    error

	frames chan Frame
	halt   chan struct{}
}

// New returns a device at rest with power-on register values.
func New() *Device {
	return &Device{
		regs: map[uint8]uint16{
			adis16470.PROD_ID:   adis16470.ProductID,
			adis16470.DEC_RATE:  0x0000,
			adis16470.MSC_CTRL:  0x00C1,
			adis16470.FILT_CTRL: 0x0000,
			adis16470.FIRM_REV:  0x0104,
			adis16470.FIRM_DM:   0x0612,
			adis16470.FIRM_Y:    0x2019,
		},
		reads:  make(map[uint8]int),
		frames: make(chan Frame),
		halt:   make(chan struct{}),
	}
}

func (d *Device) String() string { return "adis16470-sim" }

// Duplex implements conn.Conn.
func (d *Device) Duplex() conn.Duplex { return conn.Full }

// Tx runs one 16-bit word transaction.
func (d *Device) Tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.word(w, r)
}

// TxPackets runs each packet as one word with chip select released in
// between. A burst latched on a corrupt frame returns a zero echo.
func (d *Device) TxPackets(p []spi.Packet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range p {
		if err := d.word(p[i].W, p[i].R); err != nil {
			return err
		}
	}
	if d.latched.Corrupt && len(p) > 0 {
		for i := range p[len(p)-1].R {
			p[len(p)-1].R[i] = 0
		}
	}
	return nil
}

func (d *Device) word(w, r []byte) error {
	if d.busErr != nil {
		return d.busErr
	}
	if len(w) != 2 {
		return fmt.Errorf("sim: %d byte word", len(w))
	}
	if len(r) >= 2 {
		if d.mute {
			r[0], r[1] = 0xFF, 0xFF
		} else {
			r[0], r[1] = byte(d.pending>>8), byte(d.pending)
		}
	}

	addr := w[0] & 0x7F
	if w[0]&0x80 != 0 {
		reg := addr &^ 1
		v := d.regs[reg]
		if addr&1 == 0 {
			v = v&0xFF00 | uint16(w[1])
		} else {
			v = v&0x00FF | uint16(w[1])<<8
		}
		d.regs[reg] = v
		d.pending = 0
		return nil
	}
	d.pending = d.value(addr)
	return nil
}

func (d *Device) value(addr uint8) uint16 {
	d.reads[addr]++
	delta := d.rest
	if d.armed {
		delta = d.latched.DeltaAngle
	}
	switch addr {
	case adis16470.X_DELTANG_OUT:
		return uint16(uint32(delta[0]) >> 16)
	case adis16470.X_DELTANG_LOW:
		return uint16(uint32(delta[0]))
	case adis16470.Y_DELTANG_OUT:
		return uint16(uint32(delta[1]) >> 16)
	case adis16470.Y_DELTANG_LOW:
		return uint16(uint32(delta[1]))
	case adis16470.Z_DELTANG_OUT:
		return uint16(uint32(delta[2]) >> 16)
	case adis16470.Z_DELTANG_LOW:
		return uint16(uint32(delta[2]))
	case adis16470.DIAG_STAT:
		if d.diagAfter > 0 && d.reads[addr] >= d.diagAfter {
			return d.diagValue
		}
	}
	return d.regs[addr]
}

// In arms the data-ready line on any edge other than gpio.NoEdge.
func (d *Device) In(pull gpio.Pull, edge gpio.Edge) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.armed = edge != gpio.NoEdge
	return nil
}

// WaitForEdge returns true once a fed frame has been latched. It returns
// false on timeout, on Halt, or when the line is not armed.
func (d *Device) WaitForEdge(timeout time.Duration) bool {
	d.mu.Lock()
	armed := d.armed
	d.mu.Unlock()

	var expire <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expire = t.C
	}
	frames := d.frames
	if !armed {
		frames = nil
	}
	select {
	case f := <-frames:
		d.mu.Lock()
		d.latched = f
		d.mu.Unlock()
		return true
	case <-d.halt:
		return false
	case <-expire:
		return false
	}
}

// Halt wakes a goroutine blocked in WaitForEdge, if any.
func (d *Device) Halt() error {
	select {
	case d.halt <- struct{}{}:
	default:
	}
	return nil
}

// Feed blocks until the frame has been taken by a WaitForEdge.
func (d *Device) Feed(f Frame) {
	d.frames <- f
}

// TryFeed offers a frame without blocking and reports whether it was taken.
func (d *Device) TryFeed(f Frame) bool {
	select {
	case d.frames <- f:
		return true
	default:
		return false
	}
}

// SetDeltaAngles sets what the delta angle registers read while the line is
// not armed, i.e. during calibration.
func (d *Device) SetDeltaAngles(counts [3]int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rest = counts
}

// FailDiagAfter makes DIAG_STAT read value from its nth read on; n <= 0
// clears the fault.
func (d *Device) FailDiagAfter(n int, value uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.diagAfter = n
	d.diagValue = value
	d.reads[adis16470.DIAG_STAT] = 0
}

// SetProductID overrides the PROD_ID register.
func (d *Device) SetProductID(id uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[adis16470.PROD_ID] = id
}

// SetMute makes MISO float high, as with a disconnected sensor.
func (d *Device) SetMute(mute bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mute = mute
}

// SetBusError makes every transaction fail with err; nil clears it.
func (d *Device) SetBusError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busErr = err
}

// Register returns the stored value of reg.
func (d *Device) Register(reg uint8) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[reg&^1]
}

// Reads returns how many read commands addressed reg.
func (d *Device) Reads(reg uint8) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reads[reg]
}

// Armed reports whether edge detection is enabled.
func (d *Device) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}
