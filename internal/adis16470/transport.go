// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package adis16470

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/spi"
)

// DeviceSample is one decoded burst: the three 32-bit delta angle readings
// and the PROD_ID echo that closes the packet.
type DeviceSample struct {
	DeltaAngle [3]int32
	Echo       uint16
}

// Valid reports whether the burst ended with the expected product ID echo.
// A frame that lost words on the bus shifts or corrupts the echo.
func (s DeviceSample) Valid() bool {
	return s.Echo == ProductID
}

// Degrees converts the delta angle readings to degrees.
func (s DeviceSample) Degrees() [3]float64 {
	return [3]float64{
		CountsToDegrees(s.DeltaAngle[AxisX]),
		CountsToDegrees(s.DeltaAngle[AxisY]),
		CountsToDegrees(s.DeltaAngle[AxisZ]),
	}
}

// transport speaks the ADIS16470 word protocol: every transaction is one
// 16-bit word with chip select released in between, and the answer to a read
// command is clocked out during the next word.
type transport struct {
	conn spi.Conn
}

func (t *transport) readRegister(reg uint8) (uint16, error) {
	if err := t.conn.Tx([]byte{reg & 0x7F, 0x00}, nil); err != nil {
		return 0, errors.Wrapf(err, "read 0x%02X command", reg)
	}
	r := make([]byte, 2)
	if err := t.conn.Tx([]byte{0x00, 0x00}, r); err != nil {
		return 0, errors.Wrapf(err, "read 0x%02X response", reg)
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

// writeRegister writes the lower byte to reg and the upper byte to reg+1.
func (t *transport) writeRegister(reg uint8, val uint16) error {
	low := []byte{0x80 | (reg & 0x7F), byte(val)}
	if err := t.conn.Tx(low, nil); err != nil {
		return errors.Wrapf(err, "write 0x%02X", reg)
	}
	high := []byte{0x80 | ((reg + 1) & 0x7F), byte(val >> 8)}
	if err := t.conn.Tx(high, nil); err != nil {
		return errors.Wrapf(err, "write 0x%02X", reg+1)
	}
	return nil
}

// readDeltaAngles reads the six delta angle registers one by one.
func (t *transport) readDeltaAngles() ([3]int32, error) {
	var out [3]int32
	regs := [3][2]uint8{
		{X_DELTANG_OUT, X_DELTANG_LOW},
		{Y_DELTANG_OUT, Y_DELTANG_LOW},
		{Z_DELTANG_OUT, Z_DELTANG_LOW},
	}
	for axis, pair := range regs {
		high, err := t.readRegister(pair[0])
		if err != nil {
			return out, err
		}
		low, err := t.readRegister(pair[1])
		if err != nil {
			return out, err
		}
		out[axis] = int32(uint32(high)<<16 | uint32(low))
	}
	return out, nil
}

// readBurst sends BurstPacket plus a trailing zero word and decodes the replies.
func (t *transport) readBurst() (DeviceSample, error) {
	packets := make([]spi.Packet, burstWords)
	replies := make([][]byte, burstWords)
	for i := range packets {
		w := make([]byte, 2)
		if 2*i < len(BurstPacket) {
			copy(w, BurstPacket[2*i:2*i+2])
		}
		replies[i] = make([]byte, 2)
		packets[i] = spi.Packet{W: w, R: replies[i], BitsPerWord: 8}
	}
	if err := t.conn.TxPackets(packets); err != nil {
		return DeviceSample{}, errors.Wrap(err, "burst read")
	}
	return decodeBurst(replies), nil
}

// decodeBurst maps the replies of one burst onto a sample. Reply 0 answers
// the previous transaction and is ignored.
func decodeBurst(replies [][]byte) DeviceSample {
	word := func(i int) uint32 {
		return uint32(replies[i][0])<<8 | uint32(replies[i][1])
	}
	var s DeviceSample
	for axis := 0; axis < 3; axis++ {
		high := word(1 + 2*axis)
		low := word(2 + 2*axis)
		s.DeltaAngle[axis] = int32(high<<16 | low)
	}
	s.Echo = uint16(word(burstWords - 1))
	return s
}
