// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package adis16470

// ADIS16470 register map. Every register is 16 bits wide and lives at an even
// address; the odd address selects its upper byte on writes.
const (
	FLASH_CNT     = 0x00 // Flash memory write count
	DIAG_STAT     = 0x02 // Diagnostic and operational status
	X_GYRO_LOW    = 0x04 // X-axis gyroscope output, lower word
	X_GYRO_OUT    = 0x06 // X-axis gyroscope output, upper word
	Y_GYRO_LOW    = 0x08 // Y-axis gyroscope output, lower word
	Y_GYRO_OUT    = 0x0A // Y-axis gyroscope output, upper word
	Z_GYRO_LOW    = 0x0C // Z-axis gyroscope output, lower word
	Z_GYRO_OUT    = 0x0E // Z-axis gyroscope output, upper word
	X_ACCL_LOW    = 0x10 // X-axis accelerometer output, lower word
	X_ACCL_OUT    = 0x12 // X-axis accelerometer output, upper word
	Y_ACCL_LOW    = 0x14 // Y-axis accelerometer output, lower word
	Y_ACCL_OUT    = 0x16 // Y-axis accelerometer output, upper word
	Z_ACCL_LOW    = 0x18 // Z-axis accelerometer output, lower word
	Z_ACCL_OUT    = 0x1A // Z-axis accelerometer output, upper word
	TEMP_OUT      = 0x1C // Temperature output (internal, not calibrated)
	TIME_STAMP    = 0x1E // PPS mode time stamp
	X_DELTANG_LOW = 0x24 // X-axis delta angle output, lower word
	X_DELTANG_OUT = 0x26 // X-axis delta angle output, upper word
	Y_DELTANG_LOW = 0x28 // Y-axis delta angle output, lower word
	Y_DELTANG_OUT = 0x2A // Y-axis delta angle output, upper word
	Z_DELTANG_LOW = 0x2C // Z-axis delta angle output, lower word
	Z_DELTANG_OUT = 0x2E // Z-axis delta angle output, upper word
	X_DELTVEL_LOW = 0x30 // X-axis delta velocity output, lower word
	X_DELTVEL_OUT = 0x32 // X-axis delta velocity output, upper word
	Y_DELTVEL_LOW = 0x34 // Y-axis delta velocity output, lower word
	Y_DELTVEL_OUT = 0x36 // Y-axis delta velocity output, upper word
	Z_DELTVEL_LOW = 0x38 // Z-axis delta velocity output, lower word
	Z_DELTVEL_OUT = 0x3A // Z-axis delta velocity output, upper word
	XG_BIAS_LOW   = 0x40 // X-axis gyroscope bias offset correction, lower word
	XG_BIAS_HIGH  = 0x42 // X-axis gyroscope bias offset correction, upper word
	YG_BIAS_LOW   = 0x44 // Y-axis gyroscope bias offset correction, lower word
	YG_BIAS_HIGH  = 0x46 // Y-axis gyroscope bias offset correction, upper word
	ZG_BIAS_LOW   = 0x48 // Z-axis gyroscope bias offset correction, lower word
	ZG_BIAS_HIGH  = 0x4A // Z-axis gyroscope bias offset correction, upper word
	XA_BIAS_LOW   = 0x4C // X-axis accelerometer bias offset correction, lower word
	XA_BIAS_HIGH  = 0x4E // X-axis accelerometer bias offset correction, upper word
	YA_BIAS_LOW   = 0x50 // Y-axis accelerometer bias offset correction, lower word
	YA_BIAS_HIGH  = 0x52 // Y-axis accelerometer bias offset correction, upper word
	ZA_BIAS_LOW   = 0x54 // Z-axis accelerometer bias offset correction, lower word
	ZA_BIAS_HIGH  = 0x56 // Z-axis accelerometer bias offset correction, upper word
	FILT_CTRL     = 0x5C // Filter control
	MSC_CTRL      = 0x60 // Miscellaneous control
	UP_SCALE      = 0x62 // Clock scale factor, PPS mode
	DEC_RATE      = 0x64 // Decimation rate control (output data rate)
	NULL_CNFG     = 0x66 // Auto-null configuration control
	GLOB_CMD      = 0x68 // Global commands
	FIRM_REV      = 0x6C // Firmware revision
	FIRM_DM       = 0x6E // Firmware revision date, month and day
	FIRM_Y        = 0x70 // Firmware revision date, year
	PROD_ID       = 0x72 // Product identification
	SERIAL_NUM    = 0x74 // Serial number (relative to assembly lot)
	USER_SCR1     = 0x76 // User scratch register 1
	USER_SCR2     = 0x78 // User scratch register 2
	USER_SCR3     = 0x7A // User scratch register 3
	FLSHCNT_LOW   = 0x7C // Flash update count, lower word
	FLSHCNT_HIGH  = 0x7E // Flash update count, upper word
)

// ProductID is the value PROD_ID reads back on a genuine part.
const ProductID = 16470

// globCmdSelfTest starts the on-chip sensor self test.
const globCmdSelfTest = 1 << 2

// DIAG_STAT bits. Bit 0 is reserved; any other set bit is an error.
const (
	DiagDataPathOverrun = 1 << 1
	DiagFlashFailure    = 1 << 2
	DiagSPIError        = 1 << 3
	DiagStandby         = 1 << 4
	DiagSensorFailure   = 1 << 5
	DiagMemoryFailure   = 1 << 6
	DiagClockError      = 1 << 7
)

const (
	// mscCtrlDataReadyHigh makes the data-ready line active high.
	mscCtrlDataReadyHigh = 0x0001
	// internalSampleRate is the rate of the unscaled sample clock in Hz.
	internalSampleRate = 2000
	// MaxDecimationRate is the largest value DEC_RATE accepts.
	MaxDecimationRate = 1999
	// deltaAngleRange is the full-scale delta angle in degrees for a 32-bit reading.
	deltaAngleRange = 2160.0
)

// BurstPacket is the auto-read command sequence sent on every data-ready edge.
// Each pair is one 16-bit read command: register address, then a zero byte.
// The response to each command arrives during the following word, so one
// trailing zero word clocks out the PROD_ID echo.
var BurstPacket = [14]byte{
	X_DELTANG_OUT,
	FLASH_CNT,
	X_DELTANG_LOW,
	FLASH_CNT,
	Y_DELTANG_OUT,
	FLASH_CNT,
	Y_DELTANG_LOW,
	FLASH_CNT,
	Z_DELTANG_OUT,
	FLASH_CNT,
	Z_DELTANG_LOW,
	FLASH_CNT,
	PROD_ID,
	FLASH_CNT,
}

// burstWords is the number of 16-bit transactions in one burst.
const burstWords = len(BurstPacket)/2 + 1

// CountsToDegrees converts a 32-bit delta angle reading to degrees.
func CountsToDegrees(counts int32) float64 {
	return float64(counts) / 2147483648.0 * deltaAngleRange
}

// OutputRate returns the output data rate in Hz for a DEC_RATE value.
func OutputRate(decimation uint16) float64 {
	return internalSampleRate / float64(int(decimation)+1)
}
