// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// RegisterInfo describes one register for the debug tool.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField describes a group of bits inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// ADIS16470RegisterMap returns metadata for the ADIS16470 registers. Output
// registers are split into LOW/OUT words; writes address the lower byte.
func ADIS16470RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Status
		{Address: "0x00", Name: "FLASH_CNT", Description: "Flash memory write count", Access: "R", Default: "N/A"},
		{Address: "0x02", Name: "DIAG_STAT", Description: "Diagnostic and operational status", Access: "R", Default: "0x0000",
			BitFields: []BitField{
				{Bits: "7", Name: "CLOCK_ERROR", Description: "Clock error", Values: "1=Internal clock out of sync"},
				{Bits: "6", Name: "MEMORY_FAILURE", Description: "Flash memory test", Values: "1=Failure"},
				{Bits: "5", Name: "SENSOR_FAILURE", Description: "Self test result", Values: "1=At least one sensor failed"},
				{Bits: "4", Name: "STANDBY", Description: "Standby mode", Values: "1=Supply voltage too low"},
				{Bits: "3", Name: "SPI_ERROR", Description: "SPI communication error", Values: "1=Clock count not a multiple of 16"},
				{Bits: "2", Name: "FLASH_FAILURE", Description: "Flash memory update failure", Values: "1=Failure"},
				{Bits: "1", Name: "DATA_PATH_OVERRUN", Description: "Data path overrun", Values: "1=Processing overrun"},
			}},

		// Gyroscope
		{Address: "0x04", Name: "X_GYRO_LOW", Description: "X-axis gyroscope output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x06", Name: "X_GYRO_OUT", Description: "X-axis gyroscope output, upper word", Access: "R", Default: "N/A"},
		{Address: "0x08", Name: "Y_GYRO_LOW", Description: "Y-axis gyroscope output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x0A", Name: "Y_GYRO_OUT", Description: "Y-axis gyroscope output, upper word", Access: "R", Default: "N/A"},
		{Address: "0x0C", Name: "Z_GYRO_LOW", Description: "Z-axis gyroscope output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x0E", Name: "Z_GYRO_OUT", Description: "Z-axis gyroscope output, upper word", Access: "R", Default: "N/A"},

		// Accelerometer
		{Address: "0x10", Name: "X_ACCL_LOW", Description: "X-axis accelerometer output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x12", Name: "X_ACCL_OUT", Description: "X-axis accelerometer output, upper word", Access: "R", Default: "N/A"},
		{Address: "0x14", Name: "Y_ACCL_LOW", Description: "Y-axis accelerometer output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x16", Name: "Y_ACCL_OUT", Description: "Y-axis accelerometer output, upper word", Access: "R", Default: "N/A"},
		{Address: "0x18", Name: "Z_ACCL_LOW", Description: "Z-axis accelerometer output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x1A", Name: "Z_ACCL_OUT", Description: "Z-axis accelerometer output, upper word", Access: "R", Default: "N/A"},
		{Address: "0x1C", Name: "TEMP_OUT", Description: "Temperature output", Access: "R", Default: "N/A",
			BitFields: []BitField{
				{Bits: "15:0", Name: "TEMP", Description: "Internal temperature, 0.1 °C/LSB, 0 = 25 °C", Values: "Twos complement"},
			}},
		{Address: "0x1E", Name: "TIME_STAMP", Description: "PPS mode time stamp", Access: "R", Default: "N/A"},

		// Delta angles
		{Address: "0x24", Name: "X_DELTANG_LOW", Description: "X-axis delta angle output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x26", Name: "X_DELTANG_OUT", Description: "X-axis delta angle output, upper word", Access: "R", Default: "N/A",
			BitFields: []BitField{
				{Bits: "15:0", Name: "X_DELTANG", Description: "Upper word of the 32-bit delta angle", Values: "±2160° full scale over 2^31"},
			}},
		{Address: "0x28", Name: "Y_DELTANG_LOW", Description: "Y-axis delta angle output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x2A", Name: "Y_DELTANG_OUT", Description: "Y-axis delta angle output, upper word", Access: "R", Default: "N/A"},
		{Address: "0x2C", Name: "Z_DELTANG_LOW", Description: "Z-axis delta angle output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x2E", Name: "Z_DELTANG_OUT", Description: "Z-axis delta angle output, upper word", Access: "R", Default: "N/A"},

		// Delta velocities
		{Address: "0x30", Name: "X_DELTVEL_LOW", Description: "X-axis delta velocity output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x32", Name: "X_DELTVEL_OUT", Description: "X-axis delta velocity output, upper word", Access: "R", Default: "N/A"},
		{Address: "0x34", Name: "Y_DELTVEL_LOW", Description: "Y-axis delta velocity output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x36", Name: "Y_DELTVEL_OUT", Description: "Y-axis delta velocity output, upper word", Access: "R", Default: "N/A"},
		{Address: "0x38", Name: "Z_DELTVEL_LOW", Description: "Z-axis delta velocity output, lower word", Access: "R", Default: "N/A"},
		{Address: "0x3A", Name: "Z_DELTVEL_OUT", Description: "Z-axis delta velocity output, upper word", Access: "R", Default: "N/A"},

		// Bias corrections
		{Address: "0x40", Name: "XG_BIAS_LOW", Description: "X-axis gyroscope bias offset correction, lower word", Access: "RW", Default: "0x0000"},
		{Address: "0x42", Name: "XG_BIAS_HIGH", Description: "X-axis gyroscope bias offset correction, upper word", Access: "RW", Default: "0x0000"},
		{Address: "0x44", Name: "YG_BIAS_LOW", Description: "Y-axis gyroscope bias offset correction, lower word", Access: "RW", Default: "0x0000"},
		{Address: "0x46", Name: "YG_BIAS_HIGH", Description: "Y-axis gyroscope bias offset correction, upper word", Access: "RW", Default: "0x0000"},
		{Address: "0x48", Name: "ZG_BIAS_LOW", Description: "Z-axis gyroscope bias offset correction, lower word", Access: "RW", Default: "0x0000"},
		{Address: "0x4A", Name: "ZG_BIAS_HIGH", Description: "Z-axis gyroscope bias offset correction, upper word", Access: "RW", Default: "0x0000"},
		{Address: "0x4C", Name: "XA_BIAS_LOW", Description: "X-axis accelerometer bias offset correction, lower word", Access: "RW", Default: "0x0000"},
		{Address: "0x4E", Name: "XA_BIAS_HIGH", Description: "X-axis accelerometer bias offset correction, upper word", Access: "RW", Default: "0x0000"},
		{Address: "0x50", Name: "YA_BIAS_LOW", Description: "Y-axis accelerometer bias offset correction, lower word", Access: "RW", Default: "0x0000"},
		{Address: "0x52", Name: "YA_BIAS_HIGH", Description: "Y-axis accelerometer bias offset correction, upper word", Access: "RW", Default: "0x0000"},
		{Address: "0x54", Name: "ZA_BIAS_LOW", Description: "Z-axis accelerometer bias offset correction, lower word", Access: "RW", Default: "0x0000"},
		{Address: "0x56", Name: "ZA_BIAS_HIGH", Description: "Z-axis accelerometer bias offset correction, upper word", Access: "RW", Default: "0x0000"},

		// Control
		{Address: "0x5C", Name: "FILT_CTRL", Description: "Filter control", Access: "RW", Default: "0x0000",
			BitFields: []BitField{
				{Bits: "2:0", Name: "FILT_SIZE", Description: "Bartlett window FIR filter size B", Values: "N = 2^B taps, 0=Disabled"},
			}},
		{Address: "0x60", Name: "MSC_CTRL", Description: "Miscellaneous control", Access: "RW", Default: "0x00C1",
			BitFields: []BitField{
				{Bits: "7", Name: "LINEAR_G_COMP", Description: "Linear g compensation for gyroscopes", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "POINT_PERCUSSION", Description: "Point of percussion alignment", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:2", Name: "SYNC_MODE", Description: "Sync mode select", Values: "0=Internal, 1=Direct sync, 2=Scaled sync, 3=Output sync, 5=PPS"},
				{Bits: "1", Name: "SYNC_POL", Description: "SYNC polarity", Values: "0=Falling edge, 1=Rising edge"},
				{Bits: "0", Name: "DR_POL", Description: "Data ready polarity", Values: "0=Active low, 1=Active high"},
			}},
		{Address: "0x62", Name: "UP_SCALE", Description: "Clock scale factor, PPS mode", Access: "RW", Default: "0x07D0"},
		{Address: "0x64", Name: "DEC_RATE", Description: "Decimation rate control", Access: "RW", Default: "0x0000",
			BitFields: []BitField{
				{Bits: "10:0", Name: "D", Description: "Output rate = 2000 / (D + 1) SPS", Values: "0-1999"},
			}},
		{Address: "0x66", Name: "NULL_CNFG", Description: "Auto-null configuration control", Access: "RW", Default: "0x070A",
			BitFields: []BitField{
				{Bits: "13:8", Name: "EN", Description: "Bias estimation enable per axis", Values: "1=Enabled"},
				{Bits: "3:0", Name: "TBC", Description: "Time base control", Values: "Tb = 2^TBC / 2000 s"},
			}},
		{Address: "0x68", Name: "GLOB_CMD", Description: "Global commands", Access: "W", Default: "N/A",
			BitFields: []BitField{
				{Bits: "7", Name: "SOFTWARE_RESET", Description: "Software reset", Values: "1=Reset"},
				{Bits: "4", Name: "FLASH_MEMORY_TEST", Description: "Flash memory test", Values: "1=Run"},
				{Bits: "3", Name: "FLASH_MEMORY_UPDATE", Description: "Save registers to flash", Values: "1=Run"},
				{Bits: "2", Name: "SENSOR_SELF_TEST", Description: "On-chip self test", Values: "1=Run"},
				{Bits: "1", Name: "FACTORY_CALIBRATION_RESTORE", Description: "Restore factory calibration", Values: "1=Run"},
				{Bits: "0", Name: "BIAS_CORRECTION_UPDATE", Description: "Apply auto-null bias", Values: "1=Run"},
			}},

		// Identification
		{Address: "0x6C", Name: "FIRM_REV", Description: "Firmware revision", Access: "R", Default: "N/A"},
		{Address: "0x6E", Name: "FIRM_DM", Description: "Firmware revision date, month and day", Access: "R", Default: "N/A"},
		{Address: "0x70", Name: "FIRM_Y", Description: "Firmware revision date, year", Access: "R", Default: "N/A"},
		{Address: "0x72", Name: "PROD_ID", Description: "Product identification", Access: "R", Default: "0x4056"},
		{Address: "0x74", Name: "SERIAL_NUM", Description: "Serial number, relative to assembly lot", Access: "R", Default: "N/A"},
		{Address: "0x76", Name: "USER_SCR1", Description: "User scratch register 1", Access: "RW", Default: "N/A"},
		{Address: "0x78", Name: "USER_SCR2", Description: "User scratch register 2", Access: "RW", Default: "N/A"},
		{Address: "0x7A", Name: "USER_SCR3", Description: "User scratch register 3", Access: "RW", Default: "N/A"},
		{Address: "0x7C", Name: "FLSHCNT_LOW", Description: "Flash update count, lower word", Access: "R", Default: "N/A"},
		{Address: "0x7E", Name: "FLSHCNT_HIGH", Description: "Flash update count, upper word", Access: "R", Default: "N/A"},
	}
}
