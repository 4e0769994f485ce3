package adis16470

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrHardwareFault reports an unresponsive bus, an unexpected echo or a
	// timeout while switching modes. The driver stays in its last good mode.
	ErrHardwareFault = errors.New("adis16470: hardware fault")
	// ErrCalibrationFailed reports a diagnostic error while averaging. The
	// previous bias offsets are kept.
	ErrCalibrationFailed = errors.New("adis16470: calibration failed")
	// ErrWrongMode is returned for register access or calibration while streaming.
	ErrWrongMode = errors.New("adis16470: operation requires manual mode")
	// ErrNotCalibrated is returned when streaming is requested before the first calibration.
	ErrNotCalibrated = errors.New("adis16470: not calibrated")
	// ErrInvalidCalibrationTime is returned for a calibration time outside the supported steps.
	ErrInvalidCalibrationTime = errors.New("adis16470: invalid calibration time")
	// ErrClosed is returned by every command after Close.
	ErrClosed = errors.New("adis16470: closed")
)

// hardwareFault wraps ErrHardwareFault with the failed step and, if any, the bus error.
func hardwareFault(cause error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return errors.Wrap(ErrHardwareFault, msg)
}
