package sensors

import (
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"

	"github.com/relabs-tech/adis16470_imu/internal/adis16470"
	"github.com/relabs-tech/adis16470_imu/internal/config"
)

func TestRegisterMapMatchesDriver(t *testing.T) {
	want := map[string]uint8{
		"FLASH_CNT":     adis16470.FLASH_CNT,
		"DIAG_STAT":     adis16470.DIAG_STAT,
		"X_DELTANG_LOW": adis16470.X_DELTANG_LOW,
		"X_DELTANG_OUT": adis16470.X_DELTANG_OUT,
		"Y_DELTANG_OUT": adis16470.Y_DELTANG_OUT,
		"Z_DELTANG_OUT": adis16470.Z_DELTANG_OUT,
		"FILT_CTRL":     adis16470.FILT_CTRL,
		"MSC_CTRL":      adis16470.MSC_CTRL,
		"DEC_RATE":      adis16470.DEC_RATE,
		"GLOB_CMD":      adis16470.GLOB_CMD,
		"PROD_ID":       adis16470.PROD_ID,
		"FLSHCNT_HIGH":  adis16470.FLSHCNT_HIGH,
	}

	seen := make(map[uint64]string)
	for _, r := range ADIS16470RegisterMap() {
		test.That(t, strings.HasPrefix(r.Address, "0x"), test.ShouldBeTrue)
		addr, err := strconv.ParseUint(r.Address[2:], 16, 8)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, addr%2, test.ShouldEqual, uint64(0))
		test.That(t, seen[addr], test.ShouldBeEmpty)
		seen[addr] = r.Name

		if reg, ok := want[r.Name]; ok {
			test.That(t, addr, test.ShouldEqual, uint64(reg))
			delete(want, r.Name)
		}
		test.That(t, []string{"R", "W", "RW"}, test.ShouldContain, r.Access)
	}
	test.That(t, want, test.ShouldBeEmpty)
}

func TestHardwareFromDefaults(t *testing.T) {
	hw := HardwareFromConfig(config.Defaults())
	test.That(t, hw.SPIDevice, test.ShouldEqual, "/dev/spidev0.0")
	test.That(t, hw.SpeedHz, test.ShouldEqual, 1000000)
}
