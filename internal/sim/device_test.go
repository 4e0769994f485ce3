package sim

import (
	"testing"
	"time"

	"go.viam.com/test"
	"periph.io/x/conn/v3/gpio"

	"github.com/relabs-tech/adis16470_imu/internal/adis16470"
)

func readWord(t *testing.T, d *Device, reg uint8) uint16 {
	t.Helper()
	test.That(t, d.Tx([]byte{reg, 0}, nil), test.ShouldBeNil)
	r := make([]byte, 2)
	test.That(t, d.Tx([]byte{0, 0}, r), test.ShouldBeNil)
	return uint16(r[0])<<8 | uint16(r[1])
}

func TestResponseLatency(t *testing.T) {
	d := New()
	test.That(t, readWord(t, d, adis16470.PROD_ID), test.ShouldEqual, uint16(adis16470.ProductID))
	test.That(t, d.Reads(adis16470.PROD_ID), test.ShouldEqual, 1)
}

func TestWriteBytes(t *testing.T) {
	d := New()
	test.That(t, d.Tx([]byte{0x80 | adis16470.DEC_RATE, 0x34}, nil), test.ShouldBeNil)
	test.That(t, d.Tx([]byte{0x80 | (adis16470.DEC_RATE + 1), 0x12}, nil), test.ShouldBeNil)
	test.That(t, d.Register(adis16470.DEC_RATE), test.ShouldEqual, uint16(0x1234))
	test.That(t, readWord(t, d, adis16470.DEC_RATE), test.ShouldEqual, uint16(0x1234))
}

func TestDeltaAngleWords(t *testing.T) {
	d := New()
	d.SetDeltaAngles([3]int32{-2, 0x00010002, 7})
	test.That(t, readWord(t, d, adis16470.X_DELTANG_OUT), test.ShouldEqual, uint16(0xFFFF))
	test.That(t, readWord(t, d, adis16470.X_DELTANG_LOW), test.ShouldEqual, uint16(0xFFFE))
	test.That(t, readWord(t, d, adis16470.Y_DELTANG_OUT), test.ShouldEqual, uint16(0x0001))
	test.That(t, readWord(t, d, adis16470.Y_DELTANG_LOW), test.ShouldEqual, uint16(0x0002))
}

func TestDiagFault(t *testing.T) {
	d := New()
	d.FailDiagAfter(2, adis16470.DiagSensorFailure)
	test.That(t, readWord(t, d, adis16470.DIAG_STAT), test.ShouldEqual, uint16(0))
	test.That(t, readWord(t, d, adis16470.DIAG_STAT), test.ShouldEqual, uint16(adis16470.DiagSensorFailure))
	d.FailDiagAfter(0, 0)
	test.That(t, readWord(t, d, adis16470.DIAG_STAT), test.ShouldEqual, uint16(0))
}

func TestEdges(t *testing.T) {
	d := New()
	test.That(t, d.WaitForEdge(time.Millisecond), test.ShouldBeFalse)

	test.That(t, d.In(gpio.PullDown, gpio.RisingEdge), test.ShouldBeNil)
	test.That(t, d.Armed(), test.ShouldBeTrue)
	go d.Feed(Frame{DeltaAngle: [3]int32{1, 2, 3}})
	test.That(t, d.WaitForEdge(5*time.Second), test.ShouldBeTrue)
	test.That(t, readWord(t, d, adis16470.Z_DELTANG_LOW), test.ShouldEqual, uint16(3))

	done := make(chan bool)
	go func() { done <- d.WaitForEdge(-1) }()
	for {
		test.That(t, d.Halt(), test.ShouldBeNil)
		select {
		case ok := <-done:
			test.That(t, ok, test.ShouldBeFalse)
			return
		case <-time.After(time.Millisecond):
		}
	}
}

func TestDegreesToCounts(t *testing.T) {
	test.That(t, adis16470.CountsToDegrees(DegreesToCounts(1.5)), test.ShouldAlmostEqual, 1.5, 1e-6)
	test.That(t, DegreesToCounts(0), test.ShouldEqual, int32(0))
}

func TestMotionFrame(t *testing.T) {
	m := DefaultMotion(2500 * time.Microsecond)
	f := m.Frame(1)
	z := adis16470.CountsToDegrees(f.DeltaAngle[2])
	test.That(t, z, test.ShouldAlmostEqual, 30*0.0025+m.Bias[2], 1e-6)
	test.That(t, f.Corrupt, test.ShouldBeFalse)
}
