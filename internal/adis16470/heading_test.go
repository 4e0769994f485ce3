package adis16470

import (
	"math"
	"sync"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestAccumulateSubtractsBias(t *testing.T) {
	h := NewHeading(AxisZ, 10*time.Millisecond)
	bias := BiasOffsets{0.5, 0, 0}
	now := time.Unix(0, 0)
	for i, x := range []float64{1.0, 2.0, 3.0, 4.0} {
		h.accumulate([3]float64{x, 0, 0}, bias, now.Add(time.Duration(i)*10*time.Millisecond))
	}
	test.That(t, h.AngleX(), test.ShouldEqual, 8.0)
	test.That(t, h.AngleY(), test.ShouldEqual, 0.0)
	test.That(t, h.AngleZ(), test.ShouldEqual, 0.0)
}

func TestAccumulateOrder(t *testing.T) {
	deltas := []float64{1e16, 1.0, -1e16, 0.1, 3.3}
	h := NewHeading(AxisY, time.Millisecond)
	want := 0.0
	now := time.Unix(0, 0)
	for i, d := range deltas {
		h.accumulate([3]float64{0, d, 0}, BiasOffsets{0, 0.25, 0}, now.Add(time.Duration(i)*time.Millisecond))
		want += d - 0.25
	}
	test.That(t, h.Angle(), test.ShouldEqual, want)
	test.That(t, h.AngleY(), test.ShouldEqual, want)
}

func TestAccumulateRates(t *testing.T) {
	h := NewHeading(AxisZ, 4*time.Millisecond)
	start := time.Unix(100, 0)

	// The first frame uses the nominal period.
	h.accumulate([3]float64{0, 0, 0.02}, BiasOffsets{}, start)
	test.That(t, h.Rate(), test.ShouldAlmostEqual, 5.0, 1e-9)

	h.accumulate([3]float64{0.01, 0, 0.02}, BiasOffsets{}, start.Add(10*time.Millisecond))
	test.That(t, h.RateZ(), test.ShouldAlmostEqual, 2.0, 1e-9)
	test.That(t, h.RateX(), test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, h.RateY(), test.ShouldEqual, 0.0)
}

func TestReset(t *testing.T) {
	h := NewHeading(AxisZ, time.Millisecond)
	h.accumulate([3]float64{1, 2, 3}, BiasOffsets{}, time.Unix(0, 0))
	rate := h.Rate()
	h.Reset()

	s := h.Snapshot()
	test.That(t, s.Angle, test.ShouldResemble, [3]float64{})
	test.That(t, s.YawRate(), test.ShouldEqual, rate)

	h.accumulate([3]float64{0, 0, 1}, BiasOffsets{}, time.Unix(0, int64(time.Millisecond)))
	test.That(t, h.AngleZ(), test.ShouldEqual, 1.0)
}

func TestYawSelection(t *testing.T) {
	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		h := NewHeading(axis, time.Millisecond)
		h.accumulate([3]float64{1, 2, 3}, BiasOffsets{}, time.Unix(0, 0))
		test.That(t, h.Angle(), test.ShouldEqual, float64(axis)+1)
		test.That(t, h.YawAxis(), test.ShouldEqual, axis)
		test.That(t, h.Snapshot().YawAngle(), test.ShouldEqual, float64(axis)+1)
	}
}

// Every snapshot must show whole frames: each frame adds 1 to X and 2 to Z.
func TestSnapshotNotTorn(t *testing.T) {
	h := NewHeading(AxisZ, time.Millisecond)
	const frames = 5000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		now := time.Unix(0, 0)
		for i := 0; i < frames; i++ {
			h.accumulate([3]float64{1, 0, 2}, BiasOffsets{}, now.Add(time.Duration(i)*time.Millisecond))
		}
	}()

	for i := 0; i < frames; i++ {
		s := h.Snapshot()
		test.That(t, s.Angle[AxisZ], test.ShouldEqual, 2*s.Angle[AxisX])
	}
	wg.Wait()
	test.That(t, h.AngleX(), test.ShouldEqual, float64(frames))
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis(" y ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a, test.ShouldEqual, AxisY)
	test.That(t, a.String(), test.ShouldEqual, "Y")

	_, err = ParseAxis("w")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, Axis(3).Valid(), test.ShouldBeFalse)
}

func TestCalibrationTimeSamples(t *testing.T) {
	rate := OutputRate(4)
	test.That(t, rate, test.ShouldEqual, 400.0)
	test.That(t, CalTime32ms.Samples(rate), test.ShouldEqual, 13)
	test.That(t, CalTime4s.Samples(rate), test.ShouldEqual, 1638)
	test.That(t, CalTime64s.Window(), test.ShouldEqual, 65536*time.Millisecond)

	prev := 0
	for c := CalTime32ms; c <= CalTime64s; c++ {
		n := c.Samples(rate)
		test.That(t, n, test.ShouldBeGreaterThan, prev)
		prev = n
	}

	// Very slow output still takes one sample.
	test.That(t, CalTime32ms.Samples(OutputRate(MaxDecimationRate)), test.ShouldEqual, 1)
}

func TestParseCalibrationTime(t *testing.T) {
	for i, name := range calTimeNames {
		c, err := ParseCalibrationTime(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, c, test.ShouldEqual, CalibrationTime(i))
		test.That(t, c.String(), test.ShouldEqual, name)
	}
	c, err := ParseCalibrationTime("7")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, CalTime4s)

	for _, bad := range []string{"", "3s", "12", "-1"} {
		_, err := ParseCalibrationTime(bad)
		test.That(t, err, test.ShouldBeError)
		test.That(t, err.Error(), test.ShouldContainSubstring, ErrInvalidCalibrationTime.Error())
	}
	test.That(t, CalibrationTime(12).Valid(), test.ShouldBeFalse)
}

func TestCountsToDegrees(t *testing.T) {
	test.That(t, CountsToDegrees(0), test.ShouldEqual, 0.0)
	test.That(t, CountsToDegrees(math.MinInt32), test.ShouldEqual, -2160.0)
	test.That(t, CountsToDegrees(1<<30), test.ShouldEqual, 1080.0)
}

func TestDecodeBurst(t *testing.T) {
	replies := [][]byte{
		{0xAA, 0xAA},
		{0xFF, 0xFF}, {0xFF, 0xFE}, // X = -2
		{0x00, 0x01}, {0x00, 0x02}, // Y = 0x00010002
		{0x00, 0x00}, {0x00, 0x07}, // Z = 7
		{0x40, 0x56},
	}
	s := decodeBurst(replies)
	test.That(t, s.DeltaAngle, test.ShouldResemble, [3]int32{-2, 0x00010002, 7})
	test.That(t, s.Valid(), test.ShouldBeTrue)

	replies[7] = []byte{0x00, 0x00}
	test.That(t, decodeBurst(replies).Valid(), test.ShouldBeFalse)
}

func TestBurstPacket(t *testing.T) {
	test.That(t, burstWords, test.ShouldEqual, 8)
	for i := 1; i < len(BurstPacket); i += 2 {
		test.That(t, BurstPacket[i], test.ShouldEqual, byte(FLASH_CNT))
	}
	test.That(t, BurstPacket[12], test.ShouldEqual, byte(PROD_ID))
}

func TestRestartUsesNominalPeriod(t *testing.T) {
	h := NewHeading(AxisZ, 10*time.Millisecond)
	start := time.Unix(0, 0)
	h.accumulate([3]float64{0, 0, 0.02}, BiasOffsets{}, start)
	h.restart()
	h.accumulate([3]float64{0, 0, 0.02}, BiasOffsets{}, start.Add(5*time.Second))
	test.That(t, h.RateZ(), test.ShouldAlmostEqual, 2.0, 1e-9)
	test.That(t, h.AngleZ(), test.ShouldAlmostEqual, 0.04, 1e-12)
}
