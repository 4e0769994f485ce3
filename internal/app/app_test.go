package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/relabs-tech/adis16470_imu/internal/adis16470"
	"github.com/relabs-tech/adis16470_imu/internal/config"
	"github.com/relabs-tech/adis16470_imu/internal/telemetry"
)

func mockConfig() *config.Config {
	cfg := config.Defaults()
	cfg.MQTTBroker = "tcp://localhost:1883"
	cfg.IMUCalTime = adis16470.CalTime32ms
	cfg.WebServerPort = 0
	cfg.RegisterDebugPort = 1
	return cfg
}

func openMock(t *testing.T) imuDevice {
	t.Helper()
	dev, err := openIMU(mockConfig(), true, zaptest.NewLogger(t).Sugar())
	test.That(t, err, test.ShouldBeNil)
	return dev
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conn.SetReadDeadline(time.Now().Add(30*time.Second)), test.ShouldBeNil)
	return conn
}

func TestMockDeviceStreams(t *testing.T) {
	dev := openMock(t)
	defer func() { test.That(t, dev.Close(), test.ShouldBeNil) }()

	test.That(t, dev.Mode(), test.ShouldEqual, adis16470.ModeStreaming)
	deadline := time.Now().Add(5 * time.Second)
	for dev.Stats().Samples < 10 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	test.That(t, dev.Stats().Samples, test.ShouldBeGreaterThanOrEqualTo, uint64(10))
	// The simulated sensor turns positively about Z.
	test.That(t, dev.Snapshot().Angle[adis16470.AxisZ], test.ShouldBeGreaterThan, 0.0)
}

func TestControlHandler(t *testing.T) {
	dev := openMock(t)
	defer func() { test.That(t, dev.Close(), test.ShouldBeNil) }()

	srv := httptest.NewServer(ControlHandler(dev, zap.NewNop().Sugar()))
	defer srv.Close()
	conn := dial(t, srv, "")
	defer conn.Close()

	roundTrip := func(msg ControlMessage) ControlResponse {
		test.That(t, conn.WriteJSON(msg), test.ShouldBeNil)
		var resp ControlResponse
		test.That(t, conn.ReadJSON(&resp), test.ShouldBeNil)
		return resp
	}

	resp := roundTrip(ControlMessage{Action: "status"})
	test.That(t, resp.Type, test.ShouldEqual, "status")
	test.That(t, resp.Mode, test.ShouldEqual, "streaming")
	test.That(t, resp.CalTime, test.ShouldEqual, "32ms")
	test.That(t, resp.Bias, test.ShouldNotBeNil)
	test.That(t, resp.Heading.Yaw, test.ShouldEqual, adis16470.AxisZ)

	resp = roundTrip(ControlMessage{Action: "reset"})
	test.That(t, resp.Type, test.ShouldEqual, "status")
	test.That(t, resp.Message, test.ShouldEqual, "totals reset")

	resp = roundTrip(ControlMessage{Action: "reconfigure", CalTime: "64ms"})
	test.That(t, resp.Type, test.ShouldEqual, "status")
	test.That(t, resp.CalTime, test.ShouldEqual, "64ms")
	test.That(t, resp.Mode, test.ShouldEqual, "streaming")

	resp = roundTrip(ControlMessage{Action: "reconfigure", CalTime: "3s"})
	test.That(t, resp.Type, test.ShouldEqual, "error")
	test.That(t, resp.Message, test.ShouldContainSubstring, "invalid calibration time")
	test.That(t, dev.CalibrationTime(), test.ShouldEqual, adis16470.CalTime64ms)

	resp = roundTrip(ControlMessage{Action: "spin"})
	test.That(t, resp.Type, test.ShouldEqual, "error")
}

func TestRegisterDebugHandler(t *testing.T) {
	dev := openMock(t)
	defer func() { test.That(t, dev.Close(), test.ShouldBeNil) }()

	srv := httptest.NewServer(RegisterDebugHandler(dev, nil, zap.NewNop().Sugar()))
	defer srv.Close()
	conn := dial(t, srv, "")
	defer conn.Close()

	var resp RegisterResponse
	test.That(t, conn.ReadJSON(&resp), test.ShouldBeNil)
	test.That(t, resp.Type, test.ShouldEqual, "register_map")
	test.That(t, len(resp.RegisterMap), test.ShouldBeGreaterThan, 50)

	roundTrip := func(cmd RegisterCmd) RegisterResponse {
		test.That(t, conn.WriteJSON(cmd), test.ShouldBeNil)
		var resp RegisterResponse
		test.That(t, conn.ReadJSON(&resp), test.ShouldBeNil)
		return resp
	}

	resp = roundTrip(RegisterCmd{Action: "read", Address: "0x72"})
	test.That(t, resp.Type, test.ShouldEqual, "error")
	test.That(t, resp.Message, test.ShouldContainSubstring, "manual mode")

	resp = roundTrip(RegisterCmd{Action: "manual"})
	test.That(t, resp.Type, test.ShouldEqual, "status")
	test.That(t, resp.Mode, test.ShouldEqual, "manual")

	resp = roundTrip(RegisterCmd{Action: "read", Address: "0x72"})
	test.That(t, resp.Type, test.ShouldEqual, "register_data")
	test.That(t, resp.Value, test.ShouldEqual, "0x4056")

	resp = roundTrip(RegisterCmd{Action: "write", Address: "0x76", Value: "0xBEEF"})
	test.That(t, resp.Type, test.ShouldEqual, "register_data")
	test.That(t, resp.Message, test.ShouldEqual, "write successful")

	resp = roundTrip(RegisterCmd{Action: "write", Address: "0x72", Value: "0x0001"})
	test.That(t, resp.Type, test.ShouldEqual, "error")
	test.That(t, resp.Message, test.ShouldContainSubstring, "not writable")

	resp = roundTrip(RegisterCmd{Action: "read", Address: "0x73"})
	test.That(t, resp.Type, test.ShouldEqual, "error")

	resp = roundTrip(RegisterCmd{Action: "read_all"})
	test.That(t, resp.Type, test.ShouldEqual, "register_data")
	test.That(t, resp.Registers["0x72"], test.ShouldEqual, "0x4056")
	test.That(t, resp.Registers["0x76"], test.ShouldEqual, "0xBEEF")
	test.That(t, resp.Registers, test.ShouldNotContainKey, "0x68")

	resp = roundTrip(RegisterCmd{Action: "streaming"})
	test.That(t, resp.Type, test.ShouldEqual, "status")
	test.That(t, resp.Mode, test.ShouldEqual, "streaming")
}

func TestParseRegister(t *testing.T) {
	for in, want := range map[string]uint8{"0x72": 0x72, "0X00": 0, "7e": 0x7E} {
		got, err := parseRegister(in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, want)
	}
	for _, bad := range []string{"", "0x81", "0x71", "zz"} {
		_, err := parseRegister(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestHeadingMux(t *testing.T) {
	table := telemetry.NewTable("heading")
	srv := httptest.NewServer(newHeadingMux(nil, table, 10*time.Millisecond, zap.NewNop().Sugar()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/heading")
	test.That(t, err, test.ShouldBeNil)
	resp.Body.Close()
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusServiceUnavailable)

	table.AddDouble("Yaw Angle", func() float64 { return 42 })
	resp, err = http.Get(srv.URL + "/api/heading")
	test.That(t, err, test.ShouldBeNil)
	defer resp.Body.Close()
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	var s telemetry.Snapshot
	test.That(t, json.NewDecoder(resp.Body).Decode(&s), test.ShouldBeNil)
	test.That(t, s.Fields["Yaw Angle"], test.ShouldEqual, 42.0)
}

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type countingClient struct {
	mu sync.Mutex
	n  int
}

func (c *countingClient) Publish(string, byte, bool, interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return doneToken{}
}

func (c *countingClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestServeHeadingStopsOnCancel(t *testing.T) {
	dev := openMock(t)
	defer func() { test.That(t, dev.Close(), test.ShouldBeNil) }()

	table := telemetry.NewTable("heading")
	dev.RegisterTelemetry(table)
	client := &countingClient{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveHeading(ctx, dev, table, client, mockConfig(), 5*time.Millisecond, zap.NewNop().Sugar())
	}()

	deadline := time.Now().Add(5 * time.Second)
	for client.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	test.That(t, client.count(), test.ShouldBeGreaterThanOrEqualTo, 3)

	cancel()
	select {
	case err := <-done:
		test.That(t, err, test.ShouldBeNil)
	case <-time.After(5 * time.Second):
		t.Fatal("serveHeading did not stop")
	}
}

func TestPrintHeading(t *testing.T) {
	payload, err := json.Marshal(telemetry.Snapshot{
		Name:   "heading",
		Time:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Fields: map[string]float64{"Yaw Angle": 90.5, "Yaw Rate": -1, "Samples": 400},
	})
	test.That(t, err, test.ShouldBeNil)

	var buf bytes.Buffer
	printHeading(&buf, payload, zap.NewNop().Sugar())
	test.That(t, buf.String(), test.ShouldContainSubstring, "YAW=   90.500°")
	test.That(t, buf.String(), test.ShouldContainSubstring, "samples=400")

	buf.Reset()
	printHeading(&buf, []byte("not json"), zap.NewNop().Sugar())
	test.That(t, buf.Len(), test.ShouldEqual, 0)
}
