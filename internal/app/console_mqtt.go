package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/relabs-tech/adis16470_imu/internal/config"
	"github.com/relabs-tech/adis16470_imu/internal/logging"
	"github.com/relabs-tech/adis16470_imu/internal/telemetry"
)

// RunConsoleMQTT prints every heading snapshot published on the broker
// until ctx is cancelled.
func RunConsoleMQTT(ctx context.Context) error {
	cfg := config.Get()
	logger, err := logging.NewLogger("console", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return errors.Wrap(token.Error(), "MQTT connect")
	}
	defer client.Disconnect(250)
	logger.Infow("console: connected to MQTT broker", "broker", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicHeading, 0, func(_ mqtt.Client, msg mqtt.Message) {
		printHeading(os.Stdout, msg.Payload(), logger)
	})
	token.Wait()
	if token.Error() != nil {
		return errors.Wrapf(token.Error(), "subscribe %s", cfg.TopicHeading)
	}
	logger.Infow("console: subscribed", "topic", cfg.TopicHeading)

	<-ctx.Done()
	logger.Infow("console: shutting down")
	return nil
}

func printHeading(w io.Writer, payload []byte, logger *zap.SugaredLogger) {
	var s telemetry.Snapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		logger.Warnw("console: heading unmarshal error", "error", err)
		return
	}
	f := s.Fields
	fmt.Fprintf(w,
		"[HDG] %s  YAW=%9.3f°  RATE=%8.3f°/s  X=%9.3f° Y=%9.3f° Z=%9.3f°  samples=%.0f dropped=%.0f\n",
		s.Time.Format("15:04:05.000"), f["Yaw Angle"], f["Yaw Rate"], f["Angle X"], f["Angle Y"], f["Angle Z"],
		f["Samples"], f["Dropped"],
	)
}
