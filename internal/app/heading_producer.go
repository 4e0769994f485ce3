package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/adis16470_imu/internal/config"
	"github.com/relabs-tech/adis16470_imu/internal/logging"
	"github.com/relabs-tech/adis16470_imu/internal/telemetry"
)

// RunHeadingProducer starts the IMU, publishes its heading table on MQTT and
// serves it over HTTP until ctx is cancelled. With mock set a simulated
// sensor replaces the hardware.
func RunHeadingProducer(ctx context.Context, mock bool) error {
	cfg := config.Get()
	logger, err := logging.NewLogger("heading", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Infow("starting ADIS16470 heading producer", "mock", mock)

	// --- IMU: calibrates before returning, keep the sensor still ---
	dev, err := openIMU(cfg, mock, logger)
	if err != nil {
		return errors.Wrap(err, "open IMU")
	}
	defer func() {
		if err := dev.Close(); err != nil {
			logger.Warnw("closing IMU", "error", err)
		}
	}()

	table := telemetry.NewTable("heading")
	dev.RegisterTelemetry(table)
	table.AddDoubles([]string{"Samples", "Dropped"}, func() []float64 {
		s := dev.Stats()
		return []float64{float64(s.Samples), float64(s.Dropped)}
	})

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return errors.Wrap(token.Error(), "MQTT connect")
	}
	defer client.Disconnect(250)
	logger.Infow("connected to MQTT", "broker", cfg.MQTTBroker)

	interval := time.Duration(cfg.TelemetryInterval) * time.Millisecond
	return serveHeading(ctx, dev, table, client, cfg, interval, logger)
}

// serveHeading runs the MQTT publisher and the web server until ctx is done
// or either fails.
func serveHeading(ctx context.Context, ctl Controller, table *telemetry.Table, client telemetry.Publishing,
	cfg *config.Config, interval time.Duration, logger *zap.SugaredLogger,
) error {
	pub := telemetry.NewPublisher(client, cfg.TopicHeading, table, interval, nil, logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           newHeadingMux(ctl, table, interval, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pub.Run(gctx)
	})
	g.Go(func() error {
		logger.Infow("web server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "web server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	logger.Infow("heading producer stopped")
	return err
}
