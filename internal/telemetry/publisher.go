// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/benbjohnson/clock"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Publishing is the part of mqtt.Client the publisher uses.
type Publishing interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher sends table snapshots to an MQTT topic, retained, QoS 0.
type Publisher struct {
	client   Publishing
	topic    string
	table    *Table
	interval time.Duration
	clock    clock.Clock
	logger   *zap.SugaredLogger
	warn     *rate.Limiter
}

// NewPublisher returns a publisher for table. A nil clk selects the wall clock.
func NewPublisher(client Publishing, topic string, table *Table, interval time.Duration,
	clk clock.Clock, logger *zap.SugaredLogger,
) *Publisher {
	if clk == nil {
		clk = clock.New()
	}
	return &Publisher{
		client:   client,
		topic:    topic,
		table:    table,
		interval: interval,
		clock:    clk,
		logger:   logger,
		warn:     rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
}

// PublishOnce publishes one snapshot and waits for the broker.
func (p *Publisher) PublishOnce() error {
	payload, err := json.Marshal(p.table.Snapshot(p.clock.Now()))
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	if token := p.client.Publish(p.topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "publish %s", p.topic)
	}
	return nil
}

// Run publishes every interval until ctx is done. Publish failures are
// logged and do not stop the loop.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Infow("publishing telemetry", "topic", p.topic, "interval", p.interval)
	ticker := p.clock.Ticker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.PublishOnce(); err != nil && p.warn.Allow() {
				p.logger.Warnw("telemetry publish failed", "error", err)
			}
		}
	}
}
