// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboards are served from other ports
	},
}

// SnapshotHandler serves the latest snapshot as JSON, or 503 while the
// table has no fields.
func SnapshotHandler(table *Table, clk clock.Clock, logger *zap.SugaredLogger) http.HandlerFunc {
	if clk == nil {
		clk = clock.New()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if table.Len() == 0 {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(table.Snapshot(clk.Now())); err != nil {
			logger.Warnw("json encode error", "error", err)
		}
	}
}

// StreamHandler upgrades to a WebSocket and sends a snapshot immediately and
// then every interval, until the client goes away.
func StreamHandler(table *Table, interval time.Duration, clk clock.Clock, logger *zap.SugaredLogger) http.HandlerFunc {
	if clk == nil {
		clk = clock.New()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warnw("websocket upgrade error", "error", err)
			return
		}
		defer conn.Close()

		// Incoming frames are discarded; a read error means the peer left.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := clk.Ticker(interval)
		defer ticker.Stop()
		for {
			if err := conn.WriteJSON(table.Snapshot(clk.Now())); err != nil {
				logger.Debugw("stream closed", "remote", r.RemoteAddr, "error", err)
				return
			}
			select {
			case <-gone:
				return
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}
}
