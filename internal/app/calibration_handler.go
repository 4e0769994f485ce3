// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/adis16470_imu/internal/adis16470"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// ControlMessage is a command sent over the control socket.
type ControlMessage struct {
	Action  string `json:"action"`             // status, reset, reconfigure
	CalTime string `json:"cal_time,omitempty"` // reconfigure only, e.g. "4s"
}

// ControlResponse answers every command.
type ControlResponse struct {
	Type    string                     `json:"type"` // status, error
	Mode    string                     `json:"mode,omitempty"`
	CalTime string                     `json:"cal_time,omitempty"`
	Bias    *adis16470.BiasOffsets     `json:"bias,omitempty"`
	Heading *adis16470.HeadingSnapshot `json:"heading,omitempty"`
	Stats   *adis16470.Stats           `json:"stats,omitempty"`
	Message string                     `json:"message,omitempty"`
}

// ControlHandler serves the calibration control socket. Reconfiguration
// blocks the session for the whole calibration window.
func ControlHandler(ctl Controller, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warnw("control: websocket upgrade error", "error", err)
			return
		}
		defer conn.Close()

		for {
			var msg ControlMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debugw("control: websocket read error", "error", err)
				}
				return
			}

			var resp ControlResponse
			switch msg.Action {
			case "status":
				resp = controlStatus(ctl, "")
			case "reset":
				ctl.Reset()
				logger.Infow("control: totals reset")
				resp = controlStatus(ctl, "totals reset")
			case "reconfigure":
				cal, err := adis16470.ParseCalibrationTime(msg.CalTime)
				if err != nil {
					resp = ControlResponse{Type: "error", Message: err.Error()}
					break
				}
				logger.Infow("control: reconfiguring", "cal_time", cal)
				if err := ctl.Reconfigure(r.Context(), cal); err != nil {
					resp = ControlResponse{Type: "error", Message: fmt.Sprintf("reconfigure: %v", err)}
					break
				}
				resp = controlStatus(ctl, "reconfigured")
			default:
				resp = ControlResponse{Type: "error", Message: fmt.Sprintf("unknown action: %s", msg.Action)}
			}

			if err := conn.WriteJSON(resp); err != nil {
				logger.Debugw("control: websocket write error", "error", err)
				return
			}
		}
	}
}

func controlStatus(ctl Controller, message string) ControlResponse {
	bias := ctl.Bias()
	heading := ctl.Snapshot()
	stats := ctl.Stats()
	return ControlResponse{
		Type:    "status",
		Mode:    ctl.Mode().String(),
		CalTime: ctl.CalibrationTime().String(),
		Bias:    &bias,
		Heading: &heading,
		Stats:   &stats,
		Message: message,
	}
}
