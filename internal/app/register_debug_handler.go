// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/adis16470_imu/internal/sensors"
)

// RegisterCmd is a command sent over the register debug socket.
type RegisterCmd struct {
	Action  string `json:"action"` // register_map, read, read_all, write, manual, streaming
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse answers every command.
type RegisterResponse struct {
	Type        string                 `json:"type"` // register_data, register_map, status, error
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Mode        string                 `json:"mode,omitempty"`
	Message     string                 `json:"message,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
}

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn   *websocket.Conn
	dev    RegisterAccess
	regs   []sensors.RegisterInfo
	clock  clock.Clock
	logger *zap.SugaredLogger
}

// RegisterDebugHandler serves the register debug socket. Register access
// needs manual mode; the client switches with the manual and streaming actions.
func RegisterDebugHandler(dev RegisterAccess, clk clock.Clock, logger *zap.SugaredLogger) http.HandlerFunc {
	if clk == nil {
		clk = clock.New()
	}
	regs := sensors.ADIS16470RegisterMap()
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warnw("register_debug: websocket upgrade error", "error", err)
			return
		}
		defer conn.Close()

		s := &RegisterDebugSession{Conn: conn, dev: dev, regs: regs, clock: clk, logger: logger}

		// Send register map on connection
		if err := s.send(s.registerMap()); err != nil {
			logger.Debugw("register_debug: error sending register map", "error", err)
			return
		}

		for {
			var cmd RegisterCmd
			if err := conn.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Debugw("register_debug: websocket error", "error", err)
				}
				return
			}
			if err := s.send(s.handle(cmd)); err != nil {
				return
			}
		}
	}
}

func (s *RegisterDebugSession) handle(cmd RegisterCmd) RegisterResponse {
	switch cmd.Action {
	case "register_map":
		return s.registerMap()
	case "read":
		return s.handleRead(cmd)
	case "read_all":
		return s.handleReadAll()
	case "write":
		return s.handleWrite(cmd)
	case "manual":
		if err := s.dev.EnterManualMode(); err != nil {
			return errorResponse(fmt.Sprintf("manual mode: %v", err))
		}
		return s.status("manual mode")
	case "streaming":
		if err := s.dev.EnterStreamingMode(); err != nil {
			return errorResponse(fmt.Sprintf("streaming mode: %v", err))
		}
		return s.status("streaming mode")
	}
	return errorResponse(fmt.Sprintf("unknown action: %s", cmd.Action))
}

func (s *RegisterDebugSession) handleRead(cmd RegisterCmd) RegisterResponse {
	reg, err := parseRegister(cmd.Address)
	if err != nil {
		return errorResponse(err.Error())
	}
	value, err := s.dev.ReadRegister(reg)
	if err != nil {
		return errorResponse(fmt.Sprintf("read error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Device:    "adis16470",
		Address:   fmt.Sprintf("0x%02X", reg),
		Value:     fmt.Sprintf("0x%04X", value),
		Timestamp: s.clock.Now().Format(time.RFC3339),
	}
}

// handleReadAll reads every readable register in the map. The first failure
// aborts the dump.
func (s *RegisterDebugSession) handleReadAll() RegisterResponse {
	regMap := make(map[string]string)
	for _, info := range s.regs {
		if !strings.Contains(info.Access, "R") {
			continue
		}
		reg, err := parseRegister(info.Address)
		if err != nil {
			return errorResponse(err.Error())
		}
		value, err := s.dev.ReadRegister(reg)
		if err != nil {
			return errorResponse(fmt.Sprintf("read all error at %s: %v", info.Name, err))
		}
		regMap[info.Address] = fmt.Sprintf("0x%04X", value)
	}
	return RegisterResponse{
		Type:      "register_data",
		Device:    "adis16470",
		Registers: regMap,
		Timestamp: s.clock.Now().Format(time.RFC3339),
	}
}

func (s *RegisterDebugSession) handleWrite(cmd RegisterCmd) RegisterResponse {
	reg, err := parseRegister(cmd.Address)
	if err != nil {
		return errorResponse(err.Error())
	}
	if !s.writable(reg) {
		return errorResponse(fmt.Sprintf("register 0x%02X is not writable", reg))
	}
	value, err := strconv.ParseUint(trimHex(cmd.Value), 16, 16)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid value format: %s", cmd.Value))
	}
	if err := s.dev.WriteRegister(reg, uint16(value)); err != nil {
		return errorResponse(fmt.Sprintf("write error: %v", err))
	}
	s.logger.Infow("register_debug: register written", "addr", fmt.Sprintf("0x%02X", reg), "value", fmt.Sprintf("0x%04X", value))
	return RegisterResponse{
		Type:      "register_data",
		Device:    "adis16470",
		Address:   fmt.Sprintf("0x%02X", reg),
		Value:     fmt.Sprintf("0x%04X", value),
		Timestamp: s.clock.Now().Format(time.RFC3339),
		Message:   "write successful",
	}
}

func (s *RegisterDebugSession) writable(reg uint8) bool {
	for _, info := range s.regs {
		if r, err := parseRegister(info.Address); err == nil && r == reg {
			return strings.Contains(info.Access, "W")
		}
	}
	return false
}

func (s *RegisterDebugSession) registerMap() RegisterResponse {
	return RegisterResponse{Type: "register_map", Device: "adis16470", RegisterMap: s.regs}
}

func (s *RegisterDebugSession) status(message string) RegisterResponse {
	return RegisterResponse{Type: "status", Mode: s.dev.Mode().String(), Message: message}
}

func (s *RegisterDebugSession) send(resp RegisterResponse) error {
	if err := s.Conn.WriteJSON(resp); err != nil {
		s.logger.Debugw("register_debug: websocket write error", "error", err)
		return err
	}
	return nil
}

func errorResponse(message string) RegisterResponse {
	return RegisterResponse{Type: "error", Message: message}
}

func trimHex(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// parseRegister accepts a hex address such as "0x72". Only even addresses
// up to 0x7E name a register.
func parseRegister(addr string) (uint8, error) {
	v, err := strconv.ParseUint(trimHex(addr), 16, 8)
	if err != nil || v > 0x7E || v%2 != 0 {
		return 0, fmt.Errorf("invalid address format: %s", addr)
	}
	return uint8(v), nil
}
