// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry collects named numeric fields from drivers and serves
// them to dashboards over MQTT, HTTP and WebSocket.
package telemetry

import (
	"sync"
	"time"
)

// Snapshot is one read of every field of a table.
type Snapshot struct {
	Name   string             `json:"name"`
	Type   string             `json:"type,omitempty"`
	Time   time.Time          `json:"time"`
	Fields map[string]float64 `json:"fields"`
}

type group struct {
	names []string
	read  func() []float64
}

// Table is a named set of numeric fields. Fields are registered with getter
// functions and evaluated on every Snapshot.
type Table struct {
	name string

	mu     sync.RWMutex
	typ    string
	groups []group
}

// NewTable returns an empty table.
func NewTable(name string) *Table {
	return &Table{name: name}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// SetType sets the dashboard type string.
func (t *Table) SetType(typ string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.typ = typ
}

// AddDouble registers a single field.
func (t *Table) AddDouble(name string, get func() float64) {
	t.AddDoubles([]string{name}, func() []float64 { return []float64{get()} })
}

// AddDoubles registers fields that are read together. get must return one
// value per name, in the same order.
func (t *Table) AddDoubles(names []string, get func() []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.groups = append(t.groups, group{names: append([]string(nil), names...), read: get})
}

// Len returns the number of registered fields.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, g := range t.groups {
		n += len(g.names)
	}
	return n
}

// Snapshot evaluates every field. Getters returning fewer values than they
// registered leave the missing fields out.
func (t *Table) Snapshot(now time.Time) Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := Snapshot{Name: t.name, Type: t.typ, Time: now, Fields: make(map[string]float64)}
	for _, g := range t.groups {
		vals := g.read()
		for i, name := range g.names {
			if i >= len(vals) {
				break
			}
			s.Fields[name] = vals[i]
		}
	}
	return s
}
