// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package override implements the system halt channel. The controller
// holds the halt flag consulted by the query pre-flight gate and fans
// state changes out to control-channel subscribers.
package override

import (
	"log/slog"
	"sync"
	"time"

	"github.com/quorumworks/boardroom/services/board/datatypes"
)

// subscriber channels are buffered; a subscriber that falls this far
// behind misses events rather than blocking the controller.
const subscriberBuffer = 8

// Controller is the process-wide halt switch. Safe for concurrent use.
type Controller struct {
	mu        sync.RWMutex
	halted    bool
	reason    string
	changedAt time.Time
	subs      map[chan datatypes.ControlEvent]struct{}
}

// NewController returns a controller in the running (not halted) state.
func NewController() *Controller {
	return &Controller{
		changedAt: time.Now().UTC(),
		subs:      make(map[chan datatypes.ControlEvent]struct{}),
	}
}

// Halted reports whether the system is halted.
func (c *Controller) Halted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.halted
}

// Status returns the current halt state.
func (c *Controller) Status() datatypes.SystemStatusResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return datatypes.SystemStatusResponse{
		Halted:    c.halted,
		Reason:    c.reason,
		ChangedAt: c.changedAt,
	}
}

// Halt stops the board. Returns false if it was already halted; the
// original reason is kept in that case.
func (c *Controller) Halt(reason string) bool {
	c.mu.Lock()
	if c.halted {
		c.mu.Unlock()
		return false
	}
	c.halted = true
	c.reason = reason
	c.changedAt = time.Now().UTC()
	event := datatypes.ControlEvent{Event: "HALT", Reason: reason, Timestamp: c.changedAt}
	c.broadcastLocked(event)
	c.mu.Unlock()

	slog.Warn("System halt engaged", "reason", reason)
	return true
}

// Resume lifts the halt. Returns false if the system was not halted.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	if !c.halted {
		c.mu.Unlock()
		return false
	}
	c.halted = false
	c.reason = ""
	c.changedAt = time.Now().UTC()
	event := datatypes.ControlEvent{Event: "RESUME", Timestamp: c.changedAt}
	c.broadcastLocked(event)
	c.mu.Unlock()

	slog.Info("System halt lifted")
	return true
}

// Subscribe registers a control-event listener. The returned cancel
// function must be called to release the subscription.
func (c *Controller) Subscribe() (<-chan datatypes.ControlEvent, func()) {
	ch := make(chan datatypes.ControlEvent, subscriberBuffer)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// broadcastLocked delivers an event to every subscriber without blocking.
// Callers must hold c.mu.
func (c *Controller) broadcastLocked(event datatypes.ControlEvent) {
	for ch := range c.subs {
		select {
		case ch <- event:
		default:
			slog.Warn("Control subscriber lagging, dropping event", "event", event.Event)
		}
	}
}
