// Package mcu follows the dimmer firmware's USB console from the host
package mcu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"swdimmer/core"
	"swdimmer/host/serial"
)

// Handler receives console output as it arrives
type Handler interface {
	// Status is called for every status line
	Status(s core.Status)
	// Line is called for every other non-empty line
	Line(text string)
}

// MCU represents a console connection to the dimmer firmware
type MCU struct {
	port serial.Port

	mu       sync.Mutex
	last     core.Status
	haveLast bool
	statuses uint64
	others   uint64
	bad      uint64
}

// NewMCU wraps an already open port
func NewMCU(port serial.Port) *MCU {
	return &MCU{port: port}
}

// Connect opens the console on a serial device, waiting for it to appear
func Connect(ctx context.Context, cfg *serial.Config) (*MCU, error) {
	port, err := serial.OpenWait(ctx, cfg, 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	// Drop any partial line left in the driver buffer
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush serial port: %w", err)
	}
	return NewMCU(port), nil
}

// Close closes the connection to the MCU
func (m *MCU) Close() error {
	return m.port.Close()
}

// Run reads console lines until ctx is done or the port fails.
// Read timeouts from the port are not errors; they only give Run a chance
// to notice cancellation.
func (m *MCU) Run(ctx context.Context, h Handler) error {
	reader := bufio.NewReader(m.port)
	var partial strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := reader.ReadString('\n')
		partial.WriteString(chunk)
		if err == nil {
			m.dispatch(partial.String(), h)
			partial.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			// tarm/serial reports a read timeout as io.EOF
			if partial.Len() > 0 && ctx.Err() != nil {
				m.dispatch(partial.String(), h)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}
		return fmt.Errorf("console read failed: %w", err)
	}
}

// dispatch classifies one console line
func (m *MCU) dispatch(line string, h Handler) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}

	s, err := core.ParseStatus(line)
	switch {
	case err == nil:
		m.mu.Lock()
		m.last = s
		m.haveLast = true
		m.statuses++
		m.mu.Unlock()
		h.Status(s)
	case errors.Is(err, core.ErrNotStatus):
		m.mu.Lock()
		m.others++
		m.mu.Unlock()
		h.Line(line)
	default:
		m.mu.Lock()
		m.bad++
		m.mu.Unlock()
		h.Line(line)
	}
}

// LastStatus returns the most recent status line, if any was seen
func (m *MCU) LastStatus() (core.Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.haveLast
}

// Counts returns the number of status, other and malformed status lines
func (m *MCU) Counts() (statuses, others, malformed uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses, m.others, m.bad
}
