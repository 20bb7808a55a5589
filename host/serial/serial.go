// Package serial opens the dimmer firmware's USB CDC console
package serial

import (
	"errors"
	"io"
	"time"
)

// Port is an open console connection.
// NativePort implements it on tarm/serial; tests substitute readers.
type Port interface {
	io.ReadWriteCloser

	// Flush discards input that arrived before the caller started reading
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	Device      string        // e.g. "/dev/ttyACM0", "COM3"
	Baud        int           // Ignored by USB CDC, used by UART adapters
	ReadTimeout time.Duration // 0 blocks; the monitor needs a timeout to notice cancellation
}

var (
	ErrNoDevice = errors.New("serial: no device given")
	ErrBaud     = errors.New("serial: baud rate must be positive")
)

// DefaultConfig returns the console settings of the dimmer firmware
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// Validate checks the configuration before a port is opened
func (c *Config) Validate() error {
	if c.Device == "" {
		return ErrNoDevice
	}
	if c.Baud <= 0 {
		return ErrBaud
	}
	return nil
}
