package serial

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tarm/serial"
)

// NativePort is a Port on a host serial device
type NativePort struct {
	*serial.Port
}

// Open opens the console device once
func Open(cfg *Config) (*NativePort, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &NativePort{Port: port}, nil
}

// OpenWait retries Open until the device exists or ctx is done.
// The RP2040 drops off USB while it resets, so the device node may be
// missing for a moment after the board is flashed or power cycled.
func OpenWait(ctx context.Context, cfg *Config, retry time.Duration) (*NativePort, error) {
	for {
		port, err := Open(cfg)
		if err == nil {
			return port, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry):
		}
	}
}
