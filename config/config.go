// Package config loads the dimmer's JSON configuration
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"swdimmer/core"
)

// ChannelConfig is one PWM output
type ChannelConfig struct {
	Pin   uint32 `json:"pin"`
	Level uint8  `json:"level"`
}

// DisplayConfig describes the optional HD44780 status LCD on I2C
type DisplayConfig struct {
	Enabled bool  `json:"enabled"`
	Address uint8 `json:"address"` // 0x27 or 0x3F on common backpacks
	Width   uint8 `json:"width"`
	Height  uint8 `json:"height"`
}

// Config is the complete device configuration
type Config struct {
	Channels []ChannelConfig `json:"channels"`
	Step     uint8           `json:"step"`
	Overflow string          `json:"overflow"` // "wrap" or "clamp"

	EncoderA     uint32 `json:"encoder_a"`
	EncoderB     uint32 `json:"encoder_b"`
	SelectButton uint32 `json:"select_button"`
	PresetButton uint32 `json:"preset_button"`

	Presets [][]uint8 `json:"presets"`

	SelectHoldMs   uint32 `json:"select_hold_ms"`
	PollIntervalUs uint32 `json:"poll_interval_us"`
	TickPeriodUs   uint32 `json:"tick_period_us"`

	Display DisplayConfig `json:"display"`
	Debug   bool          `json:"debug"`
}

var (
	ErrNoChannels  = errors.New("config: no channels")
	ErrOverflow    = errors.New("config: overflow must be \"wrap\" or \"clamp\"")
	ErrTickPeriod  = errors.New("config: tick period must be positive")
	ErrDisplaySize = errors.New("config: display must have 1 or 2 rows and a width")
)

// Default returns the layout of the reference board: three channels on
// pins 0-2, encoder on 9/10 with its button on 8 and the preset button on 3.
func Default() *Config {
	cfg := &Config{
		Channels: []ChannelConfig{
			{Pin: 0}, {Pin: 1}, {Pin: 2},
		},
		EncoderA:     10,
		EncoderB:     9,
		SelectButton: 8,
		PresetButton: 3,
	}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig parses a JSON configuration, applies defaults and validates it
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *Config) {
	if config.Step == 0 {
		config.Step = core.DefaultStep
	}
	if config.Overflow == "" {
		config.Overflow = core.OverflowClamp.String()
	}
	if config.SelectHoldMs == 0 {
		config.SelectHoldMs = uint32(core.DefaultSelectHold / time.Millisecond)
	}
	if config.PollIntervalUs == 0 {
		config.PollIntervalUs = uint32(core.DefaultPollInterval / time.Microsecond)
	}
	if config.TickPeriodUs == 0 {
		config.TickPeriodUs = 32 // ~122 Hz PWM frame
	}

	if config.Display.Address == 0 {
		config.Display.Address = 0x27
	}
	if config.Display.Width == 0 {
		config.Display.Width = 16
	}
	if config.Display.Height == 0 {
		config.Display.Height = 2
	}
}

// Validate checks the configuration without touching hardware
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return ErrNoChannels
	}
	if _, err := c.overflowMode(); err != nil {
		return err
	}
	if c.TickPeriodUs == 0 {
		return ErrTickPeriod
	}
	if c.Display.Enabled && (c.Display.Width == 0 || c.Display.Height == 0 || c.Display.Height > 2) {
		return ErrDisplaySize
	}

	// Pin conflicts, channel limits and preset sizes are checked by core
	_, err := core.NewDimmer(nopGPIO{}, c.DimmerConfig())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) overflowMode() (core.OverflowMode, error) {
	switch c.Overflow {
	case core.OverflowWrap.String():
		return core.OverflowWrap, nil
	case core.OverflowClamp.String():
		return core.OverflowClamp, nil
	default:
		return 0, ErrOverflow
	}
}

// DimmerConfig converts to the core front panel configuration.
// Call Validate first; an invalid overflow setting falls back to wrap.
func (c *Config) DimmerConfig() core.DimmerConfig {
	pins := make([]core.GPIOPin, len(c.Channels))
	levels := make([]uint8, len(c.Channels))
	for i, ch := range c.Channels {
		pins[i] = core.GPIOPin(ch.Pin)
		levels[i] = ch.Level
	}
	overflow, _ := c.overflowMode()

	return core.DimmerConfig{
		PWM: core.PWMConfig{
			Pins:     pins,
			Levels:   levels,
			Step:     c.Step,
			Overflow: overflow,
		},
		EncoderA:     core.GPIOPin(c.EncoderA),
		EncoderB:     core.GPIOPin(c.EncoderB),
		SelectButton: core.GPIOPin(c.SelectButton),
		PresetButton: core.GPIOPin(c.PresetButton),
		Presets:      c.Presets,
		SelectHold:   c.SelectHold(),
	}
}

// SelectHold returns how long a new selection is shown alone
func (c *Config) SelectHold() time.Duration {
	return time.Duration(c.SelectHoldMs) * time.Millisecond
}

// PollInterval returns the pause between front panel polls
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalUs) * time.Microsecond
}

// TickPeriod returns the PWM timer period
func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.TickPeriodUs) * time.Microsecond
}

// nopGPIO lets Validate build a throwaway engine
type nopGPIO struct{}

func (nopGPIO) ConfigureOutput(core.GPIOPin) error      { return nil }
func (nopGPIO) ConfigureInput(core.GPIOPin) error       { return nil }
func (nopGPIO) ConfigureInputPullUp(core.GPIOPin) error { return nil }
func (nopGPIO) SetHigh(core.GPIOPin)                    {}
func (nopGPIO) SetLow(core.GPIOPin)                     {}
func (nopGPIO) ReadPin(core.GPIOPin) bool               { return true }
