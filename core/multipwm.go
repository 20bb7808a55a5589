// Software multi-channel PWM
// Emulates several independent duty cycles on plain GPIO outputs from one
// shared 8-bit counter that a periodic timer interrupt advances.
package core

import "errors"

const (
	// MaxChannels is the width of one digital port
	MaxChannels = 8

	// DefaultStep is the level change applied per encoder detent
	DefaultStep = 16
)

// OverflowMode selects what AdjustUp/AdjustDown do at the ends of the level range
type OverflowMode uint8

const (
	OverflowWrap  OverflowMode = iota // 255+step wraps past 0, 0-step wraps past 255
	OverflowClamp                     // stop at 0 and 255
)

func (o OverflowMode) String() string {
	switch o {
	case OverflowWrap:
		return "wrap"
	case OverflowClamp:
		return "clamp"
	default:
		return "unknown"
	}
}

var (
	ErrNoChannels      = errors.New("pwm: no channels configured")
	ErrTooManyChannels = errors.New("pwm: too many channels")
	ErrLevelCount      = errors.New("pwm: level count does not match channel count")
	ErrDuplicatePin    = errors.New("pwm: pin assigned to more than one channel")
	ErrChannelRange    = errors.New("pwm: channel index out of range")
	ErrNotPaused       = errors.New("pwm: engine must be paused")
)

// Channel is one software PWM output
type Channel struct {
	Pin   GPIOPin // Output pin, fixed at construction
	Level uint8   // Duty value: high for Level ticks out of every 256
}

// PWMConfig describes the fixed channel layout of a MultiPWM
type PWMConfig struct {
	Pins     []GPIOPin    // One pin per channel
	Levels   []uint8      // Initial level per channel, nil for all off
	Step     uint8        // Adjustment per AdjustUp/AdjustDown, 0 selects DefaultStep
	Overflow OverflowMode // Behaviour at the ends of the level range
}

// MultiPWM is the owning handle of the software PWM engine.
//
// The polling loop holds the *MultiPWM. The timer interrupt only ever gets a
// PWMTicker, which can do nothing but Step. Every mutating method runs inside
// a critical section, so a single call is never observed half-done by Step.
// Sequences of calls that must look atomic to the outputs go through
// WithPaused (or Pause/Resume).
type MultiPWM struct {
	port     GPIODriver // Borrowed, not owned
	channels []Channel
	counter  uint8 // Wraps modulo 256
	selected int
	active   bool
	step     uint8
	overflow OverflowMode
}

// NewMultiPWM creates an engine driving the given pins.
// The engine starts active with the counter at zero and channel 0 selected.
func NewMultiPWM(port GPIODriver, cfg PWMConfig) (*MultiPWM, error) {
	n := len(cfg.Pins)
	if n == 0 {
		return nil, ErrNoChannels
	}
	if n > MaxChannels {
		return nil, ErrTooManyChannels
	}
	if cfg.Levels != nil && len(cfg.Levels) != n {
		return nil, ErrLevelCount
	}

	m := &MultiPWM{
		port:     port,
		channels: make([]Channel, n),
		active:   true,
		step:     cfg.Step,
		overflow: cfg.Overflow,
	}
	if m.step == 0 {
		m.step = DefaultStep
	}

	for i, pin := range cfg.Pins {
		for j := 0; j < i; j++ {
			if cfg.Pins[j] == pin {
				return nil, ErrDuplicatePin
			}
		}
		m.channels[i].Pin = pin
		if cfg.Levels != nil {
			m.channels[i].Level = cfg.Levels[i]
		}
	}

	return m, nil
}

// PWMTicker is the interrupt-side view of a MultiPWM
type PWMTicker struct {
	m *MultiPWM
}

// Ticker returns the view handed to the timer interrupt
func (m *MultiPWM) Ticker() PWMTicker {
	return PWMTicker{m: m}
}

// Step advances the engine by one timer tick.
// Called once per timer period from interrupt context only.
func (t PWMTicker) Step() {
	m := t.m
	if !m.active {
		return
	}

	// Start of a cycle: every lit channel begins its on-phase
	if m.counter == 0 {
		for i := range m.channels {
			if m.channels[i].Level != 0 {
				m.port.SetHigh(m.channels[i].Pin)
			}
		}
	}

	// End the on-phase once the duty threshold is reached
	for i := range m.channels {
		if m.counter >= m.channels[i].Level {
			m.port.SetLow(m.channels[i].Pin)
		}
	}

	m.counter++
}

// SetPinsOut configures every channel pin as an output, driven low.
// Call once before the tick interrupt is enabled.
func (m *MultiPWM) SetPinsOut() error {
	for i := range m.channels {
		if err := m.port.ConfigureOutput(m.channels[i].Pin); err != nil {
			return err
		}
		m.port.SetLow(m.channels[i].Pin)
	}
	return nil
}

// Pause freezes the outputs and the counter until Resume
func (m *MultiPWM) Pause() {
	state := disableInterrupts()
	m.active = false
	restoreInterrupts(state)
}

// Resume lets Step drive the outputs again
func (m *MultiPWM) Resume() {
	state := disableInterrupts()
	m.active = true
	restoreInterrupts(state)
}

// Active reports whether Step is currently driving the outputs
func (m *MultiPWM) Active() bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return m.active
}

// WithPaused runs fn with the engine paused and resumes it afterwards,
// whatever fn returns.
func (m *MultiPWM) WithPaused(fn func() error) error {
	m.Pause()
	defer m.Resume()
	return fn()
}

// Count returns the number of channels
func (m *MultiPWM) Count() int {
	return len(m.channels)
}

// StepSize returns the adjustment size used by AdjustUp/AdjustDown
func (m *MultiPWM) StepSize() uint8 {
	return m.step
}

// Overflow returns the configured level overflow behaviour
func (m *MultiPWM) Overflow() OverflowMode {
	return m.overflow
}

// Counter returns the current tick counter
func (m *MultiPWM) Counter() uint8 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return m.counter
}

// Pin returns the output pin of a channel
func (m *MultiPWM) Pin(index int) (GPIOPin, error) {
	if index < 0 || index >= len(m.channels) {
		return 0, ErrChannelRange
	}
	return m.channels[index].Pin, nil
}

// Level returns the level of a channel
func (m *MultiPWM) Level(index int) (uint8, error) {
	if index < 0 || index >= len(m.channels) {
		return 0, ErrChannelRange
	}
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return m.channels[index].Level, nil
}

// Levels returns a snapshot of all channel levels
func (m *MultiPWM) Levels() []uint8 {
	levels := make([]uint8, len(m.channels))
	state := disableInterrupts()
	for i := range m.channels {
		levels[i] = m.channels[i].Level
	}
	restoreInterrupts(state)
	return levels
}

// SetLevel writes a channel level directly.
// Pins are untouched until the next Step.
func (m *MultiPWM) SetLevel(index int, value uint8) error {
	if index < 0 || index >= len(m.channels) {
		return ErrChannelRange
	}
	state := disableInterrupts()
	m.channels[index].Level = value
	restoreInterrupts(state)
	return nil
}

// SetLevels replaces every channel level at once
func (m *MultiPWM) SetLevels(levels []uint8) error {
	if len(levels) != len(m.channels) {
		return ErrLevelCount
	}
	state := disableInterrupts()
	for i := range m.channels {
		m.channels[i].Level = levels[i]
	}
	restoreInterrupts(state)
	return nil
}

// Selected returns the index of the channel the UI operates on
func (m *MultiPWM) Selected() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return m.selected
}

// SelectNext advances the selection, wrapping back to channel 0
func (m *MultiPWM) SelectNext() {
	state := disableInterrupts()
	if m.selected < len(m.channels)-1 {
		m.selected++
	} else {
		m.selected = 0
	}
	restoreInterrupts(state)
}

// AdjustUp raises the selected channel by one step
func (m *MultiPWM) AdjustUp() {
	state := disableInterrupts()
	ch := &m.channels[m.selected]
	if m.overflow == OverflowClamp && ch.Level > 255-m.step {
		ch.Level = 255
	} else {
		ch.Level += m.step
	}
	restoreInterrupts(state)
}

// AdjustDown lowers the selected channel by one step
func (m *MultiPWM) AdjustDown() {
	state := disableInterrupts()
	ch := &m.channels[m.selected]
	if m.overflow == OverflowClamp && ch.Level < m.step {
		ch.Level = 0
	} else {
		ch.Level -= m.step
	}
	restoreInterrupts(state)
}

// IsolateSelected lights only the selected channel at full brightness,
// bypassing the duty cycle, so the user can see which one is selected.
// The engine must be paused or the next Step would overwrite the pins.
func (m *MultiPWM) IsolateSelected() error {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if m.active {
		return ErrNotPaused
	}

	for i := range m.channels {
		if i == m.selected {
			m.port.SetHigh(m.channels[i].Pin)
		} else {
			m.port.SetLow(m.channels[i].Pin)
		}
	}
	return nil
}
