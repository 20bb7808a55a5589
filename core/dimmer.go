// Dimmer front panel
// Polls the rotary encoder and buttons and drives the software PWM engine:
// the encoder adjusts the selected channel, the encoder button selects the
// next channel and the preset button cycles through stored level sets.
package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultSelectHold is how long a newly selected channel is shown alone
	DefaultSelectHold = 500 * time.Millisecond

	// MaxSelectHold keeps the hold timer well inside the half range of the
	// 32-bit microsecond clock that timer comparisons can resolve
	MaxSelectHold = time.Minute

	// DefaultPollInterval is the pause between polls; it doubles as the
	// debounce interval for the buttons
	DefaultPollInterval = 20 * time.Microsecond
)

var ErrSelectHold = errors.New("dimmer: select hold out of range")

// DimmerConfig describes the complete front panel
type DimmerConfig struct {
	PWM PWMConfig

	EncoderA     GPIOPin // Active low, pulled up
	EncoderB     GPIOPin // Active low, pulled up
	SelectButton GPIOPin // Encoder push button, active low, pulled up
	PresetButton GPIOPin // Active high, externally pulled down

	// Presets are level sets cycled by the preset button.
	// With no presets the preset button is not configured.
	Presets [][]uint8

	SelectHold time.Duration // 0 selects DefaultSelectHold, at most MaxSelectHold
}

// Dimmer is the polling-loop side of the device. All methods must be called
// from the polling loop; only the engine's ticker belongs to the interrupt.
type Dimmer struct {
	gpio GPIODriver
	pwm  *MultiPWM
	enc  Quadrature
	cfg  DimmerConfig

	sched     Scheduler
	holdTimer Timer
	holding   bool // selected channel shown alone, engine paused

	armed     bool // a rotation may be accepted
	selectWas bool
	presetWas bool
	preset    int // next preset to apply

	view *StatusView
}

// NewDimmer validates the configuration and builds the engine
func NewDimmer(gpio GPIODriver, cfg DimmerConfig) (*Dimmer, error) {
	pwm, err := NewMultiPWM(gpio, cfg.PWM)
	if err != nil {
		return nil, err
	}

	for i, p := range cfg.Presets {
		if len(p) != pwm.Count() {
			return nil, fmt.Errorf("preset %d: %w", i, ErrLevelCount)
		}
	}

	inputs := []GPIOPin{cfg.EncoderA, cfg.EncoderB, cfg.SelectButton}
	if len(cfg.Presets) > 0 {
		inputs = append(inputs, cfg.PresetButton)
	}
	for i, in := range inputs {
		for _, other := range inputs[:i] {
			if in == other {
				return nil, fmt.Errorf("input pin %d: %w", in, ErrDuplicatePin)
			}
		}
		for _, out := range cfg.PWM.Pins {
			if in == out {
				return nil, fmt.Errorf("input pin %d: %w", in, ErrDuplicatePin)
			}
		}
	}

	if cfg.SelectHold < 0 || cfg.SelectHold > MaxSelectHold {
		return nil, fmt.Errorf("%v: %w", cfg.SelectHold, ErrSelectHold)
	}
	if cfg.SelectHold == 0 {
		cfg.SelectHold = DefaultSelectHold
	}

	d := &Dimmer{
		gpio:  gpio,
		pwm:   pwm,
		cfg:   cfg,
		armed: true,
	}
	d.holdTimer.Handler = d.holdEndEvent
	return d, nil
}

// Init configures all pins and publishes the initial status.
// Call once before the tick interrupt is enabled.
func (d *Dimmer) Init() error {
	if err := d.pwm.SetPinsOut(); err != nil {
		return fmt.Errorf("configure outputs: %w", err)
	}

	for _, pin := range []GPIOPin{d.cfg.EncoderA, d.cfg.EncoderB, d.cfg.SelectButton} {
		if err := d.gpio.ConfigureInputPullUp(pin); err != nil {
			return fmt.Errorf("configure input %d: %w", pin, err)
		}
	}
	if len(d.cfg.Presets) > 0 {
		if err := d.gpio.ConfigureInput(d.cfg.PresetButton); err != nil {
			return fmt.Errorf("configure input %d: %w", d.cfg.PresetButton, err)
		}
	}

	d.publish()
	return nil
}

// PWM returns the engine handle
func (d *Dimmer) PWM() *MultiPWM {
	return d.pwm
}

// SetStatusView attaches a display that is redrawn on every change
func (d *Dimmer) SetStatusView(v *StatusView) {
	d.view = v
	if v != nil {
		v.Render(d.Status())
	}
}

// Holding reports whether a newly selected channel is being shown alone
func (d *Dimmer) Holding() bool {
	return d.holding
}

// Status returns a snapshot of the dimmer
func (d *Dimmer) Status() Status {
	return Status{
		Selected: d.pwm.Selected(),
		Active:   d.pwm.Active(),
		Levels:   d.pwm.Levels(),
	}
}

// Poll runs one iteration of the front panel loop
func (d *Dimmer) Poll() {
	now := GetTime()

	// Polling (all inputs are read before anything is handled)
	d.enc.Sample(!d.gpio.ReadPin(d.cfg.EncoderA), !d.gpio.ReadPin(d.cfg.EncoderB))
	selectPressed := !d.gpio.ReadPin(d.cfg.SelectButton)
	presetPressed := len(d.cfg.Presets) > 0 && d.gpio.ReadPin(d.cfg.PresetButton)

	// Handling
	d.handleButtons(now, selectPressed && !d.selectWas, presetPressed && !d.presetWas)
	d.handleRotary(now)
	d.selectWas = selectPressed
	d.presetWas = presetPressed

	d.sched.TimerDispatch(now)
}

func (d *Dimmer) handleButtons(now uint32, selectClicked, presetClicked bool) {
	if d.holding {
		return
	}

	if selectClicked {
		d.pwm.Pause()
		d.pwm.SelectNext()
		if err := d.pwm.IsolateSelected(); err != nil {
			RecordEvent(EvtError, uint8(d.pwm.Selected()), now, 0)
			d.pwm.Resume()
			return
		}
		d.holding = true
		d.holdTimer.WakeTime = now + TimerFromDuration(d.cfg.SelectHold)
		d.sched.ScheduleTimer(&d.holdTimer)

		RecordEvent(EvtSelect, uint8(d.pwm.Selected()), now, uint32(d.pwm.Selected()))
		d.publish()
		return
	}

	if presetClicked {
		idx := d.preset
		err := d.pwm.WithPaused(func() error {
			return d.pwm.SetLevels(d.cfg.Presets[idx])
		})
		if err != nil {
			RecordEvent(EvtError, uint8(d.pwm.Selected()), now, uint32(idx))
			return
		}
		d.preset = (idx + 1) % len(d.cfg.Presets)

		RecordEvent(EvtPreset, uint8(d.pwm.Selected()), now, uint32(idx))
		d.publish()
	}
}

func (d *Dimmer) handleRotary(now uint32) {
	if d.holding {
		return
	}

	// After a rotation wait for the next detent, so a transition that is
	// still in progress on the following poll is not applied twice
	if !d.armed {
		if d.enc.Stable() {
			d.armed = true
		}
		return
	}

	var evt uint8
	switch d.enc.Turned() {
	case Clockwise:
		d.pwm.AdjustUp()
		evt = EvtAdjustUp
	case CounterClockwise:
		d.pwm.AdjustDown()
		evt = EvtAdjustDown
	default:
		return
	}
	d.enc.Clear()
	d.armed = false

	sel := d.pwm.Selected()
	level, _ := d.pwm.Level(sel)
	RecordEvent(evt, uint8(sel), now, uint32(level))
	d.publish()
}

// holdEndEvent is the timer handler that ends the selection display
func (d *Dimmer) holdEndEvent(t *Timer) uint8 {
	d.pwm.Resume()
	d.holding = false
	d.enc.Clear()
	d.armed = false

	RecordEvent(EvtResume, uint8(d.pwm.Selected()), t.WakeTime, 0)
	d.publish()
	return SF_DONE
}

// publish reports the current status on the debug writer and the display
func (d *Dimmer) publish() {
	s := d.Status()
	DebugAsync(FormatStatus(s))
	if d.view != nil {
		d.view.Render(s)
	}
}
