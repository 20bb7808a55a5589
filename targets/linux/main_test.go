//go:build linux && !tinygo

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"swdimmer/core"
)

// countingPort counts pin writes from the ticker
type countingPort struct {
	writes int
}

func (p *countingPort) ConfigureOutput(core.GPIOPin) error      { return nil }
func (p *countingPort) ConfigureInput(core.GPIOPin) error       { return nil }
func (p *countingPort) ConfigureInputPullUp(core.GPIOPin) error { return nil }
func (p *countingPort) SetHigh(core.GPIOPin)                    { p.writes++ }
func (p *countingPort) SetLow(core.GPIOPin)                     { p.writes++ }
func (p *countingPort) ReadPin(core.GPIOPin) bool               { return true }

func TestRunTickerStepsUntilCancelled(t *testing.T) {
	port := &countingPort{}
	pwm, err := core.NewMultiPWM(port, core.PWMConfig{Pins: []core.GPIOPin{1}, Levels: []uint8{10}})
	if err != nil {
		t.Fatalf("NewMultiPWM failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runTicker(ctx, pwm.Ticker(), 100*time.Microsecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	pwm.Pause() // waits for any in-flight step
	cancel()
	<-done

	if pwm.Counter() == 0 {
		t.Error("expected the ticker to advance the counter")
	}
	if port.writes == 0 {
		t.Error("expected pin writes from the ticker")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig default failed: %v", err)
	}
	if len(cfg.Channels) != 3 {
		t.Errorf("expected built-in layout, got %d channels", len(cfg.Channels))
	}
	// GPIO0-3 carry the HAT EEPROM and I2C1 on a Raspberry Pi
	pins := []uint32{cfg.EncoderA, cfg.EncoderB, cfg.SelectButton, cfg.PresetButton}
	for _, ch := range cfg.Channels {
		pins = append(pins, ch.Pin)
	}
	for _, pin := range pins {
		if pin < 4 {
			t.Errorf("built-in layout uses reserved GPIO%d", pin)
		}
	}

	path := filepath.Join(t.TempDir(), "dimmer.json")
	data := `{"channels": [{"pin": 17}, {"pin": 27}], "encoder_a": 5, "encoder_b": 6, "select_button": 13}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[1].Pin != 27 {
		t.Errorf("unexpected channels %+v", cfg.Channels)
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDebugWriterLogsAtDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	core.SetDebugWriter(debugWriter(logger))
	core.SetDebugEnabled(true)
	defer func() {
		core.SetDebugEnabled(false)
		core.SetDebugWriter(func(string) {})
	}()

	core.DebugAsync(core.FormatStatus(core.Status{Selected: 1, Active: true, Levels: []uint8{0, 128, 255}}))
	out := buf.String()
	if !strings.Contains(out, `"selected":1`) || !strings.Contains(out, `"levels":[0,128,255]`) {
		t.Errorf("status line not logged at info level: %q", out)
	}

	buf.Reset()
	core.DumpEventRing()
	if !strings.Contains(buf.String(), "Event Ring Dump") {
		t.Errorf("event ring dump not logged at info level: %q", buf.String())
	}
}
