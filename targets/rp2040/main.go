//go:build rp2040

package main

import (
	_ "embed"
	"errors"
	"machine"
	"time"

	"swdimmer/config"
	"swdimmer/core"
)

//go:embed board.json
var boardConfig []byte

var (
	errInvalidPin = errors.New("invalid GPIO pin")

	// Debug counters
	loopErrors uint32
	health     core.HealthReporter
)

// healthInterval is how often the fault counters are checked
const healthInterval = 10 * time.Second

func main() {
	// USB CDC carries debug output and status lines
	if err := machine.Serial.Configure(machine.UARTConfig{}); err == nil {
		core.SetDebugWriter(func(s string) {
			machine.Serial.Write([]byte(s))
			machine.Serial.Write([]byte("\r\n"))
		})
	}

	cfg, err := config.LoadConfig(boardConfig)
	if err != nil {
		core.SetDebugEnabled(true)
		core.DebugPrintln("board config invalid, using defaults: " + err.Error())
		cfg = config.Default()
	}
	core.SetDebugEnabled(cfg.Debug)
	core.InitAsyncDebug()

	// Initialize and register GPIO driver
	gpioDriver := NewRPGPIODriver()
	core.SetGPIODriver(gpioDriver)

	dimmer, err := core.NewDimmer(core.MustGPIO(), cfg.DimmerConfig())
	if err != nil {
		halt("dimmer setup failed: " + err.Error())
	}
	if err := dimmer.Init(); err != nil {
		halt("pin setup failed: " + err.Error())
	}

	if cfg.Display.Enabled {
		view, err := InitDisplay(cfg.Display)
		if err != nil {
			core.DebugPrintln("display unavailable: " + err.Error())
		} else {
			dimmer.SetStatusView(view)
		}
	}

	// Outputs are configured; the tick interrupt may start
	StartTickTimer(dimmer.PWM().Ticker(), cfg.TickPeriodUs)

	pollInterval := cfg.PollInterval()
	lastHealth := GetHardwareTime()
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopErrors++
					core.DumpEventRing()
					health.Report(loopErrors, missedTicks)
				}
			}()

			UpdateSystemTime()
			dimmer.Poll()
		}()

		if now := GetHardwareTime(); now-lastHealth >= core.TimerFromDuration(healthInterval) {
			lastHealth = now
			health.Report(loopErrors, missedTicks)
		}

		time.Sleep(pollInterval)
	}
}

// halt reports a fatal setup error forever
func halt(msg string) {
	core.SetDebugEnabled(true)
	for {
		core.DebugPrintln(msg)
		time.Sleep(time.Second)
	}
}
