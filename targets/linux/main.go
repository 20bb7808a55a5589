//go:build linux && !tinygo

// Command dimmer-linux runs the dimmer on a Linux board (Raspberry Pi and
// friends) with LEDs and the rotary encoder wired to GPIO lines.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"periph.io/x/host/v3"

	"swdimmer/config"
	"swdimmer/core"
)

func main() {
	var levelFlag string
	var configPath string
	var debug bool

	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVarP(&configPath, "config", "c", "", "Path of the JSON configuration (default: Raspberry Pi layout on GPIO17/27/22, encoder on 23/24/25)")
	pflag.BoolVar(&debug, "debug", false, "Publish status lines and dump the event ring on exit")
	pflag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(levelFlag)
	if err != nil {
		logger.Fatal().Err(err).Str("level", levelFlag).Msg("Invalid log level")
	}
	logger = logger.Level(level)

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}

	core.SetDebugWriter(debugWriter(logger))
	core.SetDebugEnabled(debug || cfg.Debug)

	if _, err := host.Init(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize periph host drivers")
	}

	core.SetGPIODriver(NewPeriphGPIODriver())

	dimmer, err := core.NewDimmer(core.MustGPIO(), cfg.DimmerConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create dimmer")
	}
	if err := dimmer.Init(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to configure pins")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info().
		Int("channels", dimmer.PWM().Count()).
		Dur("tick", cfg.TickPeriod()).
		Str("overflow", dimmer.PWM().Overflow().String()).
		Msg("Dimmer running")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runTicker(ctx, dimmer.PWM().Ticker(), cfg.TickPeriod()) })
	g.Go(func() error { return runLoop(ctx, dimmer, cfg.PollInterval()) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Dimmer failed")
	}
	shutdown(dimmer, logger)
}

// runLoop polls the dimmer until ctx is done
func runLoop(ctx context.Context, dimmer *core.Dimmer, interval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updateSystemTime()
		dimmer.Poll()
		time.Sleep(interval)
	}
}

// debugWriter logs firmware debug output at info level, since it is only
// produced once --debug (or the config's debug flag) asked for it.
// Status lines become structured fields.
func debugWriter(logger zerolog.Logger) core.DebugWriter {
	return func(line string) {
		s, err := core.ParseStatus(line)
		if err != nil {
			logger.Info().Msg(line)
			return
		}
		logger.Info().
			Int("selected", s.Selected).
			Bool("active", s.Active).
			Ints("levels", levelsAsInts(s.Levels)).
			Msg("Status")
	}
}

// piDefault is the built-in layout for a Raspberry Pi header. It keeps clear
// of GPIO0/GPIO1 (HAT ID EEPROM) and GPIO2/GPIO3 (I2C1).
func piDefault() *config.Config {
	cfg := config.Default()
	cfg.Channels = []config.ChannelConfig{{Pin: 17}, {Pin: 27}, {Pin: 22}}
	cfg.EncoderA = 23
	cfg.EncoderB = 24
	cfg.SelectButton = 25
	cfg.PresetButton = 5
	return cfg
}

// loadConfig reads the configuration file, or the Raspberry Pi layout if path is empty
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := piDefault()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return config.LoadConfig(data)
}

// shutdown turns every output off so no LED is left lit
func shutdown(dimmer *core.Dimmer, logger zerolog.Logger) {
	pwm := dimmer.PWM()
	pwm.Pause()
	port := core.MustGPIO()
	for i := 0; i < pwm.Count(); i++ {
		if pin, err := pwm.Pin(i); err == nil {
			port.SetLow(pin)
		}
	}
	if core.IsDebugEnabled() {
		core.DumpEventRing()
	}
	logger.Info().Ints("levels", levelsAsInts(pwm.Levels())).Msg("Dimmer stopped")
}

func levelsAsInts(levels []uint8) []int {
	out := make([]int, len(levels))
	for i, l := range levels {
		out[i] = int(l)
	}
	return out
}
