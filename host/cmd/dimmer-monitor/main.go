// dimmer-monitor follows the dimmer firmware console and logs channel levels
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"swdimmer/core"
	"swdimmer/host/mcu"
	"swdimmer/host/serial"
)

var (
	device   = pflag.StringP("device", "d", "/dev/ttyACM0", "Serial device of the dimmer console")
	baud     = pflag.IntP("baud", "b", 115200, "Baud rate")
	logLevel = pflag.StringP("level", "l", "info", "Log level (debug, info, warn, error)")
	changes  = pflag.Bool("changes-only", false, "Only log status lines that differ from the previous one")
)

// logHandler logs console traffic
type logHandler struct {
	log         zerolog.Logger
	changesOnly bool
	last        string
}

func (h *logHandler) Status(s core.Status) {
	line := core.FormatStatus(s)
	if h.changesOnly && line == h.last {
		return
	}
	h.last = line

	levels := make([]int, len(s.Levels))
	for i, l := range s.Levels {
		levels[i] = int(l)
	}
	h.log.Info().
		Int("selected", s.Selected).
		Bool("active", s.Active).
		Ints("levels", levels).
		Msg("status")
}

func (h *logHandler) Line(text string) {
	h.log.Debug().Str("line", text).Msg("console")
}

func main() {
	pflag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		logger = logger.Level(lvl)
	} else {
		logger.Warn().Str("level", *logLevel).Msg("unknown log level, using info")
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("device", cfg.Device).Int("baud", cfg.Baud).Msg("connecting")
	m, err := mcu.Connect(ctx, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Fatal().Err(err).Msg("failed to connect")
	}
	defer m.Close()

	h := &logHandler{log: logger, changesOnly: *changes}
	err = m.Run(ctx, h)

	statuses, others, bad := m.Counts()
	ev := logger.Info().
		Uint64("statuses", statuses).
		Uint64("other", others).
		Uint64("malformed", bad)
	if s, ok := m.LastStatus(); ok {
		ev = ev.Str("last", core.FormatStatus(s))
	}
	ev.Msg("monitor stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("console failed")
		m.Close()
		os.Exit(1)
	}
}
