//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/hd44780i2c"

	"swdimmer/config"
	"swdimmer/core"
)

// lcdDisplay adapts the HD44780 I2C backpack driver to core.TextDisplay
type lcdDisplay struct {
	dev hd44780i2c.Device
}

func (l *lcdDisplay) ClearDisplay()        { l.dev.ClearDisplay() }
func (l *lcdDisplay) SetCursor(x, y uint8) { l.dev.SetCursor(x, y) }
func (l *lcdDisplay) Print(data []byte)    { l.dev.Print(data) }

// InitDisplay brings up the status LCD on I2C0 (SDA=GP4, SCL=GP5)
func InitDisplay(cfg config.DisplayConfig) (*core.StatusView, error) {
	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA: machine.GP4,
		SCL: machine.GP5,
	})
	if err != nil {
		return nil, err
	}

	lcd := &lcdDisplay{dev: hd44780i2c.New(machine.I2C0, cfg.Address)}
	lcd.dev.Configure(hd44780i2c.Config{
		Width:  cfg.Width,
		Height: cfg.Height,
	})

	return core.NewStatusView(lcd, int(cfg.Width)), nil
}
