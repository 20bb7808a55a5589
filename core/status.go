package core

import (
	"errors"
	"strconv"
	"strings"
)

// statusPrefix starts every status line the firmware publishes
const statusPrefix = "status"

var (
	ErrNotStatus       = errors.New("status: not a status line")
	ErrMalformedStatus = errors.New("status: malformed status line")
)

// Status is a snapshot of the dimmer published after every change
type Status struct {
	Selected int
	Active   bool
	Levels   []uint8
}

// FormatStatus renders a status line:
//
//	status sel=1 active=1 levels=0,128,255
func FormatStatus(s Status) string {
	buf := make([]byte, 0, 32+4*len(s.Levels))
	buf = append(buf, statusPrefix+" sel="...)
	buf = appendUint(buf, uint32(s.Selected))
	if s.Active {
		buf = append(buf, " active=1"...)
	} else {
		buf = append(buf, " active=0"...)
	}
	buf = append(buf, " levels="...)
	for i, l := range s.Levels {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendUint(buf, uint32(l))
	}
	return string(buf)
}

// ParseStatus decodes a line produced by FormatStatus.
// Lines that are not status lines return ErrNotStatus.
func ParseStatus(line string) (Status, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != statusPrefix {
		return Status{}, ErrNotStatus
	}

	var s Status
	seen := 0
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return Status{}, ErrMalformedStatus
		}
		switch key {
		case "sel":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return Status{}, ErrMalformedStatus
			}
			s.Selected = n
		case "active":
			switch value {
			case "0":
				s.Active = false
			case "1":
				s.Active = true
			default:
				return Status{}, ErrMalformedStatus
			}
		case "levels":
			for _, part := range strings.Split(value, ",") {
				n, err := strconv.ParseUint(part, 10, 8)
				if err != nil {
					return Status{}, ErrMalformedStatus
				}
				s.Levels = append(s.Levels, uint8(n))
			}
		default:
			// Unknown keys are skipped so older monitors keep working
			continue
		}
		seen++
	}
	if seen < 3 || s.Selected >= len(s.Levels) {
		return Status{}, ErrMalformedStatus
	}
	return s, nil
}

// TextDisplay is a character display such as an HD44780 LCD
type TextDisplay interface {
	ClearDisplay()
	SetCursor(x, y uint8)
	Print(data []byte)
}

// StatusView renders the dimmer status on a two-line text display:
//
//	CH 2/3 RUN
//	   0*128 255
//
// Only lines whose text changed are rewritten.
type StatusView struct {
	disp  TextDisplay
	width int
	lines [2][]byte
	drawn bool
}

// NewStatusView creates a view for a display of the given width in characters
func NewStatusView(disp TextDisplay, width int) *StatusView {
	if width <= 0 {
		width = 16
	}
	return &StatusView{disp: disp, width: width}
}

// Render draws s and reports whether anything was written to the display
func (v *StatusView) Render(s Status) bool {
	header := append(make([]byte, 0, v.width), "CH "...)
	header = appendUint(header, uint32(s.Selected+1))
	header = append(header, '/')
	header = appendUint(header, uint32(len(s.Levels)))
	if s.Active {
		header = append(header, " RUN"...)
	} else {
		header = append(header, " SEL"...)
	}

	levels := make([]byte, 0, v.width)
	for i, l := range s.Levels {
		if i == s.Selected {
			levels = append(levels, '*')
		} else {
			levels = append(levels, ' ')
		}
		levels = appendPadded(levels, uint32(l), 3)
	}

	if !v.drawn {
		v.disp.ClearDisplay()
	}

	changed := false
	for y, line := range [2][]byte{v.pad(header), v.pad(levels)} {
		if v.drawn && string(line) == string(v.lines[y]) {
			continue
		}
		v.disp.SetCursor(0, uint8(y))
		v.disp.Print(line)
		v.lines[y] = line
		changed = true
	}
	v.drawn = true
	return changed
}

// pad truncates or space-fills a line to the display width
func (v *StatusView) pad(line []byte) []byte {
	if len(line) > v.width {
		return line[:v.width]
	}
	for len(line) < v.width {
		line = append(line, ' ')
	}
	return line
}
