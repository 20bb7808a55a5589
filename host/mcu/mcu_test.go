package mcu

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"swdimmer/core"
)

// mockPort replays fixed console output, then reports timeouts
type mockPort struct {
	r      *strings.Reader
	closed bool
	cancel context.CancelFunc
}

func (p *mockPort) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if err == io.EOF && p.cancel != nil {
		p.cancel()
	}
	return n, err
}

func (p *mockPort) Write(b []byte) (int, error) { return len(b), nil }
func (p *mockPort) Close() error                { p.closed = true; return nil }
func (p *mockPort) Flush() error                { return nil }

type recorder struct {
	statuses []string
	lines    []string
}

func (r *recorder) Status(s core.Status) {
	r.statuses = append(r.statuses, core.FormatStatus(s))
}

func (r *recorder) Line(text string) {
	r.lines = append(r.lines, text)
}

func TestMCURunDispatchesLines(t *testing.T) {
	output := "status sel=0 active=1 levels=0,0,0\r\n" +
		"[EVENTS] === Event Ring Dump ===\r\n" +
		"\r\n" +
		"status sel=1 active=0 levels=0,16,0\r\n" +
		"status sel=9 active=1 levels=1\r\n"

	ctx, cancel := context.WithCancel(context.Background())
	port := &mockPort{r: strings.NewReader(output), cancel: cancel}
	m := NewMCU(port)
	rec := &recorder{}

	if err := m.Run(ctx, rec); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if len(rec.statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %v", rec.statuses)
	}
	if rec.statuses[1] != "status sel=1 active=0 levels=0,16,0" {
		t.Errorf("unexpected status %q", rec.statuses[1])
	}
	if len(rec.lines) != 2 || rec.lines[0] != "[EVENTS] === Event Ring Dump ===" {
		t.Errorf("unexpected other lines %q", rec.lines)
	}

	last, ok := m.LastStatus()
	if !ok || last.Selected != 1 || last.Active {
		t.Errorf("unexpected last status %+v", last)
	}
	statuses, others, bad := m.Counts()
	if statuses != 2 || others != 1 || bad != 1 {
		t.Errorf("unexpected counts %d/%d/%d", statuses, others, bad)
	}

	if err := m.Close(); err != nil || !port.closed {
		t.Error("Close should close the port")
	}
}
