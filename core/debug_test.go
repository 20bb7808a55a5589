package core

import "testing"

func TestHealthReporterOnlyReportsChanges(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	SetDebugEnabled(true)
	defer SetDebugEnabled(false)

	var h HealthReporter
	if h.Report(0, 0) {
		t.Error("zero counters should not be reported")
	}
	if !h.Report(0, 3) {
		t.Fatal("missed ticks not reported")
	}
	if h.Report(0, 3) {
		t.Error("unchanged counters reported twice")
	}
	if !h.Report(1, 3) {
		t.Fatal("loop error not reported")
	}

	want := []string{
		"health loop_errors=0 missed_ticks=3",
		"health loop_errors=1 missed_ticks=3",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %q, got %q", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("expected %q, got %q", want[i], lines[i])
		}
	}
}

func TestHealthLineIsNotStatus(t *testing.T) {
	if _, err := ParseStatus(FormatHealth(1, 2)); err != ErrNotStatus {
		t.Errorf("expected ErrNotStatus, got %v", err)
	}
}
