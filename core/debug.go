package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// UIEvent captures one user-visible state change for post-mortem analysis
type UIEvent struct {
	EventType uint8  // Event type code
	Channel   uint8  // Selected channel when the event happened
	Clock     uint32 // Loop clock at event
	Value     uint32 // Context-dependent value
}

// Event type codes
const (
	EvtSelect     = 1 // Selection advanced, Value = new channel
	EvtAdjustUp   = 2 // Level raised, Value = new level
	EvtAdjustDown = 3 // Level lowered, Value = new level
	EvtResume     = 4 // Hold timer resumed the engine
	EvtPreset     = 5 // Preset applied, Value = preset index
	EvtError      = 6 // Operation failed
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event capture ring buffer (non-blocking, for post-mortem)
	eventRing     [EventRingSize]UIEvent
	eventRingHead uint8 // Next write position

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, a logger, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16) // Buffer 16 messages
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking).
// Falls back to a direct write when InitAsyncDebug was never called and
// drops the message when the channel is full.
func DebugAsync(msg string) {
	if !debugEnabled {
		return
	}
	if debugChan == nil {
		DebugPrintln(msg)
		return
	}
	select {
	case debugChan <- msg:
	default:
		// Channel full, drop message (non-blocking)
	}
}

// RecordEvent captures a UI event in the ring buffer
func RecordEvent(eventType, channel uint8, clock, value uint32) {
	idx := eventRingHead
	eventRing[idx] = UIEvent{
		EventType: eventType,
		Channel:   channel,
		Clock:     clock,
		Value:     value,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// RecentEvents returns the captured events, oldest first
func RecentEvents() []UIEvent {
	events := make([]UIEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

func eventName(eventType uint8) string {
	switch eventType {
	case EvtSelect:
		return "SELECT"
	case EvtAdjustUp:
		return "ADJUST_UP"
	case EvtAdjustDown:
		return "ADJUST_DOWN"
	case EvtResume:
		return "RESUME"
	case EvtPreset:
		return "PRESET"
	case EvtError:
		return "ERROR!"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing outputs the event ring buffer (call on shutdown/error)
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range RecentEvents() {
		debugPrintln("[EVENTS] " + eventName(evt.EventType) +
			" ch=" + itoa(int(evt.Channel)) +
			" clock=" + string(appendUint(nil, evt.Clock)) +
			" v=" + string(appendUint(nil, evt.Value)))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = UIEvent{}
	}
	eventRingHead = 0
}

// FormatHealth renders the firmware fault counters as one debug line
func FormatHealth(loopErrors, missedTicks uint32) string {
	buf := append(make([]byte, 0, 48), "health loop_errors="...)
	buf = appendUint(buf, loopErrors)
	buf = append(buf, " missed_ticks="...)
	buf = appendUint(buf, missedTicks)
	return string(buf)
}

// HealthReporter prints the fault counters when they change
type HealthReporter struct {
	loopErrors  uint32
	missedTicks uint32
}

// Report writes a health line if either counter moved since the last report
// and returns whether it did
func (h *HealthReporter) Report(loopErrors, missedTicks uint32) bool {
	if loopErrors == h.loopErrors && missedTicks == h.missedTicks {
		return false
	}
	h.loopErrors = loopErrors
	h.missedTicks = missedTicks
	DebugPrintln(FormatHealth(loopErrors, missedTicks))
	return true
}
