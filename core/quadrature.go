// Rotary encoder quadrature decoding
// Turns two bouncy contact samples per poll into rotation events without
// timers: a transition only counts when it leaves a stable detent.
package core

// QuadState is one sample of the two encoder contacts
type QuadState struct {
	A bool
	B bool
}

// Unstable reports a mid-transition sample (contacts disagree)
func (s QuadState) Unstable() bool { return s.A != s.B }

// StableOff reports the both-open detent
func (s QuadState) StableOff() bool { return !s.A && !s.B }

// StableOn reports the both-closed detent
func (s QuadState) StableOn() bool { return s.A && s.B }

// Contact identifies which encoder contacts are asserted
type Contact uint8

const (
	ContactNone Contact = iota
	ContactA
	ContactB
	ContactBoth
)

func (c Contact) String() string {
	switch c {
	case ContactNone:
		return "none"
	case ContactA:
		return "a"
	case ContactB:
		return "b"
	case ContactBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Direction of a decoded detent transition
type Direction int8

const (
	NoTurn           Direction = 0
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// Quadrature holds the last two samples of an encoder.
// Samples must be polarity-normalized by the caller (true = contact closed).
type Quadrature struct {
	previous QuadState
	current  QuadState
}

// Sample shifts in a new pair of contact readings
func (q *Quadrature) Sample(a, b bool) {
	q.previous = q.current
	q.current = QuadState{A: a, B: b}
}

// Previous returns the sample before the current one
func (q *Quadrature) Previous() QuadState { return q.previous }

// Current returns the latest sample
func (q *Quadrature) Current() QuadState { return q.current }

// Stable reports whether the encoder currently rests in a detent
func (q *Quadrature) Stable() bool { return !q.current.Unstable() }

// RisingEdge reports the encoder leaving the both-open detent
func (q *Quadrature) RisingEdge() bool {
	return q.previous.StableOff() && q.current.Unstable()
}

// FallingEdge reports the encoder leaving the both-closed detent
func (q *Quadrature) FallingEdge() bool {
	return q.previous.StableOn() && q.current.Unstable()
}

// Active classifies the contacts asserted in the latest sample
func (q *Quadrature) Active() Contact {
	switch {
	case q.current.A && q.current.B:
		return ContactBoth
	case q.current.A:
		return ContactA
	case q.current.B:
		return ContactB
	default:
		return ContactNone
	}
}

// Turned decodes the direction of a detent transition seen on this sample.
//
// Turning clockwise the contacts go open/open -> A -> both -> B -> open/open,
// so A leads when leaving the open detent and B remains when leaving the
// closed one. Counter-clockwise is the mirror image.
func (q *Quadrature) Turned() Direction {
	switch {
	case q.RisingEdge():
		if q.Active() == ContactA {
			return Clockwise
		}
		return CounterClockwise
	case q.FallingEdge():
		if q.Active() == ContactB {
			return Clockwise
		}
		return CounterClockwise
	default:
		return NoTurn
	}
}

// TurnedRight reports a clockwise detent transition
func (q *Quadrature) TurnedRight() bool { return q.Turned() == Clockwise }

// TurnedLeft reports a counter-clockwise detent transition
func (q *Quadrature) TurnedLeft() bool { return q.Turned() == CounterClockwise }

// Clear forgets both samples, leaving the decoder at the open detent.
// Call after consuming a rotation event.
func (q *Quadrature) Clear() {
	q.previous = QuadState{}
	q.current = QuadState{}
}
