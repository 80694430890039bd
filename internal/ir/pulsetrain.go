package ir

// pulsetrainCapacity bounds the longest pulse train any protocol in this
// package can produce (Denon's single 48-bit frame is the widest: leading
// silence + 2-entry header + 96 data-bit entries + stop mark + trailing
// silence = 101; 112 leaves headroom without ever allocating).
const pulsetrainCapacity = 112

// PulsetrainBuffer holds one encoded command as a sequence of microsecond
// durations, alternating OFF (even index, starting at buf[0]) and ON
// (odd index), exactly as every protocol's *Pulsetrain function fills it.
type PulsetrainBuffer struct {
	durations [pulsetrainCapacity]uint16
	length    int
}

// Fill encodes cmd using the protocol-appropriate pulse train builder.
// sbpTiming is only consulted for ProtocolSBP; it is ignored otherwise.
func (b *PulsetrainBuffer) Fill(cmd Command, sbpTiming SBPTiming) bool {
	var n int
	switch cmd.Protocol {
	case ProtocolNEC:
		n = necPulsetrain[NECStandard](NECStandard{}, cmd, b.durations[:])
	case ProtocolNEC16:
		n = necPulsetrain[NEC16Variant](NEC16Variant{}, cmd, b.durations[:])
	case ProtocolNECSamsung:
		n = necPulsetrain[NECSamsungVariant](NECSamsungVariant{}, cmd, b.durations[:])
	case ProtocolRC5:
		n = RC5Pulsetrain(cmd, b.durations[:])
	case ProtocolRC6:
		n = RC6Pulsetrain(cmd, b.durations[:])
	case ProtocolSBP:
		n = SBPPulsetrain(sbpTiming, cmd, b.durations[:])
	case ProtocolDenon:
		n = DenonPulsetrain(cmd, b.durations[:])
	default:
		return false
	}
	b.length = n
	return true
}

// Durations returns the filled portion of the buffer.
func (b *PulsetrainBuffer) Durations() []uint16 {
	return b.durations[:b.length]
}

// PWMGate is the transmit-side collaborator: a carrier-modulated output
// pin the sender toggles on and off for each duration in the train.
type PWMGate interface {
	SetCarrierOn(on bool)
}

// SenderState tags a PulsetrainSender's position in playback.
type SenderState int

const (
	SenderIdle SenderState = iota
	SenderSending
	SenderDone
)

// PulsetrainSender plays a filled PulsetrainBuffer out over a PWMGate,
// advanced by repeated Tick(now) calls off a free-running counter — the
// same wrapping-delta contract EdgeDriver uses on receive, so playback
// can be driven from a timer ISR without ever blocking it. durations[0]
// is always a leading OFF period, so the gate starts off.
type PulsetrainSender struct {
	gate     PWMGate
	buf      *PulsetrainBuffer
	index    int
	state    SenderState
	lastEdge uint32
}

// NewPulsetrainSender builds a sender bound to the given gate.
func NewPulsetrainSender(gate PWMGate) *PulsetrainSender {
	return &PulsetrainSender{gate: gate, state: SenderIdle}
}

// Start begins playback of buf at time now.
func (s *PulsetrainSender) Start(buf *PulsetrainBuffer, now uint32) SenderState {
	s.buf = buf
	s.index = 0
	s.lastEdge = now
	if buf.length == 0 {
		s.state = SenderDone
		return s.state
	}
	s.state = SenderSending
	s.gate.SetCarrierOn(false)
	return s.state
}

// Tick advances the cursor when wrapping_delta(now, ts_last_edge) ≥
// buf[cursor], toggling the gate to match the new index's parity. It
// does bounded, O(1) work per call regardless of how long now has
// overshot the current entry's edge — a caller that ticks too slowly
// just runs behind, it never loops to catch up, matching the no-blocking
// contract the receive side already holds to.
func (s *PulsetrainSender) Tick(now uint32) SenderState {
	if s.state != SenderSending {
		return s.state
	}
	if WrappingDelta(now, s.lastEdge) >= uint32(s.buf.durations[s.index]) {
		s.index++
		if s.index >= s.buf.length {
			s.state = SenderDone
			s.gate.SetCarrierOn(false)
			return s.state
		}
		s.gate.SetCarrierOn(s.index%2 == 1)
		s.lastEdge = now
	}
	return s.state
}

// State reports the sender's current position.
func (s *PulsetrainSender) State() SenderState {
	return s.state
}
