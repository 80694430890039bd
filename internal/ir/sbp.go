package ir

// SBPTiming parameterizes the Samsung Blu-ray Player pulse-distance
// protocol. Unlike NEC's fixed constants, SBP's header and bit widths
// vary across known remotes, so the decoder takes them as a value rather
// than hard-coding one remote's numbers.
type SBPTiming struct {
	HH, HL, DH, ZL, OL uint32
	Bits               uint32
}

// DefaultSBPTiming returns the constants of the Samsung 36-bit protocol:
// a 4500/4500 header (shared with NEC-Samsung) and the full 36-bit frame
// width, 8-bit address in the low bits and the remaining 28 bits as data.
func DefaultSBPTiming() SBPTiming {
	return SBPTiming{HH: 4500, HL: 4500, DH: 560, ZL: 560, OL: 1690, Bits: 36}
}

type sbpPhase int

const (
	sbpInit sbpPhase = iota
	sbpReceiving
	sbpDone
	sbpError
)

const (
	sbpPWSync = iota
	sbpPWZero
	sbpPWOne
)

// SBPDecoder implements the SBP pulse-distance receiver, structurally
// identical to the NEC family but with a caller-supplied frame width and
// no complement validation.
type SBPDecoder struct {
	timing     SBPTiming
	phase      sbpPhase
	bitIndex   uint32
	bitbuf     uint32
	lastEvent  uint32
	err        DecodeError
	classifier *Classifier
}

// NewSBPDecoder builds an SBP decoder for the given timing and sample rate.
func NewSBPDecoder(timing SBPTiming, samplerate uint32) *SBPDecoder {
	specs := []RangeSpec{
		{SamplesFromUS(timing.HH+timing.HL, samplerate), 5},
		{SamplesFromUS(timing.DH+timing.ZL, samplerate), 10},
		{SamplesFromUS(timing.DH+timing.OL, samplerate), 10},
	}
	return &SBPDecoder{timing: timing, classifier: NewClassifier(specs)}
}

// Event implements Decoder.
func (d *SBPDecoder) Event(rising bool, timestamp uint32) State {
	if rising {
		nsamples := WrappingDelta(timestamp, d.lastEvent)
		pw := d.classifier.Classify(nsamples)
		d.lastEvent = timestamp

		switch d.phase {
		case sbpInit:
			if pw == sbpPWSync {
				d.phase = sbpReceiving
				d.bitIndex = 0
				d.bitbuf = 0
			}
		case sbpReceiving:
			switch pw {
			case sbpPWZero:
				d.advanceBit(false)
			case sbpPWOne:
				d.advanceBit(true)
			default:
				d.phase = sbpError
				d.err = DecodeError{Kind: ErrorData, Samples: nsamples}
			}
		}
	}

	switch d.phase {
	case sbpInit:
		return Idle()
	case sbpDone:
		addr := d.bitbuf & 0xFF
		data := d.bitbuf >> 8
		return Done(Command{Protocol: ProtocolSBP, Address: addr, Data: data})
	case sbpError:
		return ErrState(d.err)
	default:
		return Receiving()
	}
}

func (d *SBPDecoder) advanceBit(one bool) {
	if one {
		d.bitbuf |= 1 << d.bitIndex
	}
	if d.bitIndex+1 == d.timing.Bits {
		d.phase = sbpDone
	} else {
		d.bitIndex++
	}
}

// Reset returns the decoder to Init.
func (d *SBPDecoder) Reset() {
	d.phase = sbpInit
	d.bitIndex = 0
	d.bitbuf = 0
	d.lastEvent = 0
}

// SBPPulsetrain fills buf with the microsecond pulse train for an SBP
// command under the given timing.
func SBPPulsetrain(timing SBPTiming, cmd Command, buf []uint16) int {
	bits := (cmd.Address & 0xFF) | (cmd.Data << 8)

	idx := 0
	buf[idx] = 0
	idx++
	buf[idx] = uint16(timing.HH)
	idx++
	buf[idx] = uint16(timing.HL)
	idx++

	for i := uint32(0); i < timing.Bits; i++ {
		buf[idx] = uint16(timing.DH)
		idx++
		if (bits>>i)&1 != 0 {
			buf[idx] = uint16(timing.OL)
		} else {
			buf[idx] = uint16(timing.ZL)
		}
		idx++
	}

	buf[idx] = uint16(timing.DH)
	idx++
	buf[idx] = 0
	idx++

	return idx
}
