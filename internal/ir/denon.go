package ir

// Denon is pulse-distance encoded like NEC but as a single 48-bit frame:
// one SYNC header followed by 48 data bits, each ZERO or ONE, completing
// at bit index 47. Unlike NEC there is no address/command complement —
// the 48-bit payload's split into address and data is not defined by the
// protocol itself (original_source/protocols/denon/mod.rs never resolves
// it either, always constructing `Cmd::construct(0, 0)`); this decoder
// reports the low 24 bits as Address and the high 24 bits as Data so the
// full frame still round-trips through Command's existing uint32 fields
// without widening them.
const (
	denonBits     = 48
	denonAddrBits = 24
)

type denonPhase int

const (
	denonInit denonPhase = iota
	denonReceiving
	denonDone
	denonError
)

const (
	denonPWSync = iota
	denonPWZero
	denonPWOne
)

// DenonDecoder implements the single-frame Denon receiver.
type DenonDecoder struct {
	phase      denonPhase
	bitIndex   uint32
	buf        uint64
	lastEvent  uint32
	err        DecodeError
	classifier *Classifier
}

// NewDenonDecoder builds a Denon decoder for the given sample rate.
func NewDenonDecoder(samplerate uint32) *DenonDecoder {
	const (
		headerHigh = 3400
		headerLow  = 1600
		dataHigh   = 480
		zeroLow    = 360
		oneLow     = 1200
	)

	specs := []RangeSpec{
		{SamplesFromUS(headerHigh+headerLow, samplerate), 5},
		{SamplesFromUS(dataHigh+zeroLow, samplerate), 10},
		{SamplesFromUS(dataHigh+oneLow, samplerate), 10},
	}
	return &DenonDecoder{classifier: NewClassifier(specs)}
}

// Event implements Decoder. Only rising edges carry timing information,
// exactly as the NEC family: the interval since the previous rising edge
// covers one full mark+space symbol.
func (d *DenonDecoder) Event(rising bool, timestamp uint32) State {
	if rising {
		nsamples := WrappingDelta(timestamp, d.lastEvent)
		pw := d.classifier.Classify(nsamples)
		d.lastEvent = timestamp

		switch d.phase {
		case denonInit:
			if pw == denonPWSync {
				d.phase = denonReceiving
				d.bitIndex = 0
				d.buf = 0
			}
		case denonReceiving:
			switch pw {
			case denonPWZero:
				d.advanceBit(false)
			case denonPWOne:
				d.advanceBit(true)
			default:
				d.phase = denonError
				d.err = DecodeError{Kind: ErrorData, Samples: nsamples}
			}
		}
	}

	switch d.phase {
	case denonInit:
		return Idle()
	case denonReceiving:
		return Receiving()
	case denonDone:
		addr := uint32(d.buf & ((1 << denonAddrBits) - 1))
		data := uint32((d.buf >> denonAddrBits) & ((1 << denonAddrBits) - 1))
		return Done(Command{Protocol: ProtocolDenon, Address: addr, Data: data})
	default:
		return ErrState(d.err)
	}
}

func (d *DenonDecoder) advanceBit(one bool) {
	if one {
		d.buf |= 1 << d.bitIndex
	}
	if d.bitIndex == denonBits-1 {
		d.phase = denonDone
	} else {
		d.bitIndex++
	}
}

// Reset returns the decoder to Init.
func (d *DenonDecoder) Reset() {
	d.phase = denonInit
	d.bitIndex = 0
	d.buf = 0
	d.lastEvent = 0
}

// DenonPulsetrain fills buf with the microsecond pulse train for a 48-bit
// Denon frame: SYNC header, then 48 data bits low-Address-first.
func DenonPulsetrain(cmd Command, buf []uint16) int {
	const (
		headerHigh = 3400
		headerLow  = 1600
		dataHigh   = 480
		zeroLow    = 360
		oneLow     = 1200
	)

	frame := uint64(cmd.Address&((1<<denonAddrBits)-1)) | uint64(cmd.Data&((1<<denonAddrBits)-1))<<denonAddrBits

	idx := 0
	buf[idx] = 0 // leading silence
	idx++
	buf[idx] = headerHigh
	idx++
	buf[idx] = headerLow
	idx++

	for i := 0; i < denonBits; i++ {
		buf[idx] = dataHigh
		idx++
		if (frame>>uint(i))&1 != 0 {
			buf[idx] = oneLow
		} else {
			buf[idx] = zeroLow
		}
		idx++
	}

	// Final mark (stop bit) then terminating silence, as NEC does.
	buf[idx] = dataHigh
	idx++
	buf[idx] = 0
	idx++

	return idx
}
