package ir

// GPIOProvider is the receive-side collaborator an embedder supplies: a
// pin that can be read and whose edges can be watched. Decoders never
// touch hardware directly; only EdgeDriver and BufferDecoder do, so the
// same decoder types work identically against real pins, a mock, or a
// replayed sample buffer.
type GPIOProvider interface {
	DigitalRead() bool
	WatchEdge(callback func(rising bool, timestamp uint32))
}

// EdgeDriver wires a single Decoder to a GPIOProvider's edge events and
// owns the reset-on-Done/Error protocol so embedders never need to
// reimplement it: every Done or Error result is followed by an automatic
// Reset before the next edge is processed.
type EdgeDriver[D Decoder] struct {
	decoder D
}

// NewEdgeDriver attaches decoder to pin, registering its own callback.
func NewEdgeDriver[D Decoder](pin GPIOProvider, decoder D) *EdgeDriver[D] {
	drv := &EdgeDriver[D]{decoder: decoder}
	pin.WatchEdge(func(rising bool, timestamp uint32) {
		drv.onEdge(rising, timestamp)
	})
	return drv
}

func (e *EdgeDriver[D]) onEdge(rising bool, timestamp uint32) State {
	st := e.decoder.Event(rising, timestamp)
	if st.Kind == StateDone || st.Kind == StateError {
		e.decoder.Reset()
	}
	return st
}

// Decoder exposes the underlying decoder, e.g. for CaptureDecoder.Edges().
func (e *EdgeDriver[D]) Decoder() D {
	return e.decoder
}

// BufferDecoder replays a caller-supplied sequence of (level, sample)
// pairs recorded at an arbitrary sample rate through a fresh decoder
// built at a canonical internal rate of 1,000,000 Hz (one sample equals
// one microsecond). The caller's samplerate is used only to scale the
// recorded sample counts into that canonical domain; this keeps decoding
// correct and identical in behavior regardless of how coarsely the
// buffer was originally sampled.
type BufferDecoder[D Decoder] struct {
	samplerate uint32
	newDecoder func() D
}

// NewBufferDecoder builds a BufferDecoder. newDecoder must build a fresh
// decoder at samplerate 1,000,000 (e.g. func() ir.Decoder { return
// ir.NewNEC(1_000_000) }) so every call to Decode starts from a clean,
// independent state machine.
func NewBufferDecoder[D Decoder](samplerate uint32, newDecoder func() D) *BufferDecoder[D] {
	return &BufferDecoder[D]{samplerate: samplerate, newDecoder: newDecoder}
}

// BufferEdge is one recorded transition: rising/falling polarity and the
// sample count (at the BufferDecoder's configured rate) since start.
type BufferEdge struct {
	Rising bool
	Sample uint32
}

// Decode replays edges from the beginning through a freshly constructed
// decoder and returns every Done command it produces, in order. Calling
// Decode twice with the same edges always returns the same result: no
// state survives between calls.
func (b *BufferDecoder[D]) Decode(edges []BufferEdge) []Command {
	scaler := periodUS(b.samplerate)
	dec := b.newDecoder()
	var commands []Command
	for _, e := range edges {
		us := e.Sample * scaler
		st := dec.Event(e.Rising, us)
		switch st.Kind {
		case StateDone:
			commands = append(commands, st.Command)
			dec.Reset()
		case StateError:
			dec.Reset()
		}
	}
	return commands
}
