package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSBPRoundTrip(t *testing.T) {
	timing := DefaultSBPTiming()
	require.Equal(t, uint32(36), timing.Bits)
	cmd := Command{Protocol: ProtocolSBP, Address: 0x12, Data: 0xABCDEF0}

	var buf PulsetrainBuffer
	require.True(t, buf.Fill(cmd, timing))

	dec := NewSBPDecoder(timing, 1_000_000)
	st := runDecoder(dec, buf.Durations())

	require.Equal(t, StateDone, st.Kind)
	assert.Equal(t, cmd.Address, st.Command.Address)
	assert.Equal(t, cmd.Data, st.Command.Data)
}

func TestSBPPartialFrameStaysReceiving(t *testing.T) {
	timing := DefaultSBPTiming()
	cmd := Command{Protocol: ProtocolSBP, Address: 0x01, Data: 0x01}

	var buf PulsetrainBuffer
	require.True(t, buf.Fill(cmd, timing))

	durations := buf.Durations()
	// Stop partway through the frame: header plus a handful of bits, well
	// short of the full 36-bit width.
	cut := len(durations) - 6

	dec := NewSBPDecoder(timing, 1_000_000)
	st := runDecoder(dec, durations[:cut])

	assert.Equal(t, StateReceiving, st.Kind)
}
