package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRC6RoundTrip(t *testing.T) {
	cases := []Command{
		{Protocol: ProtocolRC6, Address: 0x00, Data: 0x00},
		{Protocol: ProtocolRC6, Address: 0xFF, Data: 0xFF},
		{Protocol: ProtocolRC6, Address: 0x7E, Data: 0x20},
	}

	for _, cmd := range cases {
		var buf PulsetrainBuffer
		require.True(t, buf.Fill(cmd, SBPTiming{}))

		dec := NewRC6Decoder(1_000_000)
		var sampleUS uint32
		rising := false
		var st State
		for _, d := range buf.Durations() {
			sampleUS += uint32(d)
			st = dec.Event(rising, sampleUS)
			rising = !rising
		}
		require.Equal(t, StateDone, st.Kind, "command %+v", cmd)
		assert.Equal(t, cmd.Address, st.Command.Address)
		assert.Equal(t, cmd.Data, st.Command.Data)
		// Transmit always encodes toggle false regardless of input.
		assert.False(t, st.Command.Toggle)
	}
}

func TestRC6TripleFrame(t *testing.T) {
	cmd := Command{Protocol: ProtocolRC6, Address: 0x10, Data: 0x20}
	var buf PulsetrainBuffer
	require.True(t, buf.Fill(cmd, SBPTiming{}))

	dec := NewRC6Decoder(1_000_000)
	decodeOnce := func(startUS uint32) (State, uint32) {
		sampleUS := startUS
		rising := false
		var st State
		for _, d := range buf.Durations() {
			sampleUS += uint32(d)
			st = dec.Event(rising, sampleUS)
			rising = !rising
		}
		return st, sampleUS
	}

	var sampleUS uint32
	var st State
	for i := 0; i < 3; i++ {
		st, sampleUS = decodeOnce(sampleUS)
		require.Equal(t, StateDone, st.Kind)
		dec.Reset()
		sampleUS += 40_000
	}
	assert.Equal(t, cmd.Address, st.Command.Address)
	assert.Equal(t, cmd.Data, st.Command.Data)
}
