package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRC5RoundTrip(t *testing.T) {
	cases := []Command{
		{Protocol: ProtocolRC5, Address: 0x00, Data: 0x00, Toggle: false},
		{Protocol: ProtocolRC5, Address: 0x1F, Data: 0x3F, Toggle: true},
		{Protocol: ProtocolRC5, Address: 0x05, Data: 0x15, Toggle: false},
	}

	for _, cmd := range cases {
		var buf PulsetrainBuffer
		require.True(t, buf.Fill(cmd, SBPTiming{}))

		dec := NewRC5Decoder(1_000_000)
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
		assert.Equal(t, cmd.Toggle, st.Command.Toggle)
	}
}

func TestRC5AcrossSampleRates(t *testing.T) {
	for _, samplerate := range []uint32{20_000, 40_000, 80_000} {
		samplerate := samplerate
		t.Run("samplerate", func(t *testing.T) {
			cmd := Command{Protocol: ProtocolRC5, Address: 0x03, Data: 0x0A, Toggle: true}
			var buf PulsetrainBuffer
			require.True(t, buf.Fill(cmd, SBPTiming{}))

			bd := NewBufferDecoder(samplerate, func() Decoder { return NewRC5Decoder(1_000_000) })
			edges := durationsToEdges(buf.Durations(), samplerate)
			commands := bd.Decode(edges)

			require.Len(t, commands, 1)
			assert.Equal(t, cmd.Address, commands[0].Address)
			assert.Equal(t, cmd.Data, commands[0].Data)
		})
	}
}

func TestRC5Idle(t *testing.T) {
	dec := NewRC5Decoder(1_000_000)
	st := dec.Event(true, 100)
	assert.Equal(t, StateIdle, st.Kind)
}
