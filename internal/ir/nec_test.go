package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// durationsToEdges converts a filled PulsetrainBuffer into BufferEdge
// samples at samplerate, alternating level starting low, for feeding
// through a BufferDecoder or a plain Decoder under test.
func durationsToEdges(durations []uint16, samplerate uint32) []BufferEdge {
	edges := make([]BufferEdge, 0, len(durations))
	var cumulativeUS uint32
	rising := false
	for _, d := range durations {
		cumulativeUS += uint32(d)
		sample := cumulativeUS / periodUS(samplerate)
		edges = append(edges, BufferEdge{Rising: rising, Sample: sample})
		rising = !rising
	}
	return edges
}

func TestNECRoundTrip(t *testing.T) {
	for _, samplerate := range []uint32{20_000, 40_000, 80_000} {
		samplerate := samplerate
		t.Run("samplerate", func(t *testing.T) {
			cmd := Command{Protocol: ProtocolNEC, Address: 0x04, Data: 0x08}
			var buf PulsetrainBuffer
			require.True(t, buf.Fill(cmd, SBPTiming{}))

			bd := NewBufferDecoder(samplerate, func() Decoder { return NewNEC(1_000_000) })
			edges := durationsToEdges(buf.Durations(), samplerate)
			commands := bd.Decode(edges)

			require.Len(t, commands, 1)
			assert.Equal(t, cmd.Address, commands[0].Address)
			assert.Equal(t, cmd.Data, commands[0].Data)
			assert.Equal(t, ProtocolNEC, commands[0].Protocol)
		})
	}
}

func TestNECDecoderDirect(t *testing.T) {
	t.Run("full frame decodes", func(t *testing.T) {
		dec := NewNEC(1_000_000)
		cmd := Command{Protocol: ProtocolNEC, Address: 0x12, Data: 0x34}
		var buf PulsetrainBuffer
		require.True(t, buf.Fill(cmd, SBPTiming{}))

		var lastState State
		var sampleUS uint32
		rising := false
		for _, d := range buf.Durations() {
			sampleUS += uint32(d)
			lastState = dec.Event(rising, sampleUS)
			rising = !rising
		}
		require.Equal(t, StateDone, lastState.Kind)
		assert.Equal(t, cmd.Address, lastState.Command.Address)
		assert.Equal(t, cmd.Data, lastState.Command.Data)
	})

	t.Run("single stray edge stays idle", func(t *testing.T) {
		dec := NewNEC(1_000_000)
		st := dec.Event(true, 500)
		assert.Equal(t, StateIdle, st.Kind)
	})

	t.Run("rejects bad address complement", func(t *testing.T) {
		dec := NewNEC(1_000_000)
		cmd := Command{Protocol: ProtocolNEC, Address: 0x12, Data: 0x34}
		bits := NECStandard{}.EncodeCommand(cmd)
		bits ^= 1 // flip one bit of the address, breaking its complement
		var lastState State
		var sampleUS uint32
		sampleUS += 9000 + 4500
		lastState = dec.Event(true, sampleUS)
		for i := 0; i < 32; i++ {
			if (bits>>uint(i))&1 != 0 {
				sampleUS += 560 + 1690
			} else {
				sampleUS += 560 + 560
			}
			lastState = dec.Event(true, sampleUS)
		}
		assert.Equal(t, StateError, lastState.Kind)
		assert.Equal(t, ErrorAddress, lastState.Err.Kind)
	})

	t.Run("repeat frame re-reports last command", func(t *testing.T) {
		dec := NewNEC(1_000_000)
		cmd := Command{Protocol: ProtocolNEC, Address: 0x01, Data: 0x02}
		var buf PulsetrainBuffer
		require.True(t, buf.Fill(cmd, SBPTiming{}))

		var sampleUS uint32
		rising := false
		var st State
		for _, d := range buf.Durations() {
			sampleUS += uint32(d)
			st = dec.Event(rising, sampleUS)
			rising = !rising
		}
		require.Equal(t, StateDone, st.Kind)
		dec.Reset()

		// Repeat: 9000+2250 header, then a single closing mark.
		sampleUS += 9000
		dec.Event(true, sampleUS)
		sampleUS += 2250
		st = dec.Event(true, sampleUS)
		require.Equal(t, StateDone, st.Kind)
		assert.Equal(t, cmd.Address, st.Command.Address)
		assert.Equal(t, cmd.Data, st.Command.Data)
	})
}

func TestNEC16AndSamsungVariants(t *testing.T) {
	t.Run("NEC16 16-bit address round trip", func(t *testing.T) {
		cmd := Command{Protocol: ProtocolNEC16, Address: 0xBEEF, Data: 0x42}
		var buf PulsetrainBuffer
		require.True(t, buf.Fill(cmd, SBPTiming{}))

		dec := NewNEC16(1_000_000)
		var sampleUS uint32
		rising := false
		var st State
		for _, d := range buf.Durations() {
			sampleUS += uint32(d)
			st = dec.Event(rising, sampleUS)
			rising = !rising
		}
		require.Equal(t, StateDone, st.Kind)
		assert.Equal(t, uint32(0xBEEF), st.Command.Address)
		assert.Equal(t, uint32(0x42), st.Command.Data)
	})

	t.Run("NECSamsung round trip", func(t *testing.T) {
		cmd := Command{Protocol: ProtocolNECSamsung, Address: 0x07, Data: 0x09}
		var buf PulsetrainBuffer
		require.True(t, buf.Fill(cmd, SBPTiming{}))

		dec := NewNECSamsung(1_000_000)
		var sampleUS uint32
		rising := false
		var st State
		for _, d := range buf.Durations() {
			sampleUS += uint32(d)
			st = dec.Event(rising, sampleUS)
			rising = !rising
		}
		require.Equal(t, StateDone, st.Kind)
		assert.Equal(t, cmd.Address, st.Command.Address)
		assert.Equal(t, cmd.Data, st.Command.Data)
	})
}
