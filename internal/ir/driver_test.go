package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPin struct {
	callback func(rising bool, timestamp uint32) State
}

func (p *mockPin) DigitalRead() bool { return false }

func (p *mockPin) WatchEdge(cb func(rising bool, timestamp uint32)) {
	p.callback = func(rising bool, timestamp uint32) State {
		cb(rising, timestamp)
		return State{}
	}
}

func TestEdgeDriverAutoResetsOnDone(t *testing.T) {
	pin := &mockPin{}
	drv := NewEdgeDriver[Decoder](pin, NewNEC(1_000_000))

	cmd := Command{Protocol: ProtocolNEC, Address: 0x03, Data: 0x04}
	var buf PulsetrainBuffer
	require.True(t, buf.Fill(cmd, SBPTiming{}))

	var sampleUS uint32
	rising := false
	var lastState State
	for _, d := range buf.Durations() {
		sampleUS += uint32(d)
		lastState = drv.onEdge(rising, sampleUS)
		rising = !rising
	}
	require.Equal(t, StateDone, lastState.Kind)

	// Decoder was reset automatically: an immediate new sync header must
	// be accepted as a fresh frame rather than folded into the old one.
	sampleUS += 9000
	st := drv.onEdge(true, sampleUS)
	assert.Equal(t, StateReceiving, st.Kind)
}

func TestBufferDecoderIdempotence(t *testing.T) {
	cmd := Command{Protocol: ProtocolNEC, Address: 0x01, Data: 0x7F}
	var buf PulsetrainBuffer
	require.True(t, buf.Fill(cmd, SBPTiming{}))

	edges := durationsToEdges(buf.Durations(), 40_000)
	bd := NewBufferDecoder(uint32(40_000), func() Decoder { return NewNEC(1_000_000) })

	first := bd.Decode(edges)
	second := bd.Decode(edges)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])
}

func TestBufferDecoderNoEdgesYieldsNoCommands(t *testing.T) {
	bd := NewBufferDecoder(uint32(40_000), func() Decoder { return NewNEC(1_000_000) })
	commands := bd.Decode(nil)
	assert.Empty(t, commands)
}
