package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGate struct {
	on     bool
	events []bool
}

func (g *mockGate) SetCarrierOn(on bool) {
	g.on = on
	g.events = append(g.events, on)
}

func TestPulsetrainSender(t *testing.T) {
	cmd := Command{Protocol: ProtocolNEC, Address: 0x01, Data: 0x02}
	var buf PulsetrainBuffer
	require.True(t, buf.Fill(cmd, SBPTiming{}))

	gate := &mockGate{}
	sender := NewPulsetrainSender(gate)

	var now uint32
	state := sender.Start(&buf, now)
	assert.False(t, gate.on)
	assert.Equal(t, SenderSending, state)

	// Drive the sender from a free-running counter in small steps, well
	// under the shortest pulse width in buf, so Tick never has to skip an
	// edge — exactly the cadence a timer ISR would provide.
	const step = 10
	var ticks int
	sawCarrierOn := false
	for state == SenderSending {
		now += step
		state = sender.Tick(now)
		if gate.on {
			sawCarrierOn = true
		}
		ticks++
		if ticks > 1_000_000 {
			t.Fatal("sender did not terminate")
		}
	}
	assert.Equal(t, SenderDone, state)
	assert.False(t, gate.on)
	assert.True(t, sawCarrierOn, "carrier should have keyed on for at least one mark")

	var totalUS uint32
	for _, d := range buf.Durations() {
		totalUS += uint32(d)
	}
	// Every entry needs at least one Tick to advance past it, on top of
	// the ticks spent actually waiting out its duration.
	assert.GreaterOrEqual(t, uint32(ticks), totalUS/step)
	assert.LessOrEqual(t, uint32(ticks), totalUS/step+uint32(len(buf.Durations())))
}

func TestPulsetrainBufferFillUnknownProtocol(t *testing.T) {
	var buf PulsetrainBuffer
	ok := buf.Fill(Command{Protocol: ProtocolCapture}, SBPTiming{})
	assert.False(t, ok)
}
