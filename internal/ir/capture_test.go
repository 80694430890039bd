package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureDecoder(t *testing.T) {
	t.Run("records inter-edge gaps", func(t *testing.T) {
		dec := NewCaptureDecoder()
		st := dec.Event(true, 0)
		assert.Equal(t, StateReceiving, st.Kind)

		dec.Event(false, 100)
		dec.Event(true, 250)

		edges := dec.Edges()
		assert.Len(t, edges, 2)
		assert.Equal(t, uint32(100), edges[0])
		assert.Equal(t, uint32(150), edges[1])
	})

	t.Run("caps at fixed capacity without allocating further", func(t *testing.T) {
		dec := NewCaptureDecoder()
		dec.Event(true, 0)
		var ts uint32
		for i := 0; i < captureSlots+10; i++ {
			ts += 10
			dec.Event(i%2 == 0, ts)
		}
		assert.Len(t, dec.Edges(), captureSlots)
	})

	t.Run("reset clears state", func(t *testing.T) {
		dec := NewCaptureDecoder()
		dec.Event(true, 0)
		dec.Event(false, 50)
		dec.Reset()
		assert.Len(t, dec.Edges(), 0)
		st := dec.Event(true, 1000)
		assert.Equal(t, StateReceiving, st.Kind)
	})
}

