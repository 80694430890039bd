package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier(t *testing.T) {
	c := NewClassifier([]RangeSpec{
		{CenterSamples: 100, TolerancePercent: 10},
		{CenterSamples: 200, TolerancePercent: 10},
	})

	t.Run("exact center matches", func(t *testing.T) {
		assert.Equal(t, 0, c.Classify(100))
		assert.Equal(t, 1, c.Classify(200))
	})

	t.Run("within tolerance matches", func(t *testing.T) {
		assert.Equal(t, 0, c.Classify(95))
		assert.Equal(t, 0, c.Classify(109))
	})

	t.Run("outside all ranges is sentinel", func(t *testing.T) {
		assert.Equal(t, NotAPulseWidth, c.Classify(0))
		assert.Equal(t, NotAPulseWidth, c.Classify(150))
		assert.Equal(t, NotAPulseWidth, c.Classify(1_000_000))
	})

	t.Run("first matching range wins on overlap", func(t *testing.T) {
		overlap := NewClassifier([]RangeSpec{
			{CenterSamples: 100, TolerancePercent: 50},
			{CenterSamples: 120, TolerancePercent: 50},
		})
		assert.Equal(t, 0, overlap.Classify(120))
	})
}

func TestTimingConversions(t *testing.T) {
	t.Run("SamplesFromUS at 1MHz is identity", func(t *testing.T) {
		assert.Equal(t, uint32(889), SamplesFromUS(889, 1_000_000))
	})

	t.Run("SamplesFromUS at 40kHz", func(t *testing.T) {
		assert.Equal(t, uint32(37), SamplesFromUS(925, 40_000))
	})

	t.Run("WrappingDelta handles wraparound", func(t *testing.T) {
		var maxU32 uint32 = 0xFFFFFFFF
		assert.Equal(t, uint32(5), WrappingDelta(4, maxU32))
	})

	t.Run("WrappingDelta normal case", func(t *testing.T) {
		assert.Equal(t, uint32(37), WrappingDelta(137, 100))
	})
}
