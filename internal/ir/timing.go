package ir

// SamplesFromUS converts a microsecond duration into a sample count at the
// given sample rate, using integer division only. Call only at
// construction time (building a Classifier) — it has no place on the edge
// hot path.
func SamplesFromUS(us, samplerate uint32) uint32 {
	return us / periodUS(samplerate)
}

// periodUS is the sample period in microseconds for a given sample rate.
func periodUS(samplerate uint32) uint32 {
	return 1_000_000 / samplerate
}

// WrappingDelta returns now-prev modulo 2^32. Sample counters wrap;
// decoders and drivers must always use this instead of plain subtraction
// so that a wraparound between two adjacent edges still yields the
// correct small delta.
func WrappingDelta(now, prev uint32) uint32 {
	return now - prev
}
