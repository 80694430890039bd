package ir

// NotAPulseWidth is returned by Classifier.Classify when no range matches.
const NotAPulseWidth = -1

// pulseRange is a half-open sample-count interval [lo, hi).
type pulseRange struct {
	lo, hi uint32
}

func (r pulseRange) contains(x uint32) bool {
	return x >= r.lo && x < r.hi
}

// RangeSpec is one (center, tolerance%) entry fed to NewClassifier. The
// resulting range is [center - center*tol/100, center + center*tol/100).
type RangeSpec struct {
	CenterSamples    uint32
	TolerancePercent uint32
}

// Classifier maps a measured inter-edge interval, in samples, to one of a
// small fixed set of labeled pulse widths (SYNC, ZERO, ONE, REPEAT, ...).
// It is built once, from a protocol's microsecond constants and the
// sample rate, and is immutable thereafter.
//
// Ranges are tried in declaration order; the first one containing the
// value wins the label (its index into the spec slice). This makes
// earlier entries win ties when two ranges happen to overlap under loose
// tolerances — the builder does not itself reject overlaps, by design
// (spec §4.2): only a test can catch an unintentional overlap, since
// first-match-wins is the authoritative runtime rule.
type Classifier struct {
	ranges []pulseRange
}

// NewClassifier builds a Classifier from ordered (center, tolerance%) pairs.
func NewClassifier(specs []RangeSpec) *Classifier {
	ranges := make([]pulseRange, len(specs))
	for i, s := range specs {
		tol := s.CenterSamples * s.TolerancePercent / 100
		ranges[i] = pulseRange{lo: s.CenterSamples - tol, hi: s.CenterSamples + tol}
	}
	return &Classifier{ranges: ranges}
}

// Classify returns the label (0-based index into the specs passed to
// NewClassifier) of the first range containing x, or NotAPulseWidth if
// none does.
func (c *Classifier) Classify(x uint32) int {
	for i, r := range c.ranges {
		if r.contains(x) {
			return i
		}
	}
	return NotAPulseWidth
}
