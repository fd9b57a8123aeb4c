package decimal

import "math"

// SoftFloat is the (significand, binary exponent) decomposition of a
// float64: the value is F * 2^E.
type SoftFloat struct {
	F uint64
	E int
}

const (
	significandMask = 1<<52 - 1
	exponentMask    = 0x7FF
	hiddenBit       = uint64(1) << 52
	bias            = 1075 // 1023 + 52
)

// Decompose splits a finite, non-zero float64 into its significand and
// binand exponent, and reports whether d sits on the lower boundary of
// its binade (significand is exactly a power of two and not a subnormal
// or the smallest normal) — the case where the distance to the
// next-lower representable double is half that to the next-higher one,
// per §4.E step 1.
func Decompose(d float64) (sf SoftFloat, lowerBoundaryCloser bool) {
	bits := math.Float64bits(d)
	rawExp := int((bits >> 52) & exponentMask)
	rawFrac := bits & significandMask

	if rawExp == 0 {
		// Subnormal.
		sf = SoftFloat{F: rawFrac, E: 1 - bias}
		return sf, false
	}
	sf = SoftFloat{F: rawFrac | hiddenBit, E: rawExp - bias}
	lowerBoundaryCloser = rawFrac == 0 && rawExp > 1
	return sf, lowerBoundaryCloser
}

// Sign reports the IEEE-754 sign bit of d.
func Sign(d float64) bool {
	return math.Float64bits(d)>>63 != 0
}
