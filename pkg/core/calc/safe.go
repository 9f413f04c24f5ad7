package calc

import "math"

// SafeDiv divides, returning 0 for a zero or non-finite result.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	q := num / den
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return q
}

// PositiveDiv divides only when den > 0, the guard used for every
// revenue-, debt- and prior-period-denominated ratio.
func PositiveDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return SafeDiv(num, den)
}

// Ratio is PositiveDiv wrapped as a Value: invalid when den <= 0.
func Ratio(num, den float64) Value {
	if den <= 0 {
		return Invalid()
	}
	return Valid(num / den)
}

// NonZeroRatio is invalid only when den == 0, for denominators that may legitimately be negative.
func NonZeroRatio(num, den float64) Value {
	if den == 0 {
		return Invalid()
	}
	return Valid(num / den)
}

// MeanFinite averages the finite entries of values. Non-finite entries are
// excluded rather than counted as zero; an empty set averages to 0.
func MeanFinite(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// RatesOver divides each value by the matching base, guarding non-positive bases.
func RatesOver(values, bases []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i >= len(bases) {
			break
		}
		out[i] = PositiveDiv(v, bases[i])
	}
	return out
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
