package sparse

import (
	"math"
)

// KBNSummer is the Kahan-Babushka-Neumaier compensated summation algorithm.
type KBNSummer struct {
	sum, compensation float64
}

func (s *KBNSummer) Add(value float64) {
	moreSig, lessSig := s.sum, value
	if math.Abs(moreSig) < math.Abs(lessSig) {
		moreSig, lessSig = lessSig, moreSig
	}
	s.sum += value
	// During summation above, essentially moreSig + lessSig,
	// lessSig's exponent were brought up to match moreSig's,
	// so lessSig had low-order bits truncated.
	// Recover this "truncated lessSig" used in the addition.
	truncatedLessSig := s.sum - moreSig
	// Now lessSig and truncatedLessSig should be back on the same
	// exponent scale; the difference is the truncated bits (error).
	s.compensation += lessSig - truncatedLessSig
}

func (s *KBNSummer) Sum() float64 {
	return s.sum + s.compensation
}

// KBNSum sums the given values with compensation.
func KBNSum(values ...float64) float64 {
	var summer KBNSummer
	for _, value := range values {
		summer.Add(value)
	}
	return summer.Sum()
}
