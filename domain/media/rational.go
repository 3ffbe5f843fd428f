package media

import (
	"fmt"
	"math"
	"math/big"
)

// Rational is a time base: one tick lasts Num/Den seconds
type Rational struct {
	Num int64
	Den int64
}

// Valid returns true if both terms are positive
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// Seconds converts a timestamp expressed in this time base to seconds
func (r Rational) Seconds(ts int64) float64 {
	if !r.Valid() {
		return 0
	}
	return float64(ts) * float64(r.Num) / float64(r.Den)
}

// FromSeconds converts seconds to the nearest timestamp in this time base
func (r Rational) FromSeconds(seconds float64) int64 {
	if !r.Valid() {
		return 0
	}
	return int64(math.Round(seconds * float64(r.Den) / float64(r.Num)))
}

// String returns the time base as "num/den"
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Rescale converts ts from one time base to another, rounding to the nearest
// tick with halves away from zero. NoTimestamp passes through unchanged.
func Rescale(ts int64, from, to Rational) int64 {
	if ts == NoTimestamp || from == to || !from.Valid() || !to.Valid() {
		return ts
	}

	// ts * from.Num * to.Den / (from.Den * to.Num) without overflowing int64
	num := new(big.Int).Mul(big.NewInt(ts), big.NewInt(from.Num))
	num.Mul(num, big.NewInt(to.Den))
	den := new(big.Int).Mul(big.NewInt(from.Den), big.NewInt(to.Num))

	half := new(big.Int).Quo(den, big.NewInt(2))
	if num.Sign() >= 0 {
		num.Add(num, half)
	} else {
		num.Sub(num, half)
	}
	return num.Quo(num, den).Int64()
}
