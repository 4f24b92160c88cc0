// Package safemath provides overflow-checked uint64 arithmetic.
// Every amount computation in the distribution engine routes through
// these helpers; silent wraparound is never acceptable when the
// operands are token amounts.
package safemath

import (
	"errors"
	"math/bits"
)

// ErrArithmeticOverflow is returned on overflow, underflow and
// division by zero alike. Callers treat all three the same way: the
// whole invocation aborts.
var ErrArithmeticOverflow = errors.New("safemath: arithmetic overflow")

func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmeticOverflow
	}
	return diff, nil
}

func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrArithmeticOverflow
	}
	return a / b, nil
}

// MulDiv computes floor(a*b/den) with a 128-bit intermediate, so the
// product may exceed 64 bits as long as the quotient fits.
func MulDiv(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrArithmeticOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ErrArithmeticOverflow
	}
	quo, _ := bits.Div64(hi, lo, den)
	return quo, nil
}
