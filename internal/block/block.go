// Package block implements vector operations over fixed-length sample blocks.
//
// All functions operate on len(dst) elements; the other operands must be at
// least that long.
package block

import "github.com/tphakala/simd/f32"

// MaxSize is the largest block the render path will ever process.
const MaxSize = 512

// Zero clears dst.
func Zero(dst []float32) {
	clear(dst)
}

// Copy copies src into dst.
func Copy(dst, src []float32) {
	copy(dst, src[:len(dst)])
}

// Add accumulates a into dst: dst[i] += a[i].
func Add(dst, a []float32) {
	f32.Add(dst, dst, a[:len(dst)])
}

// Mul multiplies dst by a element-wise: dst[i] *= a[i].
func Mul(dst, a []float32) {
	f32.Mul(dst, dst, a[:len(dst)])
}

// MulK scales dst by k.
func MulK(dst []float32, k float32) {
	f32.Scale(dst, dst, k)
}

// AddK adds the constant k to every element of dst.
func AddK(dst []float32, k float32) {
	f32.AddScalar(dst, dst, k)
}

// Sum returns the sum of all elements of a.
func Sum(a []float32) float32 {
	return f32.Sum(a)
}
