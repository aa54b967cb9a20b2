package audio

import "github.com/chewxy/math32"

// ClipConvert clips the left and right blocks to [-1, 1], scales them to
// 16 bit and interleaves them into dst. len(dst) must be at least 2*len(l).
func ClipConvert(dst []int16, l, r []float32) {
	dst = dst[:2*len(l)]
	r = r[:len(l)]
	for i := range l {
		dst[2*i] = toInt16(l[i])
		dst[2*i+1] = toInt16(r[i])
	}
}

func toInt16(x float32) int16 {
	switch {
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	case math32.IsNaN(x):
		x = 0
	}
	return int16(x * 32767)
}
