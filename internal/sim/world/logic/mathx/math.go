package mathx

import "math"

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func Mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Round rounds half away from zero.
func Round(x float32) int {
	return int(math.Round(float64(x)))
}

// Chunked maps a world coordinate to its chunk coordinate.
func Chunked(x float32, size int) int {
	return FloorDiv(Round(x), size)
}

func ChunkedInt(x, size int) int {
	return FloorDiv(x, size)
}

// Chebyshev is the chunk-space distance used for radius checks.
func Chebyshev(dp, dq int) int {
	return max(AbsInt(dp), AbsInt(dq))
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// Unit maps a hash to [0,1).
func Unit(h uint64) float64 {
	return float64(h>>11) / float64(1<<53)
}
