package mathutil

// GCD returns the greatest common divisor of two non-negative integers.
func GCD(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ReduceRatio returns dst/src in lowest terms as l/m.
func ReduceRatio(src, dst int) (l, m int) {
	g := GCD(src, dst)
	if g == 0 {
		return 0, 0
	}
	return dst / g, src / g
}

// TrailingZeros returns how many times 2 divides n (0 for n <= 0).
func TrailingZeros(n int) int {
	if n <= 0 {
		return 0
	}
	z := 0
	for n&1 == 0 {
		n >>= 1
		z++
	}
	return z
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// CeilDiv returns ceil(a/b) for a >= 0, b > 0.
func CeilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
