package kernel

const unrollFactor = 4

// Portable wide variant: four independent accumulators let the compiler
// keep the multiply-adds in flight. The remainder goes through tailDot,
// which every unrolled operator shares.

func convolveUnrolled[F Float](src, coeffs []F) F {
	n := len(coeffs)
	src = src[:n]
	var a0, a1, a2, a3 F
	i := 0
	for ; i+unrollFactor <= n; i += unrollFactor {
		a0 += src[i] * coeffs[i]
		a1 += src[i+1] * coeffs[i+1]
		a2 += src[i+2] * coeffs[i+2]
		a3 += src[i+3] * coeffs[i+3]
	}
	return tailDot(src, coeffs, i, (a0+a1)+(a2+a3))
}

func halfbandUnrolled[F Float](src, branch []F) F {
	n := len(branch)
	half := n / 2
	src = src[:n]
	var a0, a1 F
	m := 0
	for ; m+2 <= half; m += 2 {
		a0 += branch[m] * (src[m] + src[n-1-m])
		a1 += branch[m+1] * (src[m+1] + src[n-2-m])
	}
	if m < half {
		a0 += branch[m] * (src[m] + src[n-1-m])
	}
	return a0 + a1
}

func dualCopyUnrolled[F Float](dst1, dst2, src []F) {
	copy(dst1, src)
	copy(dst2, src)
}

// tailDot adds src[i]*coeffs[i] for i >= start to acc.
func tailDot[F Float](src, coeffs []F, start int, acc F) F {
	for i := start; i < len(coeffs); i++ {
		acc += src[i] * coeffs[i]
	}
	return acc
}
