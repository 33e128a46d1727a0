package kernel

// Scalar reference operators. They run in index order with one
// accumulator and define the expected result for the other variants.

func convolveGeneric[F Float](src, coeffs []F) F {
	var acc F
	for i, c := range coeffs {
		acc += src[i] * c
	}
	return acc
}

// halfbandGeneric folds the symmetric branch so each coefficient is
// multiplied once.
func halfbandGeneric[F Float](src, branch []F) F {
	n := len(branch)
	var acc F
	for m := range n / 2 {
		acc += branch[m] * (src[m] + src[n-1-m])
	}
	return acc
}

func dualCopyGeneric[F Float](dst1, dst2, src []F) {
	for i, v := range src {
		dst1[i] = v
		dst2[i] = v
	}
}
