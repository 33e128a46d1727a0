package fft

import "gonum.org/v1/gonum/dsp/fourier"

// Gonum wraps gonum's complex FFT. Its inverse is unnormalized, so a round
// trip scales by the transform size. Single precision is served by
// converting through complex128 scratch buffers.
type Gonum struct{}

// Name implements Backend.
func (Gonum) Name() string { return "gonum" }

// IsSupported implements Backend.
func (Gonum) IsSupported(p Precision) bool { return p == Single || p == Double }

// Setup128 implements Backend.
func (Gonum) Setup128(size int) (Transform[complex128], error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	return &gonum128{fft: fourier.NewCmplxFFT(size), n: size}, nil
}

// Setup64 implements Backend.
func (Gonum) Setup64(size int) (Transform[complex64], error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	return &gonum64{
		fft: fourier.NewCmplxFFT(size),
		n:   size,
		in:  make([]complex128, size),
		out: make([]complex128, size),
	}, nil
}

type gonum128 struct {
	fft *fourier.CmplxFFT
	n   int
}

func (g *gonum128) Size() int                     { return g.n }
func (g *gonum128) Scale() float64                { return float64(g.n) }
func (g *gonum128) Forward(dst, src []complex128) { g.fft.Coefficients(dst[:g.n], src[:g.n]) }
func (g *gonum128) Inverse(dst, src []complex128) { g.fft.Sequence(dst[:g.n], src[:g.n]) }

type gonum64 struct {
	fft     *fourier.CmplxFFT
	n       int
	in, out []complex128
}

func (g *gonum64) Size() int      { return g.n }
func (g *gonum64) Scale() float64 { return float64(g.n) }

func (g *gonum64) Forward(dst, src []complex64) {
	g.run(dst, src, g.fft.Coefficients)
}

func (g *gonum64) Inverse(dst, src []complex64) {
	g.run(dst, src, g.fft.Sequence)
}

func (g *gonum64) run(dst, src []complex64, f func(dst, src []complex128) []complex128) {
	for i, v := range src[:g.n] {
		g.in[i] = complex128(v)
	}
	f(g.out, g.in)
	for i, v := range g.out {
		dst[i] = complex64(v)
	}
}
