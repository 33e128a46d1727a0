// Package fft defines the transform capability the block-based resampling
// stages consume, and ships a gonum-backed implementation.
//
// A Backend is probed once with IsSupported and then asked for fixed-size
// transforms. Transforms may be unnormalized: Forward followed by Inverse
// multiplies a block by Scale(), which callers divide out once per round
// trip.
package fft

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when a backend cannot provide a transform
	// of the requested precision or size.
	ErrUnsupported = errors.New("fft: unsupported configuration")

	// ErrInvalidSize is returned for non-positive transform sizes.
	ErrInvalidSize = errors.New("fft: invalid transform size")
)

// Precision selects the complex element type of a transform.
type Precision int

const (
	// Single uses complex64 buffers.
	Single Precision = iota
	// Double uses complex128 buffers.
	Double
)

func (p Precision) String() string {
	switch p {
	case Single:
		return "single"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("Precision(%d)", int(p))
	}
}

// Complex is the element type constraint for transforms.
type Complex interface {
	complex64 | complex128
}

// Transform is a fixed-size complex DFT.
type Transform[C Complex] interface {
	// Size returns the transform length.
	Size() int

	// Forward writes the spectrum of src into dst:
	// dst[k] = sum_n src[n] exp(-2 pi i k n / N).
	Forward(dst, src []C)

	// Inverse writes the sequence of spectrum src into dst:
	// dst[n] = sum_k src[k] exp(2 pi i k n / N), possibly scaled.
	Inverse(dst, src []C)

	// Scale is the factor a Forward/Inverse round trip multiplies by.
	Scale() float64
}

// Backend creates transforms.
type Backend interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// IsSupported reports whether transforms of precision p are available.
	IsSupported(p Precision) bool

	// Setup64 creates a complex64 transform of the given size.
	Setup64(size int) (Transform[complex64], error)

	// Setup128 creates a complex128 transform of the given size.
	Setup128(size int) (Transform[complex128], error)
}

// PrecisionOf returns the precision matching C.
func PrecisionOf[C Complex]() Precision {
	var zero C
	if _, ok := any(zero).(complex64); ok {
		return Single
	}
	return Double
}

// Setup probes b and returns a transform of element type C.
func Setup[C Complex](b Backend, size int) (Transform[C], error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	p := PrecisionOf[C]()
	if !b.IsSupported(p) {
		return nil, fmt.Errorf("%w: backend %s has no %s precision transform", ErrUnsupported, b.Name(), p)
	}
	var (
		t   any
		err error
	)
	if p == Single {
		t, err = b.Setup64(size)
	} else {
		t, err = b.Setup128(size)
	}
	if err != nil {
		return nil, err
	}
	return t.(Transform[C]), nil
}

// Default returns the backend used when none is configured.
func Default() Backend {
	return Gonum{}
}
