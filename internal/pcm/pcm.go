// Package pcm converts between go-audio integer PCM buffers and the
// normalized float frames the resampler works on.
//
// Conversion is elementwise and stateless: integers are divided by the full
// scale of their bit depth, and floats are clamped to [-1, 1] before being
// scaled back and rounded.
package pcm

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-audio/audio"

	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

const defaultBitDepth = 16

// Full scale per supported bit depth.
const (
	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

var (
	// ErrNoFormat is returned for a buffer without a format.
	ErrNoFormat = errors.New("pcm: buffer has no format")

	// ErrBitDepth is returned for bit depths other than 8, 16, 24 and 32.
	ErrBitDepth = errors.New("pcm: unsupported bit depth")
)

// FullScale returns the largest positive sample value of a signed bit depth.
// Zero selects 16 bits.
func FullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8:
		return maxInt8, nil
	case 0, 16:
		return maxInt16, nil
	case 24:
		return maxInt24, nil
	case 32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
}

// Channels returns the frame width of buf.
func Channels(buf *audio.IntBuffer) (int, error) {
	if buf == nil || buf.Format == nil {
		return 0, ErrNoFormat
	}
	return buf.Format.NumChannels, nil
}

// ToFloat writes the samples of buf into dst, normalized to [-1, 1], and
// returns how many it wrote. dst must hold len(buf.Data) samples.
func ToFloat[F simdops.Float](dst []F, buf *audio.IntBuffer) (int, error) {
	if buf == nil || buf.Format == nil {
		return 0, ErrNoFormat
	}
	scale, err := FullScale(buf.SourceBitDepth)
	if err != nil {
		return 0, err
	}
	if len(dst) < len(buf.Data) {
		return 0, fmt.Errorf("pcm: destination holds %d of %d samples", len(dst), len(buf.Data))
	}
	inv := 1 / scale
	for i, v := range buf.Data {
		dst[i] = F(float64(v) * inv)
	}
	return len(buf.Data), nil
}

// FromFloat replaces the samples of buf with src, clamped and scaled to
// the buffer's bit depth.
func FromFloat[F simdops.Float](buf *audio.IntBuffer, src []F) error {
	if buf == nil || buf.Format == nil {
		return ErrNoFormat
	}
	scale, err := FullScale(buf.SourceBitDepth)
	if err != nil {
		return err
	}
	if cap(buf.Data) < len(src) {
		buf.Data = make([]int, len(src))
	}
	buf.Data = buf.Data[:len(src)]
	for i, v := range src {
		s := math.Max(-1, math.Min(1, float64(v)))
		buf.Data[i] = int(math.Round(s * scale))
	}
	return nil
}
