package audiodsp

import (
	"fmt"

	"github.com/go-audio/audio"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-audio-dsp/internal/pcm"
	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes176 is the very high resolution 4x CD sample rate.
	RateHiRes176 = 176400

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is a common speech recognition sample rate.
	RateSpeech = 22050
)

// Process resamples a complete interleaved signal. It resets r, runs the
// whole input through it, flushes, and returns the rate-law output.
// r is left drained; call Reset before streaming into it again.
func (r *Resampler[F]) Process(input []F) ([]F, error) {
	ch := r.Channels()
	if len(input)%ch != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames", ErrInvalidConfig, len(input), ch)
	}
	r.Reset()

	frames := len(input) / ch
	l, m := r.Ratio()
	out := make([]F, 0, (frames*l/m+1)*ch)
	buf := make([]F, drainChunk*ch)

	drain := func() error {
		for {
			n := min(r.NumCanGet(), drainChunk)
			if n == 0 {
				return nil
			}
			if err := r.GetN(buf, n); err != nil {
				return err
			}
			out = append(out, buf[:n*ch]...)
		}
	}

	for pos := 0; pos < frames; {
		n := min(frames-pos, r.NumCanPut())
		if n == 0 {
			return nil, fmt.Errorf("%w: resampler accepts no input with %d frames pending", ErrInvalidState, frames-pos)
		}
		if err := r.PutN(input[pos*ch:], n); err != nil {
			return nil, err
		}
		pos += n
		if err := drain(); err != nil {
			return nil, err
		}
	}
	if err := r.Flush(); err != nil {
		return nil, err
	}
	if err := drain(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResampleFrames is a one-shot conversion of interleaved frames.
func ResampleFrames[F Float](input []F, inputRate, outputRate, channels int, quality QualityPreset) ([]F, error) {
	r, err := New[F](&Config{
		InputRate:  inputRate,
		OutputRate: outputRate,
		Channels:   channels,
		Quality:    QualitySpec{Preset: quality},
	})
	if err != nil {
		return nil, err
	}
	return r.Process(input)
}

// ResampleMono is a convenience function for one-shot mono resampling.
func ResampleMono[F Float](input []F, inputRate, outputRate int, quality QualityPreset) ([]F, error) {
	return ResampleFrames(input, inputRate, outputRate, monoChannels, quality)
}

// ResampleStereo is a convenience function for one-shot stereo resampling
// of planar channels. The shorter channel sets the frame count.
func ResampleStereo[F Float](left, right []F, inputRate, outputRate int, quality QualityPreset) (leftOut, rightOut []F, err error) {
	out, err := ResampleFrames(InterleaveToStereo(left, right), inputRate, outputRate, stereoChannels, quality)
	if err != nil {
		return nil, nil, err
	}
	leftOut, rightOut = DeinterleaveFromStereo(out)
	return leftOut, rightOut, nil
}

// ResampleMulti resamples any number of planar channels, each through its
// own mono resampler. Channels run concurrently, at most parallelism at a
// time (0 or less means one goroutine per channel).
func ResampleMulti[F Float](input [][]F, inputRate, outputRate int, quality QualityPreset, parallelism int) ([][]F, error) {
	output := make([][]F, len(input))

	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for ch := range input {
		g.Go(func() error {
			out, err := ResampleMono(input[ch], inputRate, outputRate, quality)
			if err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			output[ch] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return output, nil
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo[F Float](left, right []F) []F {
	n := min(len(left), len(right))
	result := make([]F, n*stereoChannels)
	simdops.Interleave(result, [][]F{left, right}, n)
	return result
}

// DeinterleaveFromStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveFromStereo[F Float](interleaved []F) (left, right []F) {
	n := len(interleaved) / stereoChannels
	left = make([]F, n)
	right = make([]F, n)
	simdops.Deinterleave([][]F{left, right}, interleaved, n)
	return left, right
}

// ResampleIntBuffer converts an integer PCM buffer to outputRate. The
// result keeps the channel count and bit depth of buf.
func ResampleIntBuffer(buf *audio.IntBuffer, outputRate int, quality QualityPreset) (*audio.IntBuffer, error) {
	channels, err := pcm.Channels(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if channels < 1 || channels > maxChannels {
		return nil, fmt.Errorf("%w: %d channels (max %d)", ErrInvalidConfig, channels, maxChannels)
	}
	samples := make([]float64, len(buf.Data))
	if _, err := pcm.ToFloat(samples, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	// Drop a trailing partial frame.
	samples = samples[:len(samples)/channels*channels]

	out, err := ResampleFrames(samples, buf.Format.SampleRate, outputRate, channels, quality)
	if err != nil {
		return nil, err
	}

	res := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: outputRate},
		SourceBitDepth: buf.SourceBitDepth,
		Data:           make([]int, len(out)),
	}
	if err := pcm.FromFloat(res, out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return res, nil
}
