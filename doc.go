// Package audiodsp provides real-time sample rate conversion for interleaved
// mono and stereo audio in pure Go.
//
// # Features
//
//   - Streaming push/pull API with explicit headroom, no hidden allocation
//     while processing
//   - Half-band 2x stages in the time domain or by FFT block convolution
//   - Rational L/M polyphase stage for any remaining fraction
//   - Zero-phase alignment: output frame j represents input time j*M/L
//   - float32 and float64 samples through one generic API
//   - Convolution kernels selected at runtime (generic, unrolled, SIMD via
//     github.com/tphakala/simd)
//
// # Quick Start
//
// For one-shot resampling:
//
//	output, err := audiodsp.ResampleMono(input, 44100, 48000, audiodsp.QualityHigh)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming:
//
//	r, err := audiodsp.New[float32](&audiodsp.Config{
//	    InputRate:  44100,
//	    OutputRate: 48000,
//	    Channels:   2,
//	    Quality:    audiodsp.QualitySpec{Preset: audiodsp.QualityMedium},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for chunk := range chunks {
//	    for len(chunk) > 0 {
//	        n := min(len(chunk)/2, r.NumCanPut())
//	        _ = r.PutN(chunk, n)
//	        chunk = chunk[2*n:]
//	        out := make([]float32, 2*r.NumCanGet())
//	        _ = r.GetN(out, len(out)/2)
//	        write(out)
//	    }
//	}
//	_ = r.Flush()
//	// read the remaining NumCanGet frames
//
// After Flush the total output for n input frames is floor((n-1)*L/M)+1,
// where L/M is OutputRate/InputRate in lowest terms (0 for n = 0).
//
// # Quality Presets
//
//   - [QualityQuick]: one short half-band stage, 8 taps per phase, 60 dB.
//   - [QualityLow]: up to two half-band stages, 80 dB.
//   - [QualityMedium]: up to four half-band stages, 100 dB.
//   - [QualityHigh]: FFT half-band stages in single precision, 120 dB.
//   - [QualityVeryHigh]: FFT half-band stages in double precision, 140 dB.
//
// Individual parameters can be overridden through [QualitySpec], or set
// outright with [QualityCustom].
//
// # Architecture
//
// The ratio is reduced to L/M. Factors of two are peeled off as half-band
// stages, and any remainder runs through one polyphase stage:
//
//	192000 -> 44100:  halfband-down -> halfband-down -> polyphase(147/160)
//	 44100 -> 96000:  halfband-up -> polyphase(160/147)
//	 48000 -> 96000:  halfband-up
//
// # Errors
//
// Construction fails with [ErrInvalidConfig] for out-of-range parameters and
// [ErrNotSupported] for valid requests this build or CPU cannot serve.
// Streaming calls fail with [ErrPrecondition] when they exceed the advertised
// headroom and [ErrInvalidState] when writing after Flush.
//
// # Thread Safety
//
// A [Resampler] is owned by one goroutine at a time. Independent instances
// share only immutable tables and may run concurrently.
package audiodsp
