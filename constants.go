package audiodsp

// Channel constants
const (
	monoChannels   = 1
	stereoChannels = 2
	maxChannels    = 2 // frames are mono or interleaved stereo
)

// Resampling ratio limits
const (
	maxRatioFactor = 256 // out/in within [1/256, 256]
)

// Buffer constants
const (
	maxBlockFrames = 1 << 16
	drainChunk     = 4096 // frames moved per call by the one-shot helpers
)

// Quality preset parameters
const (
	maxHalfbandStages = 8

	// Quick
	quickHalfbandStages = 1
	quickHalfbandOrder  = 4
	quickTapsPerPhase   = 8
	quickCutoff         = 0.85
	quickAttenuation    = 60.0

	// Low
	lowHalfbandStages = 2
	lowHalfbandOrder  = 8
	lowTapsPerPhase   = 16
	lowCutoff         = 0.88
	lowAttenuation    = 80.0

	// Medium
	mediumHalfbandStages = 4
	mediumHalfbandOrder  = 12
	mediumTapsPerPhase   = 24
	mediumCutoff         = 0.90
	mediumAttenuation    = 100.0

	// High: FFT half-band length follows from the attenuation.
	highTapsPerPhase = 32
	highCutoff       = 0.91
	highAttenuation  = 120.0

	// Very high
	veryHighTapsPerPhase = 48
	veryHighCutoff       = 0.92
	veryHighAttenuation  = 140.0
)
