package pipeline

const (
	// maxPhases bounds the interpolation factor of the polyphase stage.
	maxPhases = 4096

	// maxHalfbandStages bounds the 2x stages of one plan.
	maxHalfbandStages = 8
)

// Defaults for zero Params fields.
const (
	defaultHalfbandOrder = 12
	defaultTapsPerPhase  = 24
	defaultCutoff        = 0.9
	defaultAttenuation   = 100.0
	defaultBlockFrames   = 1024
)
