package audiodsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{InputRate: 44100, OutputRate: 48000, Channels: 2}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero input rate", func(c *Config) { c.InputRate = 0 }},
		{"negative output rate", func(c *Config) { c.OutputRate = -48000 }},
		{"no channels", func(c *Config) { c.Channels = 0 }},
		{"three channels", func(c *Config) { c.Channels = 3 }},
		{"ratio too high", func(c *Config) { c.InputRate, c.OutputRate = 100, 25700 }},
		{"ratio too low", func(c *Config) { c.InputRate, c.OutputRate = 25700, 100 }},
		{"negative block", func(c *Config) { c.BlockFrames = -1 }},
		{"huge block", func(c *Config) { c.BlockFrames = maxBlockFrames + 1 }},
		{"unknown preset", func(c *Config) { c.Quality.Preset = QualityCustom + 1 }},
		{"too many half-band stages", func(c *Config) { c.Quality.MaxHalfbandStages = 9 }},
		{"unknown half-band mode", func(c *Config) { c.Quality.Halfband = HalfbandFFTDouble + 1 }},
		{"negative taps", func(c *Config) { c.Quality.TapsPerPhase = -4 }},
		{"cutoff above one", func(c *Config) { c.Quality.Cutoff = 1.5 }},
		{"negative attenuation", func(c *Config) { c.Quality.Attenuation = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.modify(&c)
			require.ErrorIs(t, c.Validate(), ErrInvalidConfig)
			_, err := New[float32](&c)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfig_RatioBounds(t *testing.T) {
	for _, c := range []Config{
		{InputRate: 100, OutputRate: 25600, Channels: 1},
		{InputRate: 25600, OutputRate: 100, Channels: 1},
	} {
		assert.NoError(t, c.Validate(), "%d -> %d", c.InputRate, c.OutputRate)
	}
}

func TestGetPresetSpec(t *testing.T) {
	tests := []struct {
		preset   QualityPreset
		stages   int
		mode     HalfbandMode
		taps     int
		atten    float64
		hasOrder bool
	}{
		{QualityQuick, 1, HalfbandTimeDomain, 8, 60, true},
		{QualityLow, 2, HalfbandTimeDomain, 16, 80, true},
		{QualityMedium, 4, HalfbandTimeDomain, 24, 100, true},
		{QualityHigh, 8, HalfbandFFTSingle, 32, 120, false},
		{QualityVeryHigh, 8, HalfbandFFTDouble, 48, 140, false},
	}
	for _, tt := range tests {
		t.Run(tt.preset.String(), func(t *testing.T) {
			q := GetPresetSpec(tt.preset)
			assert.Equal(t, tt.preset, q.Preset)
			assert.Equal(t, tt.stages, q.MaxHalfbandStages)
			assert.Equal(t, tt.mode, q.Halfband)
			assert.Equal(t, tt.taps, q.TapsPerPhase)
			assert.InDelta(t, tt.atten, q.Attenuation, 0)
			assert.Equal(t, tt.hasOrder, q.HalfbandOrder > 0)
			assert.NoError(t, q.Validate())
		})
	}

	assert.Equal(t, GetPresetSpec(QualityMedium), GetPresetSpec(QualityPreset(42)))
}

func TestQualitySpec_Resolve(t *testing.T) {
	q := QualitySpec{Preset: QualityLow, TapsPerPhase: 40, Halfband: HalfbandFFTDouble}.Resolve()
	assert.Equal(t, QualityLow, q.Preset)
	assert.Equal(t, 40, q.TapsPerPhase)
	assert.Equal(t, HalfbandFFTDouble, q.Halfband)
	assert.Equal(t, lowHalfbandStages, q.MaxHalfbandStages)
	assert.InDelta(t, lowAttenuation, q.Attenuation, 0)

	custom := QualitySpec{Preset: QualityCustom, TapsPerPhase: 12}
	assert.Equal(t, custom, custom.Resolve())
}

func TestQualityCustom_ZeroStagesUsesPolyphaseOnly(t *testing.T) {
	r, err := New[float64](&Config{
		InputRate: 48000, OutputRate: 96000, Channels: 1,
		Quality: QualitySpec{Preset: QualityCustom, TapsPerPhase: 16},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"polyphase(2/1, 16 taps)"}, r.Stages())
}

func TestQualityPreset_String(t *testing.T) {
	assert.Equal(t, "very-high", QualityVeryHigh.String())
	assert.Equal(t, "custom", QualityCustom.String())
	assert.Equal(t, "QualityPreset(9)", QualityPreset(9).String())
}
