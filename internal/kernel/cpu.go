package kernel

import (
	"sync"

	simdcpu "github.com/tphakala/simd/cpu"
)

// SIMDLevel is the vector instruction tier a variant needs.
type SIMDLevel int

const (
	// SIMDNone needs nothing beyond portable Go.
	SIMDNone SIMDLevel = iota
	// SIMDAVX2 needs x86-64 AVX2 with FMA.
	SIMDAVX2
	// SIMDNEON needs ARM64 Advanced SIMD.
	SIMDNEON
)

func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "none"
	case SIMDAVX2:
		return "avx2"
	case SIMDNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// Features describes the CPU capabilities relevant to variant selection.
type Features struct {
	HasAVX2 bool
	HasFMA  bool
	HasNEON bool

	// ForceGeneric restricts selection to SIMDNone variants.
	ForceGeneric bool

	Architecture string
}

var (
	detectMu       sync.Mutex
	detectOnce     sync.Once
	detected       Features
	forcedFeatures *Features
)

// DetectFeatures returns the cached CPU features, detecting them on first use.
func DetectFeatures() Features {
	detectMu.Lock()
	defer detectMu.Unlock()
	if forcedFeatures != nil {
		return *forcedFeatures
	}
	detectOnce.Do(func() { detected = detectFeatures() })
	return detected
}

// SetForcedFeatures overrides detection. Intended for tests.
func SetForcedFeatures(f Features) {
	detectMu.Lock()
	forcedFeatures = &f
	detectMu.Unlock()
	resetBest()
}

// ResetDetection drops forced features and cached results.
func ResetDetection() {
	detectMu.Lock()
	forcedFeatures = nil
	detectOnce = sync.Once{}
	detected = Features{}
	detectMu.Unlock()
	resetBest()
}

// Supports reports whether f can run code built for level.
func Supports(f Features, level SIMDLevel) bool {
	if f.ForceGeneric {
		return level == SIMDNone
	}
	switch level {
	case SIMDNone:
		return true
	case SIMDAVX2:
		return f.HasAVX2 && f.HasFMA
	case SIMDNEON:
		return f.HasNEON
	default:
		return false
	}
}

// CPUSummary describes the vector unit as reported by the simd library.
func CPUSummary() string {
	return simdcpu.Info()
}
