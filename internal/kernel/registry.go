package kernel

import (
	"fmt"
	"sort"
	"sync"
)

// Variant names.
const (
	VariantGeneric  = "generic"
	VariantUnrolled = "unrolled"
	VariantSIMD     = "simd"
)

// Info describes a registered variant.
type Info struct {
	Name      string
	Priority  int
	Level     SIMDLevel
	Supported bool
}

type variant struct {
	name     string
	priority int
	levels   []SIMDLevel // any one suffices
	f32      impl[float32]
	f64      impl[float64]
}

func (v *variant) supported(f Features) bool {
	for _, l := range v.levels {
		if Supports(f, l) {
			return true
		}
	}
	return false
}

var (
	variants = []*variant{
		{
			name: VariantGeneric, priority: 0, levels: []SIMDLevel{SIMDNone},
			f32: impl[float32]{convolveGeneric[float32], halfbandGeneric[float32], dualCopyGeneric[float32]},
			f64: impl[float64]{convolveGeneric[float64], halfbandGeneric[float64], dualCopyGeneric[float64]},
		},
		{
			name: VariantUnrolled, priority: 10, levels: []SIMDLevel{SIMDNone},
			f32: impl[float32]{convolveUnrolled[float32], halfbandUnrolled[float32], dualCopyUnrolled[float32]},
			f64: impl[float64]{convolveUnrolled[float64], halfbandUnrolled[float64], dualCopyUnrolled[float64]},
		},
		{
			name: VariantSIMD, priority: 20, levels: []SIMDLevel{SIMDAVX2, SIMDNEON},
			f32: simdImpl[float32](),
			f64: simdImpl[float64](),
		},
	}

	bestMu   sync.Mutex
	bestOnce sync.Once
	best     *variant
)

func resetBest() {
	bestMu.Lock()
	bestOnce = sync.Once{}
	best = nil
	bestMu.Unlock()
}

func bestVariant() *variant {
	bestMu.Lock()
	defer bestMu.Unlock()
	bestOnce.Do(func() {
		f := DetectFeatures()
		for _, v := range variants {
			if !v.supported(f) {
				continue
			}
			// Higher priority wins, and ForceGeneric leaves only the
			// scalar reference eligible.
			if f.ForceGeneric && v.name != VariantGeneric {
				continue
			}
			if best == nil || v.priority > best.priority {
				best = v
			}
		}
	})
	return best
}

func resolve[F Float](v *variant) Kernel[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		return any(v.f32.resolve(v.name)).(Kernel[F])
	default:
		return any(v.f64.resolve(v.name)).(Kernel[F])
	}
}

// Best returns the highest priority variant the CPU supports.
func Best[F Float]() Kernel[F] {
	return resolve[F](bestVariant())
}

// Lookup returns the named variant, or Best for an empty name.
func Lookup[F Float](name string) (Kernel[F], error) {
	if name == "" {
		return Best[F](), nil
	}
	for _, v := range variants {
		if v.name != name {
			continue
		}
		if !v.supported(DetectFeatures()) {
			return Kernel[F]{}, fmt.Errorf("%w: %s", ErrUnsupportedVariant, name)
		}
		return resolve[F](v), nil
	}
	return Kernel[F]{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// Supported returns every variant usable on this CPU, highest priority first.
func Supported[F Float]() []Kernel[F] {
	f := DetectFeatures()
	var out []*variant
	for _, v := range variants {
		if v.supported(f) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].priority > out[j].priority })
	ks := make([]Kernel[F], len(out))
	for i, v := range out {
		ks[i] = resolve[F](v)
	}
	return ks
}

// Variants lists all registered variants.
func Variants() []Info {
	f := DetectFeatures()
	infos := make([]Info, 0, len(variants))
	for _, v := range variants {
		infos = append(infos, Info{
			Name:      v.name,
			Priority:  v.priority,
			Level:     v.levels[0],
			Supported: v.supported(f),
		})
	}
	return infos
}
