//go:build amd64

package kernel

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

func detectFeatures() Features {
	return Features{
		HasAVX2:      cpu.X86.HasAVX2,
		HasFMA:       cpu.X86.HasFMA,
		Architecture: runtime.GOARCH,
	}
}
