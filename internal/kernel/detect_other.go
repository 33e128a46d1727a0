//go:build !amd64 && !arm64

package kernel

import "runtime"

func detectFeatures() Features {
	return Features{Architecture: runtime.GOARCH}
}
