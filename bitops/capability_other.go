//go:build !amd64 && !arm64

package bitops

func init() {
	initCapabilities()
}
