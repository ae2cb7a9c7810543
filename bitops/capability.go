package bitops

import (
	"os"
	"strings"
)

// Strategy identifies a counting-kernel implementation.
type Strategy uint8

const (
	// Portable is the pure software implementation.
	Portable Strategy = iota
	// Hardware uses the CPU's bit-counting instructions.
	Hardware
)

// String returns the string representation of a Strategy.
func (s Strategy) String() string {
	switch s {
	case Portable:
		return "portable"
	case Hardware:
		return "hardware"
	default:
		return "unknown"
	}
}

// ParseStrategy parses a string into a Strategy value.
func ParseStrategy(s string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portable":
		return Portable, true
	case "hardware":
		return Hardware, true
	default:
		return Portable, false
	}
}

// Package-level state - initialized once at package init.
// No mutex needed: Go guarantees init() runs before any other code.
var (
	// activeStrategy is the selected kernel implementation.
	activeStrategy Strategy

	// hasOverride is true if BITMEM_KERNELS was set.
	hasOverride bool

	// CPU feature flags (set by platform-specific init)
	hasPopcnt bool // x86-64 POPCNT (implies LZCNT-era counting support)
	hasASIMD  bool // ARM64 NEON; CLZ/CNT are baseline with it
)

// initCapabilities is called from platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	if override := os.Getenv("BITMEM_KERNELS"); override != "" {
		if s, ok := ParseStrategy(override); ok {
			hasOverride = true
			if isStrategyAvailable(s) {
				applyStrategy(s)
				return
			}
			// Invalid override - fall through to auto-detection
		}
	}

	applyStrategy(selectBestStrategy())
}

// isStrategyAvailable checks if a strategy is supported on this CPU.
func isStrategyAvailable(s Strategy) bool {
	switch s {
	case Portable:
		return true
	case Hardware:
		return hasPopcnt || hasASIMD
	default:
		return false
	}
}

// selectBestStrategy chooses the optimal kernels for the current CPU.
func selectBestStrategy() Strategy {
	if hasPopcnt || hasASIMD {
		return Hardware
	}
	return Portable
}

func applyStrategy(s Strategy) {
	activeStrategy = s
	switch s {
	case Hardware:
		kernelPopcount = popcountHardware
		kernelLeadingZeros = leadingZerosHardware
		kernelTrailingZeros = trailingZerosHardware
		kernelPopcountWords = popcountWordsHardware
	default:
		kernelPopcount = popcountPortable
		kernelLeadingZeros = leadingZerosPortable
		kernelTrailingZeros = trailingZerosPortable
		kernelPopcountWords = popcountWordsPortable
	}
}

// ActiveStrategy returns the currently active kernel strategy.
func ActiveStrategy() Strategy {
	return activeStrategy
}

// IsOverridden returns true if BITMEM_KERNELS was set.
func IsOverridden() bool {
	return hasOverride
}

// HasPopcnt returns true if x86-64 POPCNT is available.
func HasPopcnt() bool {
	return hasPopcnt
}

// HasASIMD returns true if ARM64 NEON is available.
func HasASIMD() bool {
	return hasASIMD
}
