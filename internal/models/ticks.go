package models

import "math"

// TicksPerSecond is the media server's time resolution (one tick = 100ns)
const TicksPerSecond = 10_000_000

// SecondsToTicks converts a UI-side offset in seconds to server ticks
func SecondsToTicks(seconds float64) int64 {
	return int64(math.Round(seconds * TicksPerSecond))
}

// TicksToSeconds converts server ticks to a UI-side offset in seconds
func TicksToSeconds(ticks int64) float64 {
	return float64(ticks) / TicksPerSecond
}
