package preptime

import (
	"math"
	"time"
)

const (
	// SampleWindow is how far back completed orders count as evidence of
	// current kitchen throughput.
	SampleWindow = time.Hour

	minSamples              = 3
	fallbackFloorMinutes    = 10
	fallbackPerOrderMinutes = 5
)

// Sample is one completed order's telemetry.
type Sample struct {
	CreatedAt   time.Time
	CompletedAt time.Time
}

// Minutes returns the elapsed kitchen time for the sample.
func (s Sample) Minutes() float64 {
	return s.CompletedAt.Sub(s.CreatedAt).Minutes()
}

// Estimate returns the establishment's current average preparation time in
// minutes. With at least three samples from the trailing window it returns
// the rounded empirical mean; otherwise it falls back to a queue-depth
// heuristic that grows with backlog and never drops below ten minutes.
//
// The function is pure over its snapshot inputs so estimates are reproducible
// in tests and carry no hidden dependency on call time.
func Estimate(samples []Sample, queueDepth int) int {
	if len(samples) >= minSamples {
		total := 0.0
		for _, sample := range samples {
			total += sample.Minutes()
		}
		return int(math.Round(total / float64(len(samples))))
	}

	estimate := queueDepth * fallbackPerOrderMinutes
	if estimate < fallbackFloorMinutes {
		estimate = fallbackFloorMinutes
	}
	return estimate
}
