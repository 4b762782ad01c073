// Package scoring holds the pure scoring functions of the engine
// confidence from weighted cross-tenant support, time risk from days to expiry,
// and the level label shown to stores
package scoring

import (
	"math"
	"time"

	ptime "expiryai/internal/platform/time"
)

// Level is the human label derived from confidence
type Level string

const (
	LevelWeak      Level = "weak"
	LevelLikely    Level = "likely"
	LevelConfirmed Level = "confirmed"
)

// Level thresholds, inclusive lower bounds
const (
	ConfirmedAt = 0.85
	LikelyAt    = 0.65
)

// maxConfidence is the largest float64 below 1
var maxConfidence = math.Nextafter(1, 0)

// ConfidenceFromSupport maps weighted support to 1 - e^(-alpha*support)
// 0 when support or alpha is not positive; the result stays below 1 even where
// float64 would round it up
func ConfidenceFromSupport(support, alpha float64) float64 {
	if support <= 0 || alpha <= 0 || math.IsNaN(support) {
		return 0
	}
	c := -math.Expm1(-alpha * support)
	if c >= 1 {
		return maxConfidence
	}
	return c
}

// TimeRisk ramps linearly from 0 at horizonDays out to 1 on the expiry date
// expired batches are 1; a horizon of 0 or less only flags expired batches
func TimeRisk(expiry, today time.Time, horizonDays int) float64 {
	d := ptime.DaysBetween(today, expiry)
	if d <= 0 {
		return 1
	}
	if d >= horizonDays {
		return 0
	}
	return float64(horizonDays-d) / float64(horizonDays)
}

// Risk is confidence weighted by time risk
func Risk(confidence, timeRisk float64) float64 { return confidence * timeRisk }

// LevelFromConfidence buckets confidence into weak, likely and confirmed
func LevelFromConfidence(c float64) Level {
	switch {
	case c >= ConfirmedAt:
		return LevelConfirmed
	case c >= LikelyAt:
		return LevelLikely
	default:
		return LevelWeak
	}
}

// Valid reports whether l is one of the known levels
func (l Level) Valid() bool {
	return l == LevelWeak || l == LevelLikely || l == LevelConfirmed
}
