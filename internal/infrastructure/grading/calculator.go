// Package grading computes final grades. The default calculator implements
// the weighted formula in Go; an optional shared-object plugin can replace
// the computation at runtime, with the Go implementation as fallback.
package grading

// Weights of the final-grade formula.
const (
	WeightNP1        = 0.35
	WeightNP2        = 0.35
	WeightActivities = 0.30
)

// Calculator produces a final grade from the two exam scores and the
// assignments average. Implementations must be safe for concurrent use.
type Calculator interface {
	ComputeFinal(np1, np2, activityAvg float64) float64
}

// WeightedCalculator is the built-in weighted-sum calculator.
type WeightedCalculator struct{}

// ComputeFinal applies the standard weights.
func (WeightedCalculator) ComputeFinal(np1, np2, activityAvg float64) float64 {
	return np1*WeightNP1 + np2*WeightNP2 + activityAvg*WeightActivities
}
