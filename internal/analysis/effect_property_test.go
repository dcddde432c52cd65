package analysis

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func propertyParameters() *gopter.TestParameters {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	params.Rng.Seed(20240611)
	return params
}

// TestEffectSizeProperties checks Cohen's d under swapping and shifting
func TestEffectSizeProperties(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	// Property: swapping the groups negates d and keeps the magnitude class
	properties.Property("swap negates d", prop.ForAll(
		func(a, b []float64) bool {
			ab := ComputeEffectSize(sample("1", a...), sample("2", b...))
			ba := ComputeEffectSize(sample("2", b...), sample("1", a...))
			if ab.Undefined != nil || ba.Undefined != nil {
				return (ab.Undefined == nil) == (ba.Undefined == nil)
			}
			return math.Abs(ab.D+ba.D) < 1e-9 && ab.Magnitude == ba.Magnitude
		},
		gen.SliceOfN(12, gen.Float64Range(0, 200)),
		gen.SliceOfN(9, gen.Float64Range(0, 200)),
	))

	// Property: adding a constant to both groups leaves d unchanged
	properties.Property("shift invariance", prop.ForAll(
		func(a, b []float64, shift float64) bool {
			before := ComputeEffectSize(sample("1", a...), sample("2", b...))
			sa := make([]float64, len(a))
			sb := make([]float64, len(b))
			for i, v := range a {
				sa[i] = v + shift
			}
			for i, v := range b {
				sb[i] = v + shift
			}
			after := ComputeEffectSize(sample("1", sa...), sample("2", sb...))
			if before.Undefined != nil || after.Undefined != nil {
				return true
			}
			return math.Abs(before.D-after.D) < 1e-6
		},
		gen.SliceOfN(10, gen.Float64Range(0, 100)),
		gen.SliceOfN(10, gen.Float64Range(0, 100)),
		gen.Float64Range(-50, 50),
	))

	properties.TestingRun(t)
}
