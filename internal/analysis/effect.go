package analysis

import (
	"math"

	"promolift/domain/promo"
	"promolift/domain/stats"
	"promolift/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// Cohen's d class boundaries; each boundary belongs to the lower class
const (
	mediumEffectAbove = 0.5
	largeEffectAbove  = 0.8
)

// ClassifyMagnitude buckets |d| into small, medium or large
func ClassifyMagnitude(d float64) stats.Magnitude {
	abs := math.Abs(d)
	switch {
	case abs > largeEffectAbove:
		return stats.MagnitudeLarge
	case abs > mediumEffectAbove:
		return stats.MagnitudeMedium
	default:
		return stats.MagnitudeSmall
	}
}

// ComputeEffectSize returns Cohen's d for group A minus group B, using the
// pooled standard deviation sqrt(((n1-1)v1 + (n2-1)v2) / (n1+n2-2)).
func ComputeEffectSize(a, b promo.Sample) stats.EffectSize {
	var effect stats.EffectSize
	n1, n2 := a.Len(), b.Len()

	var v1, v2 float64
	if n1 > 0 {
		effect.MeanA, v1 = stat.MeanVariance(a.Values(), nil)
	}
	if n2 > 0 {
		effect.MeanB, v2 = stat.MeanVariance(b.Values(), nil)
	}
	if n1 > 0 && n2 > 0 {
		effect.Difference = effect.MeanA - effect.MeanB
	}

	if n1 < 2 || n2 < 2 {
		effect.Undefined = &stats.Undefined{
			Code:   errors.CodeInsufficientData,
			Reason: "effect size needs at least 2 observations per group",
		}
		return effect
	}

	pooledVar := (float64(n1-1)*v1 + float64(n2-1)*v2) / float64(n1+n2-2)
	if pooledVar <= 0 || math.IsNaN(pooledVar) {
		effect.Undefined = &stats.Undefined{
			Code:   errors.CodeDegenerateInput,
			Reason: "pooled variance is zero",
		}
		return effect
	}

	effect.PooledSD = math.Sqrt(pooledVar)
	effect.D = effect.Difference / effect.PooledSD
	effect.Magnitude = ClassifyMagnitude(effect.D)
	return effect
}
