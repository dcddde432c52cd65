package analysis

import (
	"promolift/domain/promo"
	"promolift/domain/stats"
	"promolift/internal/errors"
)

const (
	MethodShapiroWilk  = "shapiro-wilk"
	MethodLeveneMedian = "levene-median"
)

// CheckAssumptions runs Shapiro-Wilk on each group and a median-centred
// Levene test across both. BothNormal is true only when both normality
// p-values are defined and exceed Alpha.
func CheckAssumptions(a, b promo.Sample) stats.AssumptionResult {
	result := stats.AssumptionResult{
		NormalityA: checkNormality(a),
		NormalityB: checkNormality(b),
		Variance:   checkVariance(a, b),
	}
	result.BothNormal = result.NormalityA.Normal && result.NormalityB.Normal
	return result
}

func checkNormality(s promo.Sample) stats.NormalityTest {
	test := stats.NormalityTest{
		Group:  s.Label(),
		Method: MethodShapiroWilk,
		N:      s.Len(),
	}

	w, p, err := ShapiroWilk(s.Values())
	if err != nil {
		test.Statistic = undefinedFrom(err)
		test.PValue = undefinedFrom(err)
		return test
	}

	test.Statistic = stats.Defined(w)
	test.PValue = stats.Defined(p)
	test.Normal = p > stats.Alpha
	return test
}

func checkVariance(a, b promo.Sample) stats.VarianceTest {
	test := stats.VarianceTest{Method: MethodLeveneMedian}

	w, p, err := LeveneMedian(a.Values(), b.Values())
	if err != nil {
		test.Statistic = undefinedFrom(err)
		test.PValue = undefinedFrom(err)
		return test
	}

	test.Statistic = stats.Defined(w)
	test.PValue = stats.Defined(p)
	test.Equal = p > stats.Alpha
	return test
}

// undefinedFrom converts an analysis error into an undefined estimate
func undefinedFrom(err error) stats.Estimate {
	return stats.NotComputed(errors.GetCode(err), err.Error())
}
