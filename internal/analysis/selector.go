package analysis

import (
	stderrors "errors"
	"math"

	"promolift/domain/promo"
	"promolift/domain/stats"
	"promolift/internal/errors"

	moremath "github.com/aclements/go-moremath/stats"
)

const (
	MethodStudentT     = "student-t"
	MethodMannWhitneyU = "mann-whitney-u"
)

// ChooseTestKind applies the decision rule: a pooled-variance t-test only
// when both groups pass normality and the variance test passes. Any failed
// or undefined assumption falls back to the rank-sum test.
func ChooseTestKind(ar stats.AssumptionResult) stats.TestKind {
	if ar.BothNormal && ar.Variance.Equal {
		return stats.TestParametric
	}
	return stats.TestNonParametric
}

// SelectTest runs the test chosen from the assumption checks, two-sided
func SelectTest(a, b promo.Sample, ar stats.AssumptionResult) stats.TestResult {
	result := stats.TestResult{
		Kind:  ChooseTestKind(ar),
		Alpha: stats.Alpha,
		N1:    a.Len(),
		N2:    b.Len(),
	}
	result.Method = methodFor(result.Kind)

	if a.Len() < 2 || b.Len() < 2 {
		result.Undefined = &stats.Undefined{
			Code:   errors.CodeInsufficientData,
			Reason: "test undefined: insufficient data",
		}
		return result
	}

	if constant(a.Values(), b.Values()) {
		result.Undefined = &stats.Undefined{
			Code:   errors.CodeDegenerateInput,
			Reason: "test undefined: all values are identical",
		}
		return result
	}

	var statistic, p float64
	var err error
	if result.Kind == stats.TestParametric {
		statistic, p, err = studentT(a.Values(), b.Values())
	} else {
		statistic, p, err = mannWhitneyU(a.Values(), b.Values())
	}
	if err != nil {
		result.Undefined = &stats.Undefined{Code: errors.GetCode(err), Reason: err.Error()}
		return result
	}

	result.Statistic = statistic
	result.PValue = p
	result.Significant = p < stats.Alpha
	return result
}

// constant reports whether every value in both samples is the same
func constant(a, b []float64) bool {
	first := a[0]
	for _, v := range a {
		if v != first {
			return false
		}
	}
	for _, v := range b {
		if v != first {
			return false
		}
	}
	return true
}

func methodFor(kind stats.TestKind) string {
	if kind == stats.TestParametric {
		return MethodStudentT
	}
	return MethodMannWhitneyU
}

func studentT(a, b []float64) (float64, float64, error) {
	res, err := moremath.TwoSampleTTest(&moremath.Sample{Xs: a}, &moremath.Sample{Xs: b}, moremath.LocationDiffers)
	if err != nil {
		return 0, 0, classifyTestError(err)
	}
	if math.IsNaN(res.T) || math.IsNaN(res.P) {
		return 0, 0, errors.DegenerateInput("t statistic is undefined")
	}
	return res.T, res.P, nil
}

func mannWhitneyU(a, b []float64) (float64, float64, error) {
	res, err := moremath.MannWhitneyUTest(a, b, moremath.LocationDiffers)
	if err != nil {
		return 0, 0, classifyTestError(err)
	}
	if math.IsNaN(res.P) {
		return 0, 0, errors.DegenerateInput("rank-sum p-value is undefined")
	}
	return res.U, res.P, nil
}

func classifyTestError(err error) error {
	switch {
	case stderrors.Is(err, moremath.ErrSampleSize):
		return errors.WithCode(errors.CodeInsufficientData, err)
	case stderrors.Is(err, moremath.ErrZeroVariance), stderrors.Is(err, moremath.ErrSamplesEqual):
		return errors.WithCode(errors.CodeDegenerateInput, err)
	}
	return errors.Wrap(err, "two-sample test failed")
}
