package analysis

import (
	"testing"

	"promolift/domain/stats"
	"promolift/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseTestKind(t *testing.T) {
	tests := []struct {
		name       string
		bothNormal bool
		equalVar   bool
		want       stats.TestKind
	}{
		{"all assumptions hold", true, true, stats.TestParametric},
		{"unequal variances", true, false, stats.TestNonParametric},
		{"non-normal group", false, true, stats.TestNonParametric},
		{"nothing holds", false, false, stats.TestNonParametric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ar := stats.AssumptionResult{
				BothNormal: tt.bothNormal,
				Variance:   stats.VarianceTest{Equal: tt.equalVar},
			}
			assert.Equal(t, tt.want, ChooseTestKind(ar))
		})
	}
}

func TestSelectTest_Parametric(t *testing.T) {
	a := sample("1", 5.1, 4.9, 5.6, 5.8, 6.0, 5.3, 4.7, 5.5)
	b := sample("2", 6.8, 7.1, 6.5, 7.4, 6.9, 7.7, 6.6, 7.2)
	ar := stats.AssumptionResult{BothNormal: true, Variance: stats.VarianceTest{Equal: true}}

	result := SelectTest(a, b, ar)

	require.Nil(t, result.Undefined)
	assert.Equal(t, stats.TestParametric, result.Kind)
	assert.Equal(t, MethodStudentT, result.Method)
	assert.Less(t, result.Statistic, 0.0)
	assert.Less(t, result.PValue, 0.001)
	assert.True(t, result.Significant)
	assert.Equal(t, stats.Alpha, result.Alpha)
	assert.Equal(t, 8, result.N1)
	assert.Equal(t, 8, result.N2)
}

func TestSelectTest_NonParametric(t *testing.T) {
	a := sample("1", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	b := sample("2", 2.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5, 9.5, 10.5, 11.5)

	result := SelectTest(a, b, stats.AssumptionResult{})

	require.Nil(t, result.Undefined)
	assert.Equal(t, stats.TestNonParametric, result.Kind)
	assert.Equal(t, MethodMannWhitneyU, result.Method)
	assert.Greater(t, result.PValue, stats.Alpha)
	assert.False(t, result.Significant)
}

func TestSelectTest_IsDeterministic(t *testing.T) {
	a := sample("1", normalQuantiles(25)...)
	b := sample("2", exponentialQuantiles(30)...)
	ar := CheckAssumptions(a, b)

	first := SelectTest(a, b, ar)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, SelectTest(a, b, CheckAssumptions(a, b)))
	}
}

func TestSelectTest_SignificanceMatchesAlpha(t *testing.T) {
	a := sample("1", normalQuantiles(30)...)
	b := sample("2", exponentialQuantiles(30)...)
	result := SelectTest(a, b, CheckAssumptions(a, b))

	require.Nil(t, result.Undefined)
	assert.Equal(t, result.PValue < stats.Alpha, result.Significant)
}

func TestSelectTest_Undefined(t *testing.T) {
	t.Run("single observation", func(t *testing.T) {
		result := SelectTest(sample("1", 4), sample("2", 1, 2, 3), stats.AssumptionResult{})
		require.NotNil(t, result.Undefined)
		assert.Equal(t, errors.CodeInsufficientData, result.Undefined.Code)
		assert.Equal(t, "test undefined: insufficient data", result.Undefined.Reason)
		assert.Equal(t, stats.TestNonParametric, result.Kind)
		assert.False(t, result.Significant)
	})

	t.Run("identical values", func(t *testing.T) {
		result := SelectTest(sample("1", 3, 3, 3), sample("2", 3, 3), stats.AssumptionResult{})
		require.NotNil(t, result.Undefined)
		assert.Equal(t, errors.CodeDegenerateInput, result.Undefined.Code)
		assert.False(t, result.Significant)
	})
}
