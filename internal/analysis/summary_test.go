package analysis

import (
	"testing"

	"promolift/domain/promo"
	"promolift/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary_DescribesNumericColumns(t *testing.T) {
	summary := Summary(balancedTable(t))
	require.Len(t, summary, 3)

	sales := summary[0]
	assert.Equal(t, "SalesInThousands", sales.Column)
	assert.Equal(t, 8, sales.Count)
	assert.InDelta(t, 8.0, sales.Mean, 1e-12)
	assert.Equal(t, 4.0, sales.Min)
	assert.Equal(t, 12.0, sales.Max)
	assert.Equal(t, 8.0, sales.Median)
	assert.InDelta(t, 2.6186, sales.Std, 1e-4) // sqrt(48/7)
	assert.LessOrEqual(t, sales.Q25, sales.Median)
	assert.GreaterOrEqual(t, sales.Q75, sales.Median)

	assert.Equal(t, "AgeOfStore", summary[1].Column)
	assert.Equal(t, "week", summary[2].Column)
	assert.Equal(t, 1.0, summary[2].Min)
	assert.Equal(t, 2.0, summary[2].Max)
}

func TestSummary_QuartilesInterpolateLinearly(t *testing.T) {
	table := newTable(t,
		obs("1", 1, "Small", 1, 1), obs("1", 2, "Small", 1, 1),
		obs("2", 3, "Small", 1, 1), obs("2", 4, "Small", 1, 1),
	)

	sales := Summary(table)[0]
	assert.InDelta(t, 1.75, sales.Q25, 1e-12)
	assert.InDelta(t, 2.5, sales.Median, 1e-12)
	assert.InDelta(t, 3.25, sales.Q75, 1e-12)
}

func TestLinearPercentile(t *testing.T) {
	data := []float64{15, 20, 35, 40, 50}
	tests := []struct {
		percent float64
		want    float64
	}{
		{0, 15},
		{10, 17},
		{25, 20},
		{40, 29},
		{50, 35},
		{100, 50},
	}
	for _, tt := range tests {
		got, err := linearPercentile(data, tt.percent)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "percent %v", tt.percent)
	}

	_, err := linearPercentile(nil, 50)
	assert.Error(t, err)
	_, err = linearPercentile(data, 101)
	assert.Error(t, err)
	assert.Equal(t, []float64{15, 20, 35, 40, 50}, data)
}

func TestSummary_SingleRowHasZeroStd(t *testing.T) {
	table, err := promo.NewTable("1", "2", []promo.Observation{obs("1", 5, "Small", 1, 1)})
	require.NoError(t, err)

	summary := Summary(table)
	require.Len(t, summary, 3)
	assert.Equal(t, 0.0, summary[0].Std)
	assert.Equal(t, 5.0, summary[0].Mean)
	assert.Equal(t, 5.0, summary[0].Q25)
	assert.Equal(t, 5.0, summary[0].Q75)
}

func TestSummary_EmptyTable(t *testing.T) {
	table, err := promo.NewTable("1", "2", nil)
	require.NoError(t, err)
	assert.Empty(t, Summary(table))
}

func TestGroupCounts(t *testing.T) {
	table := newTable(t,
		obs("2", 1, "Small", 1, 1), obs("1", 2, "Small", 1, 1), obs("2", 3, "Small", 1, 1),
	)
	assert.Equal(t, []stats.GroupCount{{Group: "1", Count: 1}, {Group: "2", Count: 2}}, GroupCounts(table))
}

func TestPreview(t *testing.T) {
	table := balancedTable(t)

	preview := Preview(table, 3)
	require.Len(t, preview, 3)
	assert.Equal(t, 10.0, preview[0].Sales)
	assert.Equal(t, promo.Age0To5, preview[0].AgeBucket)

	assert.Len(t, Preview(table, 100), 8)
	assert.Empty(t, Preview(table, -1))
}

func TestWeeklyTrend(t *testing.T) {
	table := newTable(t,
		obs("1", 10, "Small", 1, 1), obs("1", 12, "Small", 1, 1),
		obs("2", 7, "Small", 1, 1),
		obs("2", 5, "Small", 1, 3),
	)

	trend := WeeklyTrend(table)
	require.Len(t, trend, 8)

	assert.Equal(t, stats.TrendPoint{Week: 1, Group: "1", Total: 22, Count: 2}, trend[0])
	assert.Equal(t, stats.TrendPoint{Week: 1, Group: "2", Total: 7, Count: 1}, trend[1])
	assert.Equal(t, stats.TrendPoint{Week: 2, Group: "1"}, trend[2])
	assert.Equal(t, stats.TrendPoint{Week: 3, Group: "2", Total: 5, Count: 1}, trend[5])
	assert.Equal(t, stats.TrendPoint{Week: 4, Group: "2"}, trend[7])
}
