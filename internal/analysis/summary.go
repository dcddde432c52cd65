package analysis

import (
	"math"
	"sort"

	"promolift/domain/promo"
	"promolift/domain/stats"

	mstats "github.com/montanaflynn/stats"
)

// Summary describes the numeric columns of the table: outcome, store age
// and week. Empty tables produce no rows.
func Summary(t *promo.Table) []stats.ColumnSummary {
	if t.Len() == 0 {
		return nil
	}

	sales := make([]float64, t.Len())
	ages := make([]float64, t.Len())
	weeks := make([]float64, t.Len())
	for i := 0; i < t.Len(); i++ {
		o := t.At(i)
		sales[i] = o.Sales
		ages[i] = o.AgeOfStore
		weeks[i] = float64(o.Week)
	}

	return []stats.ColumnSummary{
		describeColumn("SalesInThousands", sales),
		describeColumn("AgeOfStore", ages),
		describeColumn("week", weeks),
	}
}

// describePercentiles are the quantiles of a describe() table
var describePercentiles = []float64{25, 50, 75}

func describeColumn(name string, data []float64) stats.ColumnSummary {
	percentiles := describePercentiles
	d, err := mstats.DescribePercentileFunc(data, false, &percentiles, linearPercentile)
	if err != nil || len(d.DescriptionPercentiles) != len(describePercentiles) {
		return stats.ColumnSummary{Column: name, Count: len(data)}
	}

	// Describe reports the population deviation; describe() uses the sample one
	var std float64
	if len(data) > 1 {
		std, _ = mstats.StandardDeviationSample(data)
	}

	return stats.ColumnSummary{
		Column: name,
		Count:  d.Count,
		Mean:   d.Mean,
		Std:    std,
		Min:    d.Min,
		Q25:    d.DescriptionPercentiles[0].Value,
		Median: d.DescriptionPercentiles[1].Value,
		Q75:    d.DescriptionPercentiles[2].Value,
		Max:    d.Max,
	}
}

// linearPercentile interpolates between the sorted neighbours of rank
// (n-1)*p, the default quantile rule of numpy and pandas
func linearPercentile(input mstats.Float64Data, percent float64) (float64, error) {
	n := input.Len()
	if n == 0 {
		return math.NaN(), mstats.ErrEmptyInput
	}
	if percent < 0 || percent > 100 {
		return math.NaN(), mstats.ErrBounds
	}

	sorted := append(mstats.Float64Data(nil), input...)
	sort.Float64s(sorted)

	h := float64(n-1) * percent / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1], nil
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo]), nil
}

// GroupCounts counts observations per group, group A first
func GroupCounts(t *promo.Table) []stats.GroupCount {
	return []stats.GroupCount{
		{Group: t.GroupA(), Count: t.SampleA().Len()},
		{Group: t.GroupB(), Count: t.SampleB().Len()},
	}
}

// Preview returns up to n leading observations
func Preview(t *promo.Table, n int) []promo.Observation {
	if n > t.Len() {
		n = t.Len()
	}
	if n < 0 {
		n = 0
	}
	return t.Rows()[:n]
}
