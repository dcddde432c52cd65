package analysis

import (
	"fmt"

	"promolift/domain/promo"
	"promolift/domain/stats"
	"promolift/internal/errors"

	mstats "github.com/montanaflynn/stats"
)

// BreakdownBy compares the two groups inside every level of a covariate that
// occurs in the table. A level missing from one group still gets a row, with
// a zero count and undefined mean/difference.
func BreakdownBy(t *promo.Table, cov promo.Covariate) []stats.SegmentRow {
	levels := t.Levels(cov)
	rows := make([]stats.SegmentRow, 0, len(levels))

	for _, level := range levels {
		key := level
		segment := t.Filter(func(o promo.Observation) bool { return o.Value(cov) == key })
		rows = append(rows, segmentRow(cov, key, segment.SampleA(), segment.SampleB()))
	}
	return rows
}

func segmentRow(cov promo.Covariate, key string, a, b promo.Sample) stats.SegmentRow {
	row := stats.SegmentRow{
		Covariate: cov,
		Key:       key,
		CountA:    a.Len(),
		CountB:    b.Len(),
	}
	row.MeanA, row.StdA = describeSide(a)
	row.MeanB, row.StdB = describeSide(b)

	if !row.MeanA.IsDefined() || !row.MeanB.IsDefined() {
		reason := fmt.Sprintf("segment %q lacks observations in one group", key)
		row.Difference = stats.NotComputed(errors.CodeInsufficientData, reason)
		row.PercentDifference = stats.NotComputed(errors.CodeInsufficientData, reason)
		return row
	}

	diff := row.MeanA.Value - row.MeanB.Value
	row.Difference = stats.Defined(diff)
	if row.MeanB.Value == 0 {
		row.PercentDifference = stats.NotComputed(errors.CodeDegenerateInput, "group B mean is zero")
	} else {
		row.PercentDifference = stats.Defined(diff / row.MeanB.Value * 100)
	}
	return row
}

// describeSide returns mean and sample standard deviation of one group
func describeSide(s promo.Sample) (mean, std stats.Estimate) {
	values := s.Values()
	if len(values) == 0 {
		reason := fmt.Sprintf("group %s has no observations", s.Label())
		return stats.NotComputed(errors.CodeInsufficientData, reason), stats.NotComputed(errors.CodeInsufficientData, reason)
	}

	m, err := mstats.Mean(values)
	if err != nil {
		return undefinedFrom(errors.Wrap(err, "mean")), undefinedFrom(errors.Wrap(err, "mean"))
	}
	mean = stats.Defined(m)

	if len(values) < 2 {
		return mean, stats.NotComputed(errors.CodeInsufficientData, "standard deviation needs at least 2 observations")
	}
	sd, err := mstats.StandardDeviationSample(values)
	if err != nil {
		return mean, undefinedFrom(errors.Wrap(err, "standard deviation"))
	}
	return mean, stats.Defined(sd)
}
