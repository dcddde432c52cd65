package analysis

import (
	"math"

	"promolift/internal/errors"

	"github.com/montanaflynn/stats"
)

// LeveneMedian runs the median-centred Levene test (Brown-Forsythe variant)
// for equal variances across groups. It does not assume normality.
func LeveneMedian(groups ...[]float64) (w, pValue float64, err error) {
	k := len(groups)
	if k < 2 {
		return 0, 0, errors.InsufficientData("variance test needs at least two groups")
	}

	deviations := make([][]float64, k)
	groupMeans := make([]float64, k)
	total := 0
	var grandSum float64
	for i, g := range groups {
		if len(g) == 0 {
			return 0, 0, errors.InsufficientData("variance test needs every group to have observations")
		}
		median, err := stats.Median(g)
		if err != nil {
			return 0, 0, errors.Wrap(err, "median")
		}
		z := make([]float64, len(g))
		var sum float64
		for j, v := range g {
			z[j] = math.Abs(v - median)
			sum += z[j]
		}
		deviations[i] = z
		groupMeans[i] = sum / float64(len(g))
		grandSum += sum
		total += len(g)
	}

	dfWithin := float64(total - k)
	if dfWithin <= 0 {
		return 0, 0, errors.InsufficientData("variance test needs more observations than groups")
	}
	grandMean := grandSum / float64(total)

	var between, within float64
	for i, z := range deviations {
		d := groupMeans[i] - grandMean
		between += float64(len(z)) * d * d
		for _, v := range z {
			e := v - groupMeans[i]
			within += e * e
		}
	}
	if within == 0 {
		return 0, 0, errors.DegenerateInput("all absolute deviations are equal within groups")
	}

	dfBetween := float64(k - 1)
	w = (dfWithin / dfBetween) * (between / within)
	return w, FTestPValue(w, dfBetween, dfWithin), nil
}
