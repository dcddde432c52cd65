package analysis

import (
	"promolift/domain/promo"
	"promolift/domain/stats"
)

// WeeklyTrend sums the outcome per week and group, ordered by week then
// group A before group B. Every week in 1..4 appears for both groups.
func WeeklyTrend(t *promo.Table) []stats.TrendPoint {
	type key struct {
		week  int
		group promo.GroupLabel
	}
	totals := make(map[key]*stats.TrendPoint)

	points := make([]stats.TrendPoint, 0, (promo.MaxWeek-promo.MinWeek+1)*2)
	for week := promo.MinWeek; week <= promo.MaxWeek; week++ {
		for _, g := range t.Groups() {
			points = append(points, stats.TrendPoint{Week: week, Group: g})
		}
	}
	for i := range points {
		totals[key{points[i].Week, points[i].Group}] = &points[i]
	}

	for i := 0; i < t.Len(); i++ {
		o := t.At(i)
		if p, ok := totals[key{o.Week, o.Group}]; ok {
			p.Total += o.Sales
			p.Count++
		}
	}
	return points
}
