package promo

import (
	"fmt"
	"math"
	"sort"

	"promolift/domain/core"
	"promolift/internal/errors"
)

// GroupLabel identifies one of the two promotion cohorts
type GroupLabel string

// Covariate names a categorical column a table can be segmented by
type Covariate string

const (
	CovariateMarket Covariate = "market"
	CovariateAge    Covariate = "age"
)

// ParseCovariate accepts the user-facing covariate names
func ParseCovariate(s string) (Covariate, error) {
	switch Covariate(s) {
	case CovariateMarket, CovariateAge:
		return Covariate(s), nil
	case "MarketSize":
		return CovariateMarket, nil
	case "AgeGroup":
		return CovariateAge, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown covariate %q (want market or age)", s))
}

// MinWeek and MaxWeek bound the week index of the experiment
const (
	MinWeek = 1
	MaxWeek = 4
)

// Observation is one store-week of sales under one promotion
type Observation struct {
	Group      GroupLabel `json:"group"`
	Sales      float64    `json:"sales"`
	MarketSize string     `json:"market_size"`
	AgeOfStore float64    `json:"age_of_store"`
	AgeBucket  AgeBucket  `json:"age_bucket"`
	Week       int        `json:"week"`
}

// Value returns the observation's level for a covariate
func (o Observation) Value(cov Covariate) string {
	if cov == CovariateAge {
		return string(o.AgeBucket)
	}
	return o.MarketSize
}

// LoadStats records what happened while a table was read from its source
type LoadStats struct {
	Source       string    `json:"source"`
	Checksum     core.Hash `json:"checksum,omitempty"` // SHA-256 of the source file
	RowsRead     int       `json:"rows_read"`
	RowsExcluded int       `json:"rows_excluded"` // group label outside the two cohorts
	Rows         int       `json:"rows"`
}

// Table is an immutable set of observations over exactly two group labels.
// Nothing hands out its backing slice, so a *Table is safe to share.
type Table struct {
	groupA GroupLabel
	groupB GroupLabel
	rows   []Observation
	stats  LoadStats
}

// NewTable validates rows and derives age buckets. Every row must belong to
// groupA or groupB and carry a finite outcome, a non-negative age, a market
// size and a week in 1..4.
func NewTable(groupA, groupB GroupLabel, rows []Observation) (*Table, error) {
	if groupA == "" || groupB == "" || groupA == groupB {
		return nil, errors.InvalidInput("a table needs two distinct group labels")
	}

	copied := make([]Observation, len(rows))
	for i, row := range rows {
		if row.Group != groupA && row.Group != groupB {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: group %q is neither %q nor %q", i, row.Group, groupA, groupB))
		}
		if math.IsNaN(row.Sales) || math.IsInf(row.Sales, 0) {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: outcome is missing", i))
		}
		if row.MarketSize == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: market size is missing", i))
		}
		if row.Week < MinWeek || row.Week > MaxWeek {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: week %d outside %d..%d", i, row.Week, MinWeek, MaxWeek))
		}
		bucket, ok := BucketForAge(row.AgeOfStore)
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: store age %v is invalid", i, row.AgeOfStore))
		}
		row.AgeBucket = bucket
		copied[i] = row
	}

	return &Table{
		groupA: groupA,
		groupB: groupB,
		rows:   copied,
		stats:  LoadStats{RowsRead: len(rows), Rows: len(rows)},
	}, nil
}

// WithLoadStats returns a copy of the table carrying source statistics
func (t *Table) WithLoadStats(stats LoadStats) *Table {
	stats.Rows = len(t.rows)
	return &Table{groupA: t.groupA, groupB: t.groupB, rows: t.rows, stats: stats}
}

func (t *Table) GroupA() GroupLabel { return t.groupA }
func (t *Table) GroupB() GroupLabel { return t.groupB }
func (t *Table) Len() int { return len(t.rows) }
func (t *Table) LoadStats() LoadStats { return t.stats }
func (t *Table) Groups() []GroupLabel { return []GroupLabel{t.groupA, t.groupB} }
func (t *Table) At(i int) Observation { return t.rows[i] }
func (t *Table) SampleA() Sample { return t.Sample(t.groupA) }
func (t *Table) SampleB() Sample { return t.Sample(t.groupB) }

// Rows returns a copy of all observations
func (t *Table) Rows() []Observation {
	out := make([]Observation, len(t.rows))
	copy(out, t.rows)
	return out
}

// Sample collects the outcomes of one group, in table order
func (t *Table) Sample(group GroupLabel) Sample {
	values := make([]float64, 0, len(t.rows))
	for _, row := range t.rows {
		if row.Group == group {
			values = append(values, row.Sales)
		}
	}
	return Sample{label: group, values: values}
}

// Filter returns the sub-table of rows matching keep
func (t *Table) Filter(keep func(Observation) bool) *Table {
	rows := make([]Observation, 0, len(t.rows))
	for _, row := range t.rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return &Table{groupA: t.groupA, groupB: t.groupB, rows: rows, stats: t.stats}
}

// Levels lists the distinct covariate values present in the table. Market
// sizes sort lexically, age buckets by interval.
func (t *Table) Levels(cov Covariate) []string {
	seen := make(map[string]bool)
	var levels []string
	for _, row := range t.rows {
		v := row.Value(cov)
		if !seen[v] {
			seen[v] = true
			levels = append(levels, v)
		}
	}
	if cov == CovariateAge {
		sort.Slice(levels, func(i, j int) bool {
			return ageBucketRank(AgeBucket(levels[i])) < ageBucketRank(AgeBucket(levels[j]))
		})
	} else {
		sort.Strings(levels)
	}
	return levels
}

// Sample is the multiset of outcomes belonging to one group label
type Sample struct {
	label  GroupLabel
	values []float64
}

// NewSample copies values into a sample
func NewSample(label GroupLabel, values []float64) Sample {
	copied := make([]float64, len(values))
	copy(copied, values)
	return Sample{label: label, values: copied}
}

func (s Sample) Label() GroupLabel { return s.label }
func (s Sample) Len() int { return len(s.values) }

// Values returns a copy of the outcomes
func (s Sample) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}
