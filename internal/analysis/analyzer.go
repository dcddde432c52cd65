package analysis

import (
	"context"
	"time"

	"promolift/domain/core"
	"promolift/domain/promo"
	"promolift/domain/stats"
	"promolift/internal/errors"
	"promolift/internal/metrics"
	"promolift/ports"

	"github.com/sirupsen/logrus"
)

// PreviewRows is how many observations the exploratory view shows
const PreviewRows = 5

// Exploratory is the descriptive view of the dataset
type Exploratory struct {
	Dataset     promo.LoadStats       `json:"dataset"`
	GroupCounts []stats.GroupCount    `json:"group_counts"`
	Summary     []stats.ColumnSummary `json:"summary"`
	Preview     []promo.Observation   `json:"preview"`
}

// Analyzer exposes each analysis as an independent entry point over the
// provider's table. Only dataset loading can fail; analysis conditions are
// reported inside the results.
type Analyzer struct {
	provider ports.DatasetProvider
	metrics  *metrics.Metrics
	now      func() time.Time
	log      *logrus.Entry
}

// NewAnalyzer creates an analyzer over a dataset provider
func NewAnalyzer(provider ports.DatasetProvider) *Analyzer {
	return &Analyzer{
		provider: provider,
		now:      time.Now,
		log:      logrus.WithField("component", "Analyzer"),
	}
}

// WithMetrics records entry point calls and undefined results
func (a *Analyzer) WithMetrics(m *metrics.Metrics) *Analyzer {
	a.metrics = m
	return a
}

func (a *Analyzer) table(ctx context.Context, analysis string) (*promo.Table, error) {
	a.metrics.CountAnalysis(analysis)
	t, err := a.provider.Table(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "dataset unavailable")
	}
	return t, nil
}

// Summary returns group counts, the describe table and a preview
func (a *Analyzer) Summary(ctx context.Context) (*Exploratory, error) {
	t, err := a.table(ctx, "summary")
	if err != nil {
		return nil, err
	}
	return &Exploratory{
		Dataset:     t.LoadStats(),
		GroupCounts: GroupCounts(t),
		Summary:     Summary(t),
		Preview:     Preview(t, PreviewRows),
	}, nil
}

// Trend returns weekly totals per group
func (a *Analyzer) Trend(ctx context.Context) ([]stats.TrendPoint, error) {
	t, err := a.table(ctx, "trend")
	if err != nil {
		return nil, err
	}
	return WeeklyTrend(t), nil
}

// Assumptions runs the normality and variance checks
func (a *Analyzer) Assumptions(ctx context.Context) (stats.AssumptionResult, error) {
	t, err := a.table(ctx, "assumptions")
	if err != nil {
		return stats.AssumptionResult{}, err
	}
	ar := CheckAssumptions(t.SampleA(), t.SampleB())
	a.logAssumptions(ar)
	return ar, nil
}

// Test runs the assumption checks and then the selected test
func (a *Analyzer) Test(ctx context.Context) (stats.TestResult, error) {
	t, err := a.table(ctx, "test")
	if err != nil {
		return stats.TestResult{}, err
	}
	sa, sb := t.SampleA(), t.SampleB()
	result := SelectTest(sa, sb, CheckAssumptions(sa, sb))
	a.logUndefined("test", "test", result.Undefined)
	return result, nil
}

// EffectSize computes Cohen's d between the groups
func (a *Analyzer) EffectSize(ctx context.Context) (stats.EffectSize, error) {
	t, err := a.table(ctx, "effect_size")
	if err != nil {
		return stats.EffectSize{}, err
	}
	effect := ComputeEffectSize(t.SampleA(), t.SampleB())
	a.logUndefined("effect_size", "effect size", effect.Undefined)
	return effect, nil
}

// Segments breaks the groups down by one covariate
func (a *Analyzer) Segments(ctx context.Context, cov promo.Covariate) ([]stats.SegmentRow, error) {
	t, err := a.table(ctx, "segments")
	if err != nil {
		return nil, err
	}
	return BreakdownBy(t, cov), nil
}

// Anova fits the five factorial models
func (a *Analyzer) Anova(ctx context.Context) ([]stats.AnovaTable, error) {
	t, err := a.table(ctx, "anova")
	if err != nil {
		return nil, err
	}
	tables := RunFactorialModels(t)
	for _, table := range tables {
		a.logUndefined("anova", table.Formula, table.Undefined)
	}
	return tables, nil
}

// Report runs every analysis once over the same table
func (a *Analyzer) Report(ctx context.Context) (*stats.Report, error) {
	t, err := a.table(ctx, "report")
	if err != nil {
		return nil, err
	}
	start := time.Now()

	sa, sb := t.SampleA(), t.SampleB()
	assumptions := CheckAssumptions(sa, sb)
	test := SelectTest(sa, sb, assumptions)
	effect := ComputeEffectSize(sa, sb)

	report := &stats.Report{
		ID:             core.NewReportID(),
		GeneratedAt:    a.now().UTC(),
		Dataset:        t.LoadStats(),
		GroupA:         t.GroupA(),
		GroupB:         t.GroupB(),
		GroupCounts:    GroupCounts(t),
		Summary:        Summary(t),
		Trend:          WeeklyTrend(t),
		Assumptions:    assumptions,
		Test:           test,
		Effect:         effect,
		MarketSegments: BreakdownBy(t, promo.CovariateMarket),
		AgeSegments:    BreakdownBy(t, promo.CovariateAge),
		Models:         RunFactorialModels(t),
		Conclusion:     Conclude(t.GroupA(), t.GroupB(), test, effect),
	}

	a.logUndefined("test", "test", test.Undefined)
	a.logUndefined("effect_size", "effect size", effect.Undefined)
	for _, m := range report.Models {
		a.logUndefined("anova", m.Formula, m.Undefined)
	}
	a.metrics.ObserveReport(time.Since(start))

	a.log.WithFields(logrus.Fields{
		"report_id":   report.ID,
		"rows":        t.Len(),
		"test":        test.Method,
		"p_value":     test.PValue,
		"significant": test.Significant,
	}).Info("report generated")
	return report, nil
}

func (a *Analyzer) logAssumptions(ar stats.AssumptionResult) {
	a.log.WithFields(logrus.Fields{
		"normal_a":       ar.NormalityA.Normal,
		"normal_b":       ar.NormalityB.Normal,
		"equal_variance": ar.Variance.Equal,
	}).Debug("assumptions checked")
}

func (a *Analyzer) logUndefined(analysis, what string, u *stats.Undefined) {
	if u == nil {
		return
	}
	a.metrics.CountUndefined(analysis, u.Code)
	a.log.WithFields(logrus.Fields{"code": u.Code, "reason": u.Reason}).Debugf("%s undefined", what)
}
