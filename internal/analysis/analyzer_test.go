package analysis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"promolift/domain/promo"
	"promolift/internal/errors"
	"promolift/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDatasetProvider is a testify mock of ports.DatasetProvider
type MockDatasetProvider struct {
	mock.Mock
}

func (m *MockDatasetProvider) Table(ctx context.Context) (*promo.Table, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.(*promo.Table), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAnalyzer_EntryPointsShareTheProviderTable(t *testing.T) {
	table := balancedTable(t)
	provider := new(MockDatasetProvider)
	provider.On("Table", mock.Anything).Return(table, nil)

	analyzer := NewAnalyzer(provider)
	ctx := context.Background()

	ar, err := analyzer.Assumptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, CheckAssumptions(table.SampleA(), table.SampleB()), ar)

	test, err := analyzer.Test(ctx)
	require.NoError(t, err)
	assert.Equal(t, SelectTest(table.SampleA(), table.SampleB(), ar), test)

	effect, err := analyzer.EffectSize(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, effect.Difference, 1e-12)

	segments, err := analyzer.Segments(ctx, promo.CovariateMarket)
	require.NoError(t, err)
	assert.Len(t, segments, 2)

	models, err := analyzer.Anova(ctx)
	require.NoError(t, err)
	assert.Len(t, models, 5)

	trend, err := analyzer.Trend(ctx)
	require.NoError(t, err)
	assert.Len(t, trend, 8)

	summary, err := analyzer.Summary(ctx)
	require.NoError(t, err)
	assert.Len(t, summary.Preview, PreviewRows)
	assert.Len(t, summary.GroupCounts, 2)

	provider.AssertNumberOfCalls(t, "Table", 7)
}

func TestAnalyzer_Report(t *testing.T) {
	table := balancedTable(t)
	provider := new(MockDatasetProvider)
	provider.On("Table", mock.Anything).Return(table, nil).Once()

	analyzer := NewAnalyzer(provider)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	analyzer.now = func() time.Time { return fixed }

	report, err := analyzer.Report(context.Background())
	require.NoError(t, err)

	assert.False(t, report.ID.IsEmpty())
	assert.Equal(t, fixed, report.GeneratedAt)
	assert.Equal(t, promo.GroupLabel("1"), report.GroupA)
	assert.Equal(t, promo.GroupLabel("2"), report.GroupB)
	assert.Len(t, report.Models, 5)
	assert.Len(t, report.MarketSegments, 2)
	assert.Len(t, report.AgeSegments, 2)
	assert.Len(t, report.Trend, 8)
	assert.Equal(t, report.Test.Significant, report.Conclusion.Significant)

	// every number in the report must survive JSON encoding
	_, err = json.Marshal(report)
	require.NoError(t, err)

	provider.AssertExpectations(t)
}

func TestAnalyzer_LoadFailureIsReturned(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Table", mock.Anything).Return(nil, errors.MalformedRow(4, "SalesInThousands \"abc\" is not a finite number"))

	analyzer := NewAnalyzer(provider)

	_, err := analyzer.Report(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeMalformedRow, errors.GetCode(err))

	_, err = analyzer.Segments(context.Background(), promo.CovariateAge)
	assert.Equal(t, errors.CodeMalformedRow, errors.GetCode(err))
}

func TestAnalyzer_RecordsMetrics(t *testing.T) {
	provider := new(MockDatasetProvider)
	provider.On("Table", mock.Anything).Return(balancedTable(t), nil)

	reg := prometheus.NewRegistry()
	analyzer := NewAnalyzer(provider).WithMetrics(metrics.New(reg))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := analyzer.Test(ctx)
		require.NoError(t, err)
	}
	_, err := analyzer.Report(ctx)
	require.NoError(t, err)

	expected := `
# HELP promolift_analyses_total Analysis entry point calls.
# TYPE promolift_analyses_total counter
promolift_analyses_total{analysis="report"} 1
promolift_analyses_total{analysis="test"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "promolift_analyses_total"))
	count, err := testutil.GatherAndCount(reg, "promolift_report_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
