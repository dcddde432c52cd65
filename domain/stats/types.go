package stats

import (
	"time"

	"promolift/domain/core"
	"promolift/domain/promo"
)

// Alpha is the fixed significance level for every test in a report
const Alpha = 0.05

// ============================================================================
// UNDEFINED RESULTS
// ============================================================================

// Undefined explains why a value could not be computed. Codes come from
// internal/errors (INSUFFICIENT_DATA, DEGENERATE_INPUT).
type Undefined struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func (u *Undefined) Error() string {
	return u.Reason
}

// Estimate is a number that may be undefined. Value is 0 when undefined.
type Estimate struct {
	Value     float64    `json:"value"`
	Undefined *Undefined `json:"undefined,omitempty"`
}

// Defined wraps a computed value
func Defined(v float64) Estimate {
	return Estimate{Value: v}
}

// NotComputed builds an undefined estimate
func NotComputed(code, reason string) Estimate {
	return Estimate{Undefined: &Undefined{Code: code, Reason: reason}}
}

// IsDefined reports whether the estimate carries a value
func (e Estimate) IsDefined() bool {
	return e.Undefined == nil
}

// ============================================================================
// ASSUMPTIONS
// ============================================================================

// NormalityTest is a per-group goodness-of-fit result
type NormalityTest struct {
	Group     promo.GroupLabel `json:"group"`
	Method    string           `json:"method"`
	N         int              `json:"n"`
	Statistic Estimate         `json:"statistic"` // Shapiro-Wilk W
	PValue    Estimate         `json:"p_value"`
	Normal    bool             `json:"normal"` // p > Alpha; false when undefined
}

// VarianceTest is a two-group test of equal spread
type VarianceTest struct {
	Method    string   `json:"method"`
	Statistic Estimate `json:"statistic"` // Levene W
	PValue    Estimate `json:"p_value"`
	Equal     bool     `json:"equal"` // p > Alpha; false when undefined
}

// AssumptionResult feeds the test selector
type AssumptionResult struct {
	NormalityA NormalityTest `json:"normality_a"`
	NormalityB NormalityTest `json:"normality_b"`
	Variance   VarianceTest  `json:"variance"`
	BothNormal bool          `json:"both_normal"`
}

// ============================================================================
// HYPOTHESIS TEST
// ============================================================================

// TestKind distinguishes parametric from distribution-free tests
type TestKind string

const (
	TestParametric    TestKind = "parametric"
	TestNonParametric TestKind = "non-parametric"
)

// TestResult is the outcome of the selected two-sample test
type TestResult struct {
	Kind        TestKind   `json:"kind"`
	Method      string     `json:"method"`
	Statistic   float64    `json:"statistic"`
	PValue      float64    `json:"p_value"`
	Alpha       float64    `json:"alpha"`
	Significant bool       `json:"significant"`
	N1          int        `json:"n1"`
	N2          int        `json:"n2"`
	Undefined   *Undefined `json:"undefined,omitempty"`
}

// ============================================================================
// EFFECT SIZE
// ============================================================================

// Magnitude is the conventional Cohen's d class
type Magnitude string

const (
	MagnitudeSmall  Magnitude = "small"
	MagnitudeMedium Magnitude = "medium"
	MagnitudeLarge  Magnitude = "large"
)

// EffectSize is a standardized mean difference, group A minus group B
type EffectSize struct {
	MeanA      float64    `json:"mean_a"`
	MeanB      float64    `json:"mean_b"`
	Difference float64    `json:"difference"`
	PooledSD   float64    `json:"pooled_sd"`
	D          float64    `json:"d"` // sign gives direction
	Magnitude  Magnitude  `json:"magnitude,omitempty"`
	Undefined  *Undefined `json:"undefined,omitempty"`
}

// ============================================================================
// SEGMENTS
// ============================================================================

// SegmentRow compares the two groups inside one covariate level
type SegmentRow struct {
	Covariate         promo.Covariate `json:"covariate"`
	Key               string          `json:"key"`
	CountA            int             `json:"count_a"`
	MeanA             Estimate        `json:"mean_a"`
	StdA              Estimate        `json:"std_a"`
	CountB            int             `json:"count_b"`
	MeanB             Estimate        `json:"mean_b"`
	StdB              Estimate        `json:"std_b"`
	Difference        Estimate        `json:"difference"`         // mean A - mean B
	PercentDifference Estimate        `json:"percent_difference"` // relative to mean B
}

// ============================================================================
// ANOVA
// ============================================================================

// AnovaTerm is one model term's Type-II row
type AnovaTerm struct {
	Name   string   `json:"name"`
	SumSq  float64  `json:"sum_sq"`
	DF     float64  `json:"df"`
	F      Estimate `json:"f"`
	PValue Estimate `json:"p_value"`
}

// ResidualRow is the error line of an ANOVA table
type ResidualRow struct {
	SumSq float64 `json:"sum_sq"`
	DF    float64 `json:"df"`
}

// AnovaTable is the Type-II decomposition of one fitted model
type AnovaTable struct {
	Formula   string      `json:"formula"`
	N         int         `json:"n"`
	Terms     []AnovaTerm `json:"terms"`
	Residual  ResidualRow `json:"residual"`
	Undefined *Undefined  `json:"undefined,omitempty"`
}

// ============================================================================
// DESCRIPTIVES
// ============================================================================

// ColumnSummary mirrors a describe() row for one numeric column
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// GroupCount is the observation count of one group
type GroupCount struct {
	Group promo.GroupLabel `json:"group"`
	Count int              `json:"count"`
}

// TrendPoint is the total outcome of one group in one week
type TrendPoint struct {
	Week  int              `json:"week"`
	Group promo.GroupLabel `json:"group"`
	Total float64          `json:"total"`
	Count int              `json:"count"`
}

// Conclusion is the business-facing decision
type Conclusion struct {
	Preferred      promo.GroupLabel `json:"preferred,omitempty"` // empty when nothing is significant
	Significant    bool             `json:"significant"`
	Difference     float64          `json:"difference"`
	LiftPercent    Estimate         `json:"lift_percent"` // (meanA/meanB - 1) * 100
	Recommendation string           `json:"recommendation"`
}

// ============================================================================
// REPORT
// ============================================================================

// Report bundles every analysis over one dataset
type Report struct {
	ID             core.ReportID    `json:"id"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Dataset        promo.LoadStats  `json:"dataset"`
	GroupA         promo.GroupLabel `json:"group_a"`
	GroupB         promo.GroupLabel `json:"group_b"`
	GroupCounts    []GroupCount     `json:"group_counts"`
	Summary        []ColumnSummary  `json:"summary"`
	Trend          []TrendPoint     `json:"trend"`
	Assumptions    AssumptionResult `json:"assumptions"`
	Test           TestResult       `json:"test"`
	Effect         EffectSize       `json:"effect"`
	MarketSegments []SegmentRow     `json:"market_segments"`
	AgeSegments    []SegmentRow     `json:"age_segments"`
	Models         []AnovaTable     `json:"models"`
	Conclusion     Conclusion       `json:"conclusion"`
}
