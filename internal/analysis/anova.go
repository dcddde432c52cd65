package analysis

import (
	"fmt"

	"promolift/domain/promo"
	"promolift/domain/stats"
	"promolift/internal/analysis/ols"
	"promolift/internal/errors"
)

// Factor names as they appear in model formulas
const (
	FactorPromotion  = "C(Promotion)"
	FactorMarketSize = "C(MarketSize)"
	FactorAgeGroup   = "C(AgeGroup)"
	outcomeName      = "SalesInThousands"
)

// FactorialModel is one entry of the fixed model sequence
type FactorialModel struct {
	Covariate   promo.Covariate // empty for the promotion-only model
	Interaction bool
}

// Formula renders the model in Wilkinson notation
func (m FactorialModel) Formula() string {
	if m.Covariate == "" {
		return outcomeName + " ~ " + FactorPromotion
	}
	op := " + "
	if m.Interaction {
		op = " * "
	}
	return outcomeName + " ~ " + FactorPromotion + op + covariateFactor(m.Covariate)
}

// FactorialModels is the fixed sequence of increasingly complex models
var FactorialModels = []FactorialModel{
	{},
	{Covariate: promo.CovariateMarket},
	{Covariate: promo.CovariateMarket, Interaction: true},
	{Covariate: promo.CovariateAge},
	{Covariate: promo.CovariateAge, Interaction: true},
}

// RunFactorialModels fits every model independently, in order. A model that
// cannot be fitted comes back with Undefined set; the others are unaffected.
func RunFactorialModels(t *promo.Table) []stats.AnovaTable {
	tables := make([]stats.AnovaTable, 0, len(FactorialModels))
	for _, m := range FactorialModels {
		tables = append(tables, FitFactorialModel(t, m))
	}
	return tables
}

// FitFactorialModel fits one model and returns its Type-II ANOVA table
func FitFactorialModel(t *promo.Table, m FactorialModel) (table stats.AnovaTable) {
	table = stats.AnovaTable{Formula: m.Formula(), N: t.Len()}

	defer func() {
		if r := recover(); r != nil {
			table.Terms = nil
			table.Undefined = &stats.Undefined{
				Code:   errors.CodeInternalError,
				Reason: fmt.Sprintf("model fit failed: %v", r),
			}
		}
	}()

	design, undefined := buildDesign(t, m)
	if undefined != nil {
		table.Undefined = undefined
		return table
	}

	dec, err := design.TypeII()
	if err != nil {
		table.Undefined = &stats.Undefined{Code: errors.CodeInternalError, Reason: "model fit failed: " + err.Error()}
		return table
	}
	if dec.DFResid <= 0 {
		table.Undefined = &stats.Undefined{
			Code:   errors.CodeInsufficientData,
			Reason: "model fit failed: no residual degrees of freedom",
		}
		return table
	}

	table.Residual = stats.ResidualRow{SumSq: dec.Residual.RSS, DF: float64(dec.DFResid)}
	mse := dec.Residual.RSS / float64(dec.DFResid)
	for _, term := range dec.Terms {
		row := stats.AnovaTerm{Name: term.Term.Name, SumSq: term.SumSq, DF: float64(term.DF)}
		switch {
		case term.DF == 0:
			row.F = stats.NotComputed(errors.CodeDegenerateInput, "term is aliased with other terms")
			row.PValue = row.F
		case mse == 0:
			row.F = stats.NotComputed(errors.CodeDegenerateInput, "residual variance is zero")
			row.PValue = row.F
		default:
			f := (term.SumSq / float64(term.DF)) / mse
			row.F = stats.Defined(f)
			row.PValue = stats.Defined(FTestPValue(f, float64(term.DF), float64(dec.DFResid)))
		}
		table.Terms = append(table.Terms, row)
	}
	return table
}

// buildDesign turns the table into a categorical design, refusing factors
// with a level observed fewer than twice or with a single level.
func buildDesign(t *promo.Table, m FactorialModel) (*ols.Design, *stats.Undefined) {
	n := t.Len()
	response := make([]float64, n)
	group := make([]string, n)
	covariate := make([]string, n)
	for i := 0; i < n; i++ {
		o := t.At(i)
		response[i] = o.Sales
		group[i] = string(o.Group)
		if m.Covariate != "" {
			covariate[i] = o.Value(m.Covariate)
		}
	}

	design := &ols.Design{Response: response}
	design.Factors = append(design.Factors, ols.Factor{
		Name:   FactorPromotion,
		Levels: []string{string(t.GroupA()), string(t.GroupB())},
		Values: group,
	})
	design.Terms = append(design.Terms, ols.Term{Name: FactorPromotion, Factors: []int{0}})

	if m.Covariate != "" {
		name := covariateFactor(m.Covariate)
		design.Factors = append(design.Factors, ols.Factor{
			Name:   name,
			Levels: t.Levels(m.Covariate),
			Values: covariate,
		})
		design.Terms = append(design.Terms, ols.Term{Name: name, Factors: []int{1}})
		if m.Interaction {
			design.Terms = append(design.Terms, ols.Term{Name: FactorPromotion + ":" + name, Factors: []int{0, 1}})
		}
	}

	for _, f := range design.Factors {
		if undefined := checkLevels(f); undefined != nil {
			return nil, undefined
		}
	}
	return design, nil
}

func checkLevels(f ols.Factor) *stats.Undefined {
	counts := make(map[string]int, len(f.Levels))
	for _, v := range f.Values {
		counts[v]++
	}
	for _, level := range f.Levels {
		if counts[level] < 2 {
			return &stats.Undefined{
				Code:   errors.CodeInsufficientData,
				Reason: fmt.Sprintf("model fit failed: insufficient data for level %s of %s", level, f.Name),
			}
		}
	}
	if len(f.Levels) < 2 {
		return &stats.Undefined{
			Code:   errors.CodeInsufficientData,
			Reason: fmt.Sprintf("model fit failed: %s has a single level", f.Name),
		}
	}
	return nil
}

func covariateFactor(cov promo.Covariate) string {
	if cov == promo.CovariateAge {
		return FactorAgeGroup
	}
	return FactorMarketSize
}
