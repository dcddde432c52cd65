package ols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneWay is a three-level design with group means 2, 5 and 9
func oneWay() *Design {
	return &Design{
		Response: []float64{1, 3, 4, 6, 8, 10},
		Factors: []Factor{{
			Name:   "g",
			Levels: []string{"a", "b", "c"},
			Values: []string{"a", "a", "b", "b", "c", "c"},
		}},
		Terms: []Term{{Name: "g", Factors: []int{0}}},
	}
}

func TestMatrix_TreatmentCoding(t *testing.T) {
	x := oneWay().Matrix([]int{0})
	rows, cols := x.Dims()
	require.Equal(t, 6, rows)
	require.Equal(t, 3, cols)

	// intercept, then indicators for the non-reference levels b and c
	assert.Equal(t, []float64{1, 0, 0}, []float64{x.At(0, 0), x.At(0, 1), x.At(0, 2)})
	assert.Equal(t, []float64{1, 1, 0}, []float64{x.At(2, 0), x.At(2, 1), x.At(2, 2)})
	assert.Equal(t, []float64{1, 0, 1}, []float64{x.At(5, 0), x.At(5, 1), x.At(5, 2)})
}

func TestMatrix_InteractionColumns(t *testing.T) {
	d := &Design{
		Response: make([]float64, 4),
		Factors: []Factor{
			{Name: "p", Levels: []string{"1", "2"}, Values: []string{"1", "2", "1", "2"}},
			{Name: "m", Levels: []string{"L", "M", "S"}, Values: []string{"L", "M", "S", "S"}},
		},
		Terms: []Term{
			{Name: "p", Factors: []int{0}},
			{Name: "m", Factors: []int{1}},
			{Name: "p:m", Factors: []int{0, 1}},
		},
	}

	x := d.Matrix([]int{0, 1, 2})
	_, cols := x.Dims()
	// 1 intercept + 1 + 2 + 1*2
	assert.Equal(t, 6, cols)
	// row 3 is p=2, m=S: p column, m=S column, and the p2:mS interaction
	assert.Equal(t, []float64{1, 1, 0, 1, 0, 1}, []float64{x.At(3, 0), x.At(3, 1), x.At(3, 2), x.At(3, 3), x.At(3, 4), x.At(3, 5)})
}

func TestFitTerms_OneWay(t *testing.T) {
	d := oneWay()

	null, err := d.FitTerms(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, null.Rank)
	// grand mean 16/3
	var tss float64
	for _, y := range d.Response {
		tss += (y - 16.0/3.0) * (y - 16.0/3.0)
	}
	assert.InDelta(t, tss, null.RSS, 1e-9)

	full, err := d.FitTerms([]int{0})
	require.NoError(t, err)
	assert.Equal(t, 3, full.Rank)
	assert.InDelta(t, 6.0, full.RSS, 1e-9)
}

func TestTypeII_OneWayMatchesClassicAnova(t *testing.T) {
	dec, err := oneWay().TypeII()
	require.NoError(t, err)

	require.Len(t, dec.Terms, 1)
	// between-group SS: 2*(2-16/3)^2 + 2*(5-16/3)^2 + 2*(9-16/3)^2
	between := 2*(2-16.0/3)*(2-16.0/3) + 2*(5-16.0/3)*(5-16.0/3) + 2*(9-16.0/3)*(9-16.0/3)
	assert.InDelta(t, between, dec.Terms[0].SumSq, 1e-9)
	assert.Equal(t, 2, dec.Terms[0].DF)
	assert.Equal(t, 3, dec.DFResid)
	assert.InDelta(t, 6.0, dec.Residual.RSS, 1e-9)
}

func TestTypeII_RankDeficientDesign(t *testing.T) {
	d := &Design{
		Response: []float64{1, 2, 5, 6},
		Factors: []Factor{
			{Name: "a", Levels: []string{"x", "y"}, Values: []string{"x", "x", "y", "y"}},
			{Name: "b", Levels: []string{"u", "v"}, Values: []string{"u", "u", "v", "v"}},
		},
		Terms: []Term{{Name: "a", Factors: []int{0}}, {Name: "b", Factors: []int{1}}},
	}

	dec, err := d.TypeII()
	require.NoError(t, err)
	assert.Equal(t, 2, dec.Residual.Rank)
	assert.Equal(t, 2, dec.DFResid)
	for _, term := range dec.Terms {
		assert.Equal(t, 0, term.DF, term.Term.Name)
		assert.InDelta(t, 0, term.SumSq, 1e-9, term.Term.Name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Design)
	}{
		{"short factor", func(d *Design) { d.Factors[0].Values = d.Factors[0].Values[:3] }},
		{"undeclared level", func(d *Design) { d.Factors[0].Values[0] = "z" }},
		{"empty term", func(d *Design) { d.Terms = append(d.Terms, Term{Name: "e"}) }},
		{"unknown factor", func(d *Design) { d.Terms = append(d.Terms, Term{Name: "u", Factors: []int{4}}) }},
	}

	require.NoError(t, oneWay().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := oneWay()
			tt.mutate(d)
			assert.Error(t, d.Validate())
			_, err := d.TypeII()
			assert.Error(t, err)
		})
	}
}
