// Package ols fits least-squares models over categorical factors and
// decomposes them into Type-II sums of squares.
package ols

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// rankTolerance is relative to the largest singular value
const rankTolerance = 1e-10

// Factor is a categorical column. Levels[0] is the reference level under
// treatment coding.
type Factor struct {
	Name   string
	Levels []string
	Values []string
}

// Term is a main effect (one factor) or an interaction (several factors),
// given as indexes into Design.Factors.
type Term struct {
	Name    string
	Factors []int
}

// Design is a response plus the terms of a linear model with intercept
type Design struct {
	Response []float64
	Factors  []Factor
	Terms    []Term
}

// Fit is the residual summary of a least-squares fit
type Fit struct {
	RSS  float64
	Rank int
}

// TermSS is one Type-II row
type TermSS struct {
	Term  Term
	SumSq float64
	DF    int
}

// Decomposition is the Type-II breakdown of the full model
type Decomposition struct {
	N        int
	Terms    []TermSS
	Residual Fit
	DFResid  int
}

// Validate checks that every factor has one value per response and that
// every value is a declared level.
func (d *Design) Validate() error {
	n := len(d.Response)
	for _, f := range d.Factors {
		if len(f.Values) != n {
			return fmt.Errorf("factor %s has %d values for %d observations", f.Name, len(f.Values), n)
		}
		known := make(map[string]bool, len(f.Levels))
		for _, l := range f.Levels {
			known[l] = true
		}
		for i, v := range f.Values {
			if !known[v] {
				return fmt.Errorf("factor %s: observation %d has undeclared level %q", f.Name, i, v)
			}
		}
	}
	for _, t := range d.Terms {
		if len(t.Factors) == 0 {
			return fmt.Errorf("term %s has no factors", t.Name)
		}
		for _, fi := range t.Factors {
			if fi < 0 || fi >= len(d.Factors) {
				return fmt.Errorf("term %s references unknown factor %d", t.Name, fi)
			}
		}
	}
	return nil
}

// TypeII computes, for each term, the increase in residual sum of squares
// from dropping it while keeping every other term except those that contain
// it. Residual degrees of freedom are those of the full model.
func (d *Design) TypeII() (*Decomposition, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	all := make([]int, len(d.Terms))
	for i := range all {
		all[i] = i
	}
	full, err := d.FitTerms(all)
	if err != nil {
		return nil, err
	}

	dec := &Decomposition{
		N:        len(d.Response),
		Residual: full,
		DFResid:  len(d.Response) - full.Rank,
	}

	for i, term := range d.Terms {
		var reduced []int
		for j, other := range d.Terms {
			if j == i || d.contains(other, term) {
				continue
			}
			reduced = append(reduced, j)
		}
		without, err := d.FitTerms(reduced)
		if err != nil {
			return nil, err
		}
		with, err := d.FitTerms(append(append([]int{}, reduced...), i))
		if err != nil {
			return nil, err
		}

		ss := without.RSS - with.RSS
		if ss < 0 {
			ss = 0
		}
		dec.Terms = append(dec.Terms, TermSS{
			Term:  term,
			SumSq: ss,
			DF:    with.Rank - without.Rank,
		})
	}
	return dec, nil
}

// contains reports whether outer is a strictly higher-order relative of inner
func (d *Design) contains(outer, inner Term) bool {
	if len(outer.Factors) <= len(inner.Factors) {
		return false
	}
	set := make(map[int]bool, len(outer.Factors))
	for _, f := range outer.Factors {
		set[f] = true
	}
	for _, f := range inner.Factors {
		if !set[f] {
			return false
		}
	}
	return true
}

// FitTerms fits the intercept plus the given terms
func (d *Design) FitTerms(terms []int) (Fit, error) {
	x := d.Matrix(terms)
	y := mat.NewVecDense(len(d.Response), append([]float64(nil), d.Response...))
	return leastSquares(x, y)
}

// Matrix builds the treatment-coded design matrix: an intercept column, then
// one indicator column per combination of non-reference levels of each term.
func (d *Design) Matrix(terms []int) *mat.Dense {
	n := len(d.Response)
	var cols [][]float64

	intercept := make([]float64, n)
	for i := range intercept {
		intercept[i] = 1
	}
	cols = append(cols, intercept)

	for _, ti := range terms {
		cols = append(cols, d.termColumns(d.Terms[ti])...)
	}

	x := mat.NewDense(n, len(cols), nil)
	for j, col := range cols {
		x.SetCol(j, col)
	}
	return x
}

func (d *Design) termColumns(term Term) [][]float64 {
	n := len(d.Response)
	cols := [][]float64{make([]float64, n)}
	for i := range cols[0] {
		cols[0][i] = 1
	}

	for _, fi := range term.Factors {
		f := d.Factors[fi]
		var next [][]float64
		for _, base := range cols {
			for _, level := range f.Levels[1:] {
				col := make([]float64, n)
				for i := range col {
					if f.Values[i] == level {
						col[i] = base[i]
					}
				}
				next = append(next, col)
			}
		}
		cols = next
	}
	return cols
}

// leastSquares projects y onto the column space of x through a thin SVD,
// so rank-deficient designs still yield the minimum residual.
func leastSquares(x *mat.Dense, y *mat.VecDense) (Fit, error) {
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return Fit{}, fmt.Errorf("SVD factorization failed")
	}

	values := svd.Values(nil)
	rank := 0
	if len(values) > 0 && values[0] > 0 {
		for _, s := range values {
			if s > values[0]*rankTolerance {
				rank++
			}
		}
	}

	var u mat.Dense
	svd.UTo(&u)

	resid := mat.NewVecDense(y.Len(), nil)
	resid.CopyVec(y)
	for i := 0; i < rank; i++ {
		ui := u.ColView(i)
		resid.AddScaledVec(resid, -mat.Dot(ui, y), ui)
	}

	rss := mat.Dot(resid, resid)
	if math.IsNaN(rss) {
		return Fit{}, fmt.Errorf("residual sum of squares is NaN")
	}
	return Fit{RSS: rss, Rank: rank}, nil
}
