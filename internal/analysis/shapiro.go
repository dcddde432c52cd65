package analysis

import (
	"math"
	"sort"

	"promolift/internal/errors"
)

// Polynomial coefficients of Royston's (1995) approximation, algorithm AS R94.
var (
	swG  = []float64{-2.273, 0.459}
	swC1 = []float64{0.0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0.0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
)

const swSmall = 1e-19

// ShapiroWilk returns the W statistic and its p-value. Samples need at least
// three distinct values; fewer, or a zero range, is reported as an AppError
// rather than a made-up p-value.
func ShapiroWilk(data []float64) (w, pValue float64, err error) {
	n := len(data)
	if n < 3 {
		return 0, 0, errors.InsufficientData("normality test needs at least 3 observations")
	}

	x := make([]float64, n)
	copy(x, data)
	sort.Float64s(x)

	if distinctSorted(x) < 3 {
		return 0, 0, errors.DegenerateInput("normality test needs at least 3 distinct values")
	}
	rng := x[n-1] - x[0]
	if rng < swSmall {
		return 0, 0, errors.DegenerateInput("sample has zero variance")
	}

	a := swCoefficients(n)

	// W is the squared correlation between the ordered data and the
	// antisymmetric coefficient vector; x is scaled by its range.
	coef := make([]float64, n)
	for i := 0; i < n/2; i++ {
		coef[i] = -a[i]
		coef[n-1-i] = a[i]
	}

	var sx float64
	for _, v := range x {
		sx += v / rng
	}
	sx /= float64(n)

	var ssa, ssx, sax float64
	for i, v := range x {
		xsx := v/rng - sx
		ssa += coef[i] * coef[i]
		ssx += xsx * xsx
		sax += coef[i] * xsx
	}

	// w1 is 1-W, kept separate to avoid rounding when W is close to 1
	ssassx := math.Sqrt(ssa * ssx)
	w1 := (ssassx - sax) * (ssassx + sax) / (ssa * ssx)
	if w1 < 0 {
		w1 = 0
	}
	w = 1 - w1

	return w, swPValue(w, w1, n), nil
}

// swCoefficients returns the first n/2 Shapiro-Wilk weights, largest first
func swCoefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	an25 := an + 0.25
	m := make([]float64, nn2)
	var summ2 float64
	for i := range m {
		m[i] = NormalQuantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)
	a1 := poly(swC1, rsn) - m[0]/ssumm2

	first := 1
	var fac float64
	if n > 5 {
		first = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func swPValue(w, w1 float64, n int) float64 {
	if n == 3 {
		const sixOverPi = 6 / math.Pi
		p := sixOverPi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return math.Max(p, 0)
	}

	an := float64(n)
	y := math.Log(w1)
	var m, s float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, an)
		s = math.Exp(poly(swC4, an))
	} else {
		lnN := math.Log(an)
		m = poly(swC5, lnN)
		s = math.Exp(poly(swC6, lnN))
	}
	return NormalUpperTail(y, m, s)
}

// poly evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}

func distinctSorted(x []float64) int {
	if len(x) == 0 {
		return 0
	}
	count := 1
	for i := 1; i < len(x); i++ {
		if x[i] != x[i-1] {
			count++
		}
	}
	return count
}
