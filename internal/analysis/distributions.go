package analysis

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// FTestPValue computes the upper-tail p-value of an F statistic (ANOVA, Levene)
func FTestPValue(fStatistic, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 {
		return 1.0
	}
	if fStatistic <= 0 {
		return 1.0
	}

	fDist := distuv.F{D1: df1, D2: df2}
	return fDist.Survival(fStatistic)
}

// NormalQuantile computes the quantile function of the standard normal
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// NormalUpperTail computes P(X > x) for X ~ N(mu, sigma)
func NormalUpperTail(x, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma}.Survival(x)
}
