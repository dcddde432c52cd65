package analysis

import (
	"testing"

	"promolift/domain/promo"

	"github.com/stretchr/testify/require"
)

func obs(group string, sales float64, market string, age float64, week int) promo.Observation {
	return promo.Observation{
		Group:      promo.GroupLabel(group),
		Sales:      sales,
		MarketSize: market,
		AgeOfStore: age,
		Week:       week,
	}
}

func newTable(t *testing.T, rows ...promo.Observation) *promo.Table {
	t.Helper()
	table, err := promo.NewTable("1", "2", rows)
	require.NoError(t, err)
	return table
}

// balancedTable is a 2x2 design with two observations per cell: promotion
// adds 2, a large market adds 4, and there is no interaction. Cell residuals
// are all +-1.
func balancedTable(t *testing.T) *promo.Table {
	return newTable(t,
		obs("1", 10, "Large", 2, 1), obs("1", 12, "Large", 3, 2),
		obs("1", 6, "Small", 7, 1), obs("1", 8, "Small", 8, 2),
		obs("2", 8, "Large", 2, 1), obs("2", 10, "Large", 3, 2),
		obs("2", 4, "Small", 7, 1), obs("2", 6, "Small", 8, 2),
	)
}
