package testkit

import (
	"context"
	"path/filepath"
	"testing"

	"promolift/adapters/excel"
	"promolift/domain/promo"
	"promolift/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromotionDataGenerator_Deterministic(t *testing.T) {
	cfg := DefaultPromotionConfig()

	first, err := NewPromotionDataGenerator(cfg).Generate()
	require.NoError(t, err)
	second, err := NewPromotionDataGenerator(cfg).Generate()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cfg.Seed = 7
	other, err := NewPromotionDataGenerator(cfg).Generate()
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestPromotionDataGenerator_Shape(t *testing.T) {
	cfg := DefaultPromotionConfig()
	rows, err := NewPromotionDataGenerator(cfg).Generate()
	require.NoError(t, err)
	require.Len(t, rows, cfg.Locations*promo.MaxWeek)

	perPromotion := make(map[string]int)
	for _, r := range rows {
		perPromotion[r.Promotion]++
		assert.GreaterOrEqual(t, r.Week, promo.MinWeek)
		assert.LessOrEqual(t, r.Week, promo.MaxWeek)
		assert.Contains(t, MarketSizes, r.MarketSize)
		assert.Positive(t, r.Sales)
		assert.GreaterOrEqual(t, r.AgeOfStore, 1)
	}
	assert.Len(t, perPromotion, 3)
	for _, n := range perPromotion {
		assert.InDelta(t, len(rows)/3, n, promo.MaxWeek)
	}
}

func TestPromotionDataGenerator_InvalidConfig(t *testing.T) {
	cfg := DefaultPromotionConfig()
	cfg.Locations = 0
	_, err := NewPromotionDataGenerator(cfg).Generate()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestWriteFile_RoundTrip(t *testing.T) {
	rows, err := NewPromotionDataGenerator(DefaultPromotionConfig()).Generate()
	require.NoError(t, err)
	want, err := ToTable(rows, "1", "2")
	require.NoError(t, err)

	for _, name := range []string{"campaign.csv", "campaign.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, rows))

			reader := excel.NewDataReader(excel.Config{FilePath: path, GroupA: "1", GroupB: "2"})
			got, err := reader.Load(context.Background())
			require.NoError(t, err)

			assert.Equal(t, want.Rows(), got.Rows())
			assert.Equal(t, len(rows), got.LoadStats().RowsRead)
			assert.Equal(t, len(rows)-want.Len(), got.LoadStats().RowsExcluded)
		})
	}
}

func TestWriteFile_UnsupportedExtension(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "campaign.json"), nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
