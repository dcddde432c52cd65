package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"promolift/domain/promo"
	"promolift/internal/errors"

	"github.com/xuri/excelize/v2"
)

// PromotionGeneratorConfig configures the synthetic promotion dataset
type PromotionGeneratorConfig struct {
	Locations   int                `json:"locations"` // each location contributes one row per week
	Markets     int                `json:"markets"`
	Promotions  []string           `json:"promotions"`
	BaseSales   map[string]float64 `json:"base_sales"`  // per promotion
	MarketLift  map[string]float64 `json:"market_lift"` // per market size
	Noise       float64            `json:"noise"`       // std of the per-week gaussian noise
	MaxStoreAge int                `json:"max_store_age"`
	Seed        int64              `json:"seed"`
}

// MarketSizes are the market size levels the generator draws from
var MarketSizes = []string{"Large", "Medium", "Small"}

// DefaultPromotionConfig mirrors the shape of the fast-food marketing
// campaign dataset: three promotions over four weeks.
func DefaultPromotionConfig() PromotionGeneratorConfig {
	return PromotionGeneratorConfig{
		Locations:  137,
		Markets:    10,
		Promotions: []string{"1", "2", "3"},
		BaseSales: map[string]float64{
			"1": 58.1,
			"2": 47.3,
			"3": 55.4,
		},
		MarketLift: map[string]float64{
			"Large":  20,
			"Medium": -5,
			"Small":  8,
		},
		Noise:       10,
		MaxStoreAge: 28,
		Seed:        42,
	}
}

// GeneratedRow is one store-week with the identifier columns of the source file
type GeneratedRow struct {
	MarketID   int
	MarketSize string
	LocationID int
	AgeOfStore int
	Promotion  string
	Week       int
	Sales      float64
}

// PromotionDataGenerator produces reproducible promotion datasets
type PromotionDataGenerator struct {
	config PromotionGeneratorConfig
	rng    *rand.Rand
}

// NewPromotionDataGenerator creates a generator; the same seed yields the same rows
func NewPromotionDataGenerator(config PromotionGeneratorConfig) *PromotionDataGenerator {
	return &PromotionDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate draws every row. Locations rotate through the promotions so each
// promotion gets a near-equal share.
func (g *PromotionDataGenerator) Generate() ([]GeneratedRow, error) {
	cfg := g.config
	if cfg.Locations <= 0 || cfg.Markets <= 0 || len(cfg.Promotions) == 0 {
		return nil, errors.InvalidInput("generator needs locations, markets and promotions")
	}

	marketSizes := make([]string, cfg.Markets)
	for m := range marketSizes {
		marketSizes[m] = MarketSizes[g.rng.Intn(len(MarketSizes))]
	}

	rows := make([]GeneratedRow, 0, cfg.Locations*promo.MaxWeek)
	for loc := 0; loc < cfg.Locations; loc++ {
		market := loc % cfg.Markets
		size := marketSizes[market]
		promotion := cfg.Promotions[loc%len(cfg.Promotions)]
		age := 1 + g.rng.Intn(max(cfg.MaxStoreAge, 1))
		locationEffect := g.rng.NormFloat64() * cfg.Noise / 2

		for week := promo.MinWeek; week <= promo.MaxWeek; week++ {
			sales := cfg.BaseSales[promotion] + cfg.MarketLift[size] + locationEffect + g.rng.NormFloat64()*cfg.Noise
			rows = append(rows, GeneratedRow{
				MarketID:   market + 1,
				MarketSize: size,
				LocationID: loc + 1,
				AgeOfStore: age,
				Promotion:  promotion,
				Week:       week,
				Sales:      math.Round(math.Max(sales, 1)*100) / 100,
			})
		}
	}
	return rows, nil
}

// Header is the column order of written files, matching the source dataset
var Header = []string{"MarketID", "MarketSize", "LocationID", "AgeOfStore", "Promotion", "week", "SalesInThousands"}

func (r GeneratedRow) record() []string {
	return []string{
		strconv.Itoa(r.MarketID),
		r.MarketSize,
		strconv.Itoa(r.LocationID),
		strconv.Itoa(r.AgeOfStore),
		r.Promotion,
		strconv.Itoa(r.Week),
		strconv.FormatFloat(r.Sales, 'f', 2, 64),
	}
}

// WriteFile writes rows as CSV or XLSX depending on the extension
func WriteFile(path string, rows []GeneratedRow) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, rows)
	case ".xlsx":
		return writeXLSX(path, rows)
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported output extension %q (want .csv or .xlsx)", filepath.Ext(path)))
	}
}

func writeCSV(path string, rows []GeneratedRow) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(Header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return errors.Wrap(err, "failed to write row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "failed to flush CSV file")
}

func writeXLSX(path string, rows []GeneratedRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "invalid cell")
		}
		values := []interface{}{r.MarketID, r.MarketSize, r.LocationID, r.AgeOfStore, r.Promotion, r.Week, r.Sales}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+2)
		}
	}
	return errors.Wrap(f.SaveAs(path), "failed to save workbook")
}

// ToTable keeps the rows of two promotions and builds an analysis table
func ToTable(rows []GeneratedRow, groupA, groupB string) (*promo.Table, error) {
	observations := make([]promo.Observation, 0, len(rows))
	for _, r := range rows {
		if r.Promotion != groupA && r.Promotion != groupB {
			continue
		}
		observations = append(observations, promo.Observation{
			Group:      promo.GroupLabel(r.Promotion),
			Sales:      r.Sales,
			MarketSize: r.MarketSize,
			AgeOfStore: float64(r.AgeOfStore),
			Week:       r.Week,
		})
	}
	return promo.NewTable(promo.GroupLabel(groupA), promo.GroupLabel(groupB), observations)
}
