package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"promolift/domain/core"
	"promolift/domain/promo"
	"promolift/internal/errors"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Column headers the reader requires. Anything else in the file is ignored.
const (
	ColumnPromotion  = "Promotion"
	ColumnSales      = "SalesInThousands"
	ColumnMarketSize = "MarketSize"
	ColumnAgeOfStore = "AgeOfStore"
	ColumnWeek       = "week"
)

// RequiredColumns lists the headers every dataset must carry
var RequiredColumns = []string{ColumnPromotion, ColumnSales, ColumnMarketSize, ColumnAgeOfStore, ColumnWeek}

// maxReportedLines caps how many rejected line numbers one error lists
const maxReportedLines = 10

// DataReader loads the promotion dataset from a CSV or XLSX file
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	groupA   promo.GroupLabel
	groupB   promo.GroupLabel
	log      *logrus.Entry
}

// NewDataReader creates a reader; the file type follows the extension.
// Group labels are normalized like cell labels, so "1.0" selects promotion 1.
func NewDataReader(cfg Config) *DataReader {
	ext := strings.ToLower(filepath.Ext(cfg.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	sheet := cfg.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &DataReader{
		filePath: cfg.FilePath,
		fileType: fileType,
		sheet:    sheet,
		groupA:   promo.GroupLabel(normalizeLabel(strings.TrimSpace(cfg.GroupA))),
		groupB:   promo.GroupLabel(normalizeLabel(strings.TrimSpace(cfg.GroupB))),
		log:      logrus.WithField("component", "DataReader"),
	}
}

// Source is the file the reader loads
func (r *DataReader) Source() string {
	return r.filePath
}

// Load reads the file and builds the table
func (r *DataReader) Load(ctx context.Context) (*promo.Table, error) {
	r.log.Infof("reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	content, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s file", r.fileType)
	}

	var rows [][]string
	switch r.fileType {
	case "csv":
		rows, err = ReadCSV(bytes.NewReader(content))
	default:
		rows, err = r.readExcel(content)
	}
	if err != nil {
		return nil, err
	}
	r.log.Debugf("%d raw rows read in %.2fms", len(rows), float64(time.Since(start).Nanoseconds())/1e6)

	table, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	stats := table.LoadStats()
	stats.Checksum = core.NewHash(content)
	return table.WithLoadStats(stats), nil
}

func (r *DataReader) readExcel(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", r.sheet)
	}
	return rows, nil
}

// ReadCSV reads every record; rows may have a varying number of fields
func ReadCSV(in io.Reader) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	return rows, nil
}

// processRows parses raw records into a table. Line numbers in errors are
// 1-based file lines, so the first data row is line 2.
func (r *DataReader) processRows(rows [][]string) (*promo.Table, error) {
	if len(rows) == 0 {
		return nil, errors.ValidationError("file has no header row")
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var (
		observations []promo.Observation
		excluded     int
		rejected     []int
		firstReason  string
	)
	for i := 1; i < len(rows); i++ {
		line := i + 1
		if blankRow(rows[i]) {
			continue
		}
		obs, err := parseRow(rows[i], index)
		if err != nil {
			if firstReason == "" {
				firstReason = err.Error()
			}
			rejected = append(rejected, line)
			continue
		}
		if obs.Group != r.groupA && obs.Group != r.groupB {
			excluded++
			continue
		}
		observations = append(observations, obs)
	}

	if len(rejected) > 0 {
		return nil, malformedError(rejected, firstReason)
	}

	read := len(observations) + excluded
	if excluded > 0 {
		r.log.WithField("excluded", excluded).Warnf("rows outside groups %s and %s were excluded", r.groupA, r.groupB)
	}

	table, err := promo.NewTable(r.groupA, r.groupB, observations)
	if err != nil {
		return nil, err
	}
	for _, g := range table.Groups() {
		if table.Sample(g).Len() == 0 {
			return nil, errors.InsufficientData(fmt.Sprintf("group %s has no observations", g))
		}
	}

	table = table.WithLoadStats(promo.LoadStats{
		Source:       r.filePath,
		RowsRead:     read,
		RowsExcluded: excluded,
	})
	r.log.WithFields(logrus.Fields{
		"rows":     table.Len(),
		"excluded": excluded,
		"group_a":  table.SampleA().Len(),
		"group_b":  table.SampleB().Len(),
	}).Info("dataset loaded")
	return table, nil
}

// headerIndex maps each required column to its position
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(RequiredColumns))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.ValidationError("missing required columns: " + strings.Join(missing, ", "))
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) (promo.Observation, error) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for _, col := range RequiredColumns {
		if cell(col) == "" {
			return promo.Observation{}, fmt.Errorf("%s is empty", col)
		}
	}

	sales, err := strconv.ParseFloat(cell(ColumnSales), 64)
	if err != nil || math.IsNaN(sales) || math.IsInf(sales, 0) {
		return promo.Observation{}, fmt.Errorf("%s %q is not a finite number", ColumnSales, cell(ColumnSales))
	}
	age, err := strconv.ParseFloat(cell(ColumnAgeOfStore), 64)
	if err != nil || math.IsNaN(age) || math.IsInf(age, 0) || age < 0 {
		return promo.Observation{}, fmt.Errorf("%s %q is not a non-negative number", ColumnAgeOfStore, cell(ColumnAgeOfStore))
	}
	week, err := parseWeek(cell(ColumnWeek))
	if err != nil {
		return promo.Observation{}, err
	}

	return promo.Observation{
		Group:      promo.GroupLabel(normalizeLabel(cell(ColumnPromotion))),
		Sales:      sales,
		MarketSize: cell(ColumnMarketSize),
		AgeOfStore: age,
		Week:       week,
	}, nil
}

// parseWeek accepts "3" and spreadsheet-style "3.0"
func parseWeek(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < promo.MinWeek || f > promo.MaxWeek {
		return 0, fmt.Errorf("%s %q is not an integer in %d..%d", ColumnWeek, s, promo.MinWeek, promo.MaxWeek)
	}
	return int(f), nil
}

// normalizeLabel turns numeric labels like "1.0" into "1"
func normalizeLabel(s string) string {
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func malformedError(lines []int, firstReason string) error {
	shown := lines
	if len(shown) > maxReportedLines {
		shown = shown[:maxReportedLines]
	}
	parts := make([]string, len(shown))
	for i, l := range shown {
		parts[i] = strconv.Itoa(l)
	}
	reason := fmt.Sprintf("%d malformed rows (lines %s", len(lines), strings.Join(parts, ", "))
	if len(lines) > len(shown) {
		reason += ", ..."
	}
	reason += "): " + firstReason
	if len(lines) == 1 {
		return errors.MalformedRow(lines[0], firstReason)
	}
	return errors.New(errors.CodeMalformedRow, reason)
}
