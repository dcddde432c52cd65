package excel

import "promolift/internal/config"

// DefaultSheet is read from XLSX workbooks when no sheet is configured
const DefaultSheet = "Sheet1"

// Config holds configuration for the dataset file
type Config struct {
	FilePath string `json:"file_path"`
	Sheet    string `json:"sheet"`
	GroupA   string `json:"group_a"`
	GroupB   string `json:"group_b"`
}

// ConfigFrom maps the application data config onto the reader
func ConfigFrom(data config.DataConfig) Config {
	return Config{
		FilePath: data.Path,
		Sheet:    data.Sheet,
		GroupA:   data.GroupALabel,
		GroupB:   data.GroupBLabel,
	}
}
