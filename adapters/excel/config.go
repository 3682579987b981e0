package excel

import "autotable/domain/core"

// DefaultFileName is the workbook name used when none is configured; the
// .xlsx extension is appended on save
const DefaultFileName = "_Results"

// WriterConfig holds configuration for the workbook writer
type WriterConfig struct {
	FileName string `json:"file_name" yaml:"file_name"`
	// Title is stamped into the workbook properties
	Title string `json:"title" yaml:"title"`
	// ColumnWidth applies to every used column
	ColumnWidth float64 `json:"column_width" yaml:"column_width"`
	// LineHeight is the row height per line of cell text
	LineHeight float64 `json:"line_height" yaml:"line_height"`
	// ConfigHash identifies the report definition the workbook came from
	ConfigHash core.Hash `json:"config_hash" yaml:"config_hash"`
}

// DefaultWriterConfig returns the writer defaults
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		FileName:    DefaultFileName,
		ColumnWidth: 20,
		LineHeight:  15,
	}
}

// ReaderConfig holds configuration for the data reader
type ReaderConfig struct {
	// Sheet to read from workbooks; empty means the first sheet
	Sheet string `json:"sheet" yaml:"sheet"`
}
