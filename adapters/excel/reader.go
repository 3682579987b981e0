package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"autotable/domain/dataset"
	"autotable/internal"
	"autotable/ports"
)

// DataReader loads CSV and XLSX files into frames
type DataReader struct {
	cfg    ReaderConfig
	logger *internal.Logger
}

var _ ports.DataSource = (*DataReader)(nil)

// NewDataReader creates a reader for CSV and XLSX files
func NewDataReader(cfg ReaderConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{cfg: cfg, logger: logger.Named("reader")}
}

// Load reads the file at path. The extension picks the format: .csv is
// read as CSV, anything else as a workbook. The first row is the header.
func (r *DataReader) Load(ctx context.Context, path string) (*dataset.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("data file not found: %w", err)
	}

	start := time.Now()
	var rows [][]string
	var err error
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		rows, err = readCSV(path)
	} else {
		rows, err = r.readWorkbook(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		if header[i] == "" {
			header[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	frame, err := dataset.FromRecords(header, rows[1:])
	if err != nil {
		return nil, fmt.Errorf("failed to build frame from %s: %w", path, err)
	}
	r.logger.Info("loaded %s: %d columns, %d rows in %s", filepath.Base(path), len(header), frame.Len(), time.Since(start).Round(time.Millisecond))
	return frame, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.cfg.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
