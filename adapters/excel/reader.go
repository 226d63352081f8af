package excel

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"dataportal/domain/dataset"
	"dataportal/internal"
	"dataportal/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV uploads
type DataReader struct {
	config ReaderConfig
	logger *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{config: config, logger: logger}
}

// DetectFormat picks the reader from the file extension. Only .csv and
// .xlsx/.xlsm are accepted; anything else is an error rather than a guess.
func DetectFormat(filename string) (dataset.Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return dataset.FormatCSV, nil
	case ".xlsx", ".xlsm":
		return dataset.FormatExcel, nil
	default:
		return "", errors.UnsupportedFile(filename)
	}
}

// Read reads an upload named filename into raw rows
func (r *DataReader) Read(filename string, src io.Reader) (*RawData, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("[DataReader] Starting to read %s file: %s", format, filename)
	switch format {
	case dataset.FormatCSV:
		return r.readCSVData(src)
	default:
		return r.readExcelData(src)
	}
}

// readExcelData reads the first sheet of a workbook
func (r *DataReader) readExcelData(src io.Reader) (*RawData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, &errors.AppError{Code: errors.CodeInvalidInput, Message: "file is not a readable Excel workbook", Cause: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("Excel workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := readCellValues(f, sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheet)
	}
	r.logger.Debug("[DataReader] Sheet %q read in %s (%d rows)", sheet, internal.Since(startTime), len(rows))

	data, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	data.Format = dataset.FormatExcel
	data.Sheet = sheet
	return data, nil
}

// readCSVData reads CSV data, detecting the delimiter from the header line
func (r *DataReader) readCSVData(src io.Reader) (*RawData, error) {
	buffered := bufio.NewReader(src)
	header, err := buffered.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}

	reader := csv.NewReader(buffered)
	reader.Comma = detectDelimiter(header)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &errors.AppError{Code: errors.CodeInvalidInput, Message: "file is not valid CSV", Cause: err}
	}
	r.logger.Debug("[DataReader] CSV file read in %s (%d rows)", internal.Since(readStart), len(rows))

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	data, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	data.Format = dataset.FormatCSV
	return data, nil
}

// detectDelimiter picks the most frequent of , ; and tab on the first line
func detectDelimiter(sample []byte) rune {
	if i := bytes.IndexAny(sample, "\r\n"); i >= 0 {
		sample = sample[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(string(sample), string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// processRows splits off the header and pads data rows to its width
func (r *DataReader) processRows(rows [][]string) (*RawData, error) {
	rows = dropTrailingEmptyRows(rows)
	if len(rows) == 0 {
		return nil, errors.InvalidInput("file is empty: a header row is required")
	}

	dataRows := rows[1:]
	if r.config.MaxRows > 0 && len(dataRows) > r.config.MaxRows {
		return nil, errors.TooLarge(fmt.Sprintf("file has %d rows, the limit is %d", len(dataRows), r.config.MaxRows))
	}

	width := len(rows[0])
	for _, row := range dataRows {
		if len(row) > width {
			width = len(row)
		}
	}

	headerRow := make([]string, width)
	copy(headerRow, rows[0])
	headers := UniqueHeaders(headerRow)

	padded := make([][]string, len(dataRows))
	for i, row := range dataRows {
		cells := make([]string, width)
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		padded[i] = cells
	}

	r.logger.Debug("[DataReader] processed %d columns, %d rows", len(headers), len(padded))
	return &RawData{Headers: headers, Rows: padded}, nil
}

// UniqueHeaders trims header names, names blank ones "Unnamed: i" and
// suffixes repeats with ".1", ".2", ...
func UniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for taken[name] {
			seen[h]++
			name = fmt.Sprintf("%s.%d", h, seen[h])
		}
		taken[name] = true
		headers[i] = name
	}
	return headers
}

func dropTrailingEmptyRows(rows [][]string) [][]string {
	for len(rows) > 0 && isEmptyRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
