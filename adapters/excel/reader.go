// Package excel imports and exports tabular files. Excel worksheets go
// through excelize; CSV through the standard library reader. Both paths feed
// the same row pipeline, so format differences end at parsing.
package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabkit/domain/core"
	"tabkit/domain/dataset"
	"tabkit/internal"
)

// Reader imports Excel and CSV files as datasets
type Reader struct {
	logger *internal.Logger
}

// NewReader creates a dataset file reader
func NewReader() *Reader {
	return &Reader{logger: internal.DefaultLogger}
}

// Read loads the file at path into a table. The dataset name is the file
// name without its extension. Columns whose non-blank values all parse as
// numbers become float64 columns with blanks read as NaN; everything else
// stays as strings with blanks read as missing.
func (r *Reader) Read(path string) (string, dataset.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", dataset.Table{}, fmt.Errorf("%w: %s", core.ErrNotFound, path)
	}

	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".xlsx", ".xlsm":
		rows, err = readExcelRows(path)
	default:
		return "", dataset.Table{}, fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidFormat, ext)
	}
	if err != nil {
		return "", dataset.Table{}, err
	}

	table, err := rowsToTable(rows)
	if err != nil {
		return "", dataset.Table{}, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	r.logger.Info("imported %s (%d columns, %d rows)", path, table.ColumnCount(), table.RowCount())
	return name, table, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	// First sheet, whatever it is named.
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrInvalidFormat)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidFormat, err)
	}
	return rows, nil
}

// rowsToTable converts raw string rows (header first) into a typed table
func rowsToTable(rows [][]string) (dataset.Table, error) {
	if len(rows) < 1 {
		return dataset.Table{}, fmt.Errorf("%w: file has no header row", core.ErrInvalidFormat)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}

	raw := make([][]string, len(headers))
	for i := range raw {
		raw[i] = make([]string, len(rows)-1)
	}
	for rowIdx, row := range rows[1:] {
		for colIdx := range headers {
			if colIdx < len(row) {
				raw[colIdx][rowIdx] = strings.TrimSpace(row[colIdx])
			}
		}
	}

	table := dataset.NewTable()
	for i, name := range headers {
		if err := table.AddColumn(name, typeColumn(raw[i])); err != nil {
			return dataset.Table{}, err
		}
	}
	return table, nil
}

// typeColumn decides between a numeric and a text column. A column counts as
// numeric when every non-blank cell parses as a float and at least one does.
func typeColumn(values []string) []any {
	numeric := false
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
			break
		}
		numeric = true
	}

	out := make([]any, len(values))
	for i, v := range values {
		switch {
		case numeric && v == "":
			out[i] = math.NaN()
		case numeric:
			f, _ := strconv.ParseFloat(v, 64)
			out[i] = f
		case v == "":
			out[i] = nil
		default:
			out[i] = v
		}
	}
	return out
}
