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

// Writer exports datasets to Excel and CSV files
type Writer struct {
	logger *internal.Logger
}

// NewWriter creates a dataset file writer
func NewWriter() *Writer {
	return &Writer{logger: internal.DefaultLogger}
}

// Write exports the dataset's table to path, choosing the format from the
// extension. NaN and missing cells are written as empty cells.
func (w *Writer) Write(ds *dataset.Dataset, path string) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		err = writeCSV(ds.Data(), path)
	case ".xlsx":
		err = writeExcel(ds.Data(), path)
	default:
		return fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidFormat, ext)
	}
	if err != nil {
		return err
	}

	w.logger.Info("exported dataset %q to %s", ds.Name, path)
	return nil
}

func writeCSV(table dataset.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	headers := table.ColumnNames()
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := 0; i < table.RowCount(); i++ {
		row, err := table.Row(i)
		if err != nil {
			return err
		}
		record := make([]string, len(headers))
		for j, name := range headers {
			record[j] = formatCell(row[name])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeExcel(table dataset.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := table.ColumnNames()

	headerRow := make([]any, len(headers))
	for i, name := range headers {
		headerRow[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := 0; i < table.RowCount(); i++ {
		row, err := table.Row(i)
		if err != nil {
			return err
		}
		cells := make([]any, len(headers))
		for j, name := range headers {
			cells[j] = excelCell(row[name])
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ""
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// excelCell keeps native types where excelize can store them and blanks out
// the values Excel cannot represent
func excelCell(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}
