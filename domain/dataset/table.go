package dataset

import (
	"fmt"
	"math"

	"tabkit/domain/core"
)

// Table is the canonical tabular data object: an ordered set of named columns,
// all of equal length. Mutating operations return a new Table (copy-then-replace);
// a Table held by a Dataset is never modified in place.
type Table struct {
	order []string
	cells map[string][]any
}

// NewTable creates an empty table
func NewTable() Table {
	return Table{cells: make(map[string][]any)}
}

// NewTableFromColumns builds a table from an explicit column order and cell data.
// Every column must be present in cells and all columns must have equal length.
func NewTableFromColumns(order []string, cells map[string][]any) (Table, error) {
	t := NewTable()
	for _, name := range order {
		values, ok := cells[name]
		if !ok {
			return Table{}, fmt.Errorf("%w %q", core.ErrColumnNotFound, name)
		}
		if err := t.AddColumn(name, values); err != nil {
			return Table{}, err
		}
	}
	return t, nil
}

// ColumnNames returns the column names in order
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)
	return names
}

// ColumnCount returns the number of columns
func (t Table) ColumnCount() int {
	return len(t.order)
}

// RowCount returns the number of rows (0 for an empty table)
func (t Table) RowCount() int {
	if len(t.order) == 0 {
		return 0
	}
	return len(t.cells[t.order[0]])
}

// HasColumn checks whether a column exists
func (t Table) HasColumn(name string) bool {
	_, ok := t.cells[name]
	return ok
}

// Column returns a copy of a column's values
func (t Table) Column(name string) ([]any, error) {
	values, ok := t.cells[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", core.ErrColumnNotFound, name)
	}
	out := make([]any, len(values))
	copy(out, values)
	return out, nil
}

// AddColumn appends a new column in place. The table must be a private copy;
// callers working against a live Dataset table go through Copy first.
func (t *Table) AddColumn(name string, values []any) error {
	if name == "" {
		return core.NewInvalidInputError("column name cannot be empty")
	}
	if _, exists := t.cells[name]; exists {
		return core.NewDuplicateNameError("column", name)
	}
	if len(t.order) > 0 && len(values) != t.RowCount() {
		return fmt.Errorf("%w: column %q has %d values, table has %d rows",
			core.ErrLengthMismatch, name, len(values), t.RowCount())
	}
	if t.cells == nil {
		t.cells = make(map[string][]any)
	}
	stored := make([]any, len(values))
	copy(stored, values)
	t.order = append(t.order, name)
	t.cells[name] = stored
	return nil
}

// SetColumn replaces a column's values in place, or adds the column if absent
func (t *Table) SetColumn(name string, values []any) error {
	if !t.HasColumn(name) {
		return t.AddColumn(name, values)
	}
	if len(values) != t.RowCount() {
		return fmt.Errorf("%w: column %q has %d values, table has %d rows",
			core.ErrLengthMismatch, name, len(values), t.RowCount())
	}
	stored := make([]any, len(values))
	copy(stored, values)
	t.cells[name] = stored
	return nil
}

// DropColumn removes a column in place
func (t *Table) DropColumn(name string) error {
	if !t.HasColumn(name) {
		return fmt.Errorf("%w %q", core.ErrColumnNotFound, name)
	}
	delete(t.cells, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Row returns the values of a single row keyed by column name
func (t Table) Row(index int) (map[string]any, error) {
	if index < 0 || index >= t.RowCount() {
		return nil, core.NewInvalidInputError(fmt.Sprintf("row index %d out of range", index))
	}
	row := make(map[string]any, len(t.order))
	for _, name := range t.order {
		row[name] = t.cells[name][index]
	}
	return row, nil
}

// InsertRow inserts a row at position (negative or past-the-end means append).
// Missing columns in values are filled with nil. The receiver is mutated; use
// on a private copy only.
func (t *Table) InsertRow(position int, values map[string]any) {
	n := t.RowCount()
	if position < 0 || position > n {
		position = n
	}
	for _, name := range t.order {
		col := t.cells[name]
		v, ok := values[name]
		if !ok {
			v = nil
		}
		col = append(col, nil)
		copy(col[position+1:], col[position:])
		col[position] = v
		t.cells[name] = col
	}
}

// Copy produces a deep copy of the table
func (t Table) Copy() Table {
	out := Table{
		order: make([]string, len(t.order)),
		cells: make(map[string][]any, len(t.cells)),
	}
	copy(out.order, t.order)
	for name, values := range t.cells {
		stored := make([]any, len(values))
		copy(stored, values)
		out.cells[name] = stored
	}
	return out
}

// NumericColumn coerces a column to float64 values. Nil cells become NaN;
// any non-numeric cell is an invalid-input error.
func (t Table) NumericColumn(name string) ([]float64, error) {
	values, ok := t.cells[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", core.ErrColumnNotFound, name)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: column %q row %d holds %T",
				core.ErrNonNumericColumn, name, i, v)
		}
		out[i] = f
	}
	return out, nil
}

// IsNumericColumn reports whether every cell of a column is numeric (or nil)
func (t Table) IsNumericColumn(name string) bool {
	values, ok := t.cells[name]
	if !ok {
		return false
	}
	for _, v := range values {
		if _, ok := toFloat(v); !ok {
			return false
		}
	}
	return true
}

// Cells returns a deep copy of the raw cell data (for serialization)
func (t Table) Cells() map[string][]any {
	out := make(map[string][]any, len(t.cells))
	for name, values := range t.cells {
		stored := make([]any, len(values))
		copy(stored, values)
		out[name] = stored
	}
	return out
}

// Fingerprint computes a content hash over the table for change detection
func (t Table) Fingerprint() core.TableHash {
	return core.ComputeTableHash(t.cells)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
