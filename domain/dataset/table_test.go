package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabkit/domain/core"
)

func buildTable(t *testing.T) Table {
	t.Helper()
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("time", []any{0.0, 1.0, 2.0}))
	require.NoError(t, tbl.AddColumn("signal", []any{10.0, 20.0, 30.0}))
	require.NoError(t, tbl.AddColumn("label", []any{"a", "b", "c"}))
	return tbl
}

func TestTableAddColumn(t *testing.T) {
	tbl := buildTable(t)

	assert.Equal(t, []string{"time", "signal", "label"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.RowCount())

	// Duplicate name rejected
	err := tbl.AddColumn("signal", []any{1.0, 2.0, 3.0})
	assert.ErrorIs(t, err, core.ErrDuplicateName)

	// Length mismatch rejected
	err = tbl.AddColumn("short", []any{1.0})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)

	// Empty name rejected
	err = tbl.AddColumn("", []any{1.0, 2.0, 3.0})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestTableNumericColumn(t *testing.T) {
	tbl := buildTable(t)

	values, err := tbl.NumericColumn("signal")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, values)

	_, err = tbl.NumericColumn("label")
	assert.ErrorIs(t, err, core.ErrNonNumericColumn)

	_, err = tbl.NumericColumn("missing")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	assert.True(t, tbl.IsNumericColumn("time"))
	assert.False(t, tbl.IsNumericColumn("label"))
}

func TestTableNumericColumnNilIsNaN(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("v", []any{1.0, nil, 3.0}))

	values, err := tbl.NumericColumn("v")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(values[1]))
}

func TestTableCopyIsDeep(t *testing.T) {
	tbl := buildTable(t)
	cp := tbl.Copy()

	require.NoError(t, cp.SetColumn("signal", []any{0.0, 0.0, 0.0}))
	cp.InsertRow(0, map[string]any{"time": -1.0})

	original, err := tbl.NumericColumn("signal")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, original)
	assert.Equal(t, 3, tbl.RowCount())
	assert.Equal(t, 4, cp.RowCount())
}

func TestTableInsertRow(t *testing.T) {
	tbl := buildTable(t)

	// Insert in the middle; missing columns become nil
	tbl.InsertRow(1, map[string]any{"time": 0.5, "signal": 15.0})
	require.Equal(t, 4, tbl.RowCount())

	row, err := tbl.Row(1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, row["time"])
	assert.Equal(t, 15.0, row["signal"])
	assert.Nil(t, row["label"])

	// Negative position appends
	tbl.InsertRow(-1, map[string]any{"time": 3.0})
	row, err = tbl.Row(4)
	require.NoError(t, err)
	assert.Equal(t, 3.0, row["time"])
}

func TestTableDropColumn(t *testing.T) {
	tbl := buildTable(t)

	require.NoError(t, tbl.DropColumn("signal"))
	assert.Equal(t, []string{"time", "label"}, tbl.ColumnNames())

	err := tbl.DropColumn("signal")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestDatasetSetDataAtomicSwap(t *testing.T) {
	tbl := buildTable(t)
	ds := NewWithTable("run1", tbl)

	before := ds.Fingerprint()

	next := ds.Data().Copy()
	require.NoError(t, next.SetColumn("signal", []any{1.0, 2.0, 3.0}))
	ds.SetData(next)

	assert.NotEqual(t, before, ds.Fingerprint())
	updated, err := ds.Data().NumericColumn("signal")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, updated)
}
