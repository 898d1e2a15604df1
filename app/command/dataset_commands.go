package command

import (
	"fmt"
	"math"

	"tabkit/domain/analysis"
	"tabkit/domain/core"
	"tabkit/domain/dataset"
	"tabkit/domain/project"
	"tabkit/ports"
)

func emitDatasetChanged(sink ports.EventSink, p *project.Project, id core.ItemID,
	ds *dataset.Dataset, operation string, details map[string]any) {
	if sink == nil {
		return
	}
	sink.Publish(DatasetChangedEvent{
		Project:     p,
		DatasetID:   id,
		DatasetName: ds.Name,
		Operation:   operation,
		Details:     details,
		Data:        ds.Data(),
	})
}

// AddColumnCommand adds a column with a uniform default value. Undo restores
// the full pre-mutation table snapshot.
type AddColumnCommand struct {
	project       *project.Project
	events        ports.EventSink
	datasetItemID core.ItemID
	columnName    string
	defaultValue  any

	prevTable dataset.Table
	postTable dataset.Table
}

// NewAddColumnCommand constructs an add-column command (not yet applied)
func NewAddColumnCommand(p *project.Project, events ports.EventSink,
	datasetItemID core.ItemID, columnName string, defaultValue any) *AddColumnCommand {
	return &AddColumnCommand{
		project:       p,
		events:        events,
		datasetItemID: datasetItemID,
		columnName:    columnName,
		defaultValue:  defaultValue,
	}
}

func (c *AddColumnCommand) Execute() error {
	ds, err := c.project.Dataset(c.datasetItemID)
	if err != nil {
		return err
	}
	if c.columnName == "" {
		return core.NewInvalidInputError("column name cannot be empty")
	}
	if ds.Data().HasColumn(c.columnName) {
		return core.NewDuplicateNameError("column", c.columnName)
	}

	c.prevTable = ds.Data().Copy()

	next := ds.Data().Copy()
	values := make([]any, next.RowCount())
	for i := range values {
		values[i] = c.defaultValue
	}
	if err := next.AddColumn(c.columnName, values); err != nil {
		return err
	}

	ds.SetData(next)
	c.postTable = next

	emitDatasetChanged(c.events, c.project, c.datasetItemID, ds, "add_column",
		map[string]any{"column": c.columnName})
	return nil
}

func (c *AddColumnCommand) Undo() error {
	ds, err := c.project.Dataset(c.datasetItemID)
	if err != nil {
		return err
	}
	ds.SetData(c.prevTable.Copy())
	emitDatasetChanged(c.events, c.project, c.datasetItemID, ds, "undo_add_column",
		map[string]any{"column": c.columnName})
	return nil
}

func (c *AddColumnCommand) Redo() error {
	ds, err := c.project.Dataset(c.datasetItemID)
	if err != nil {
		return err
	}
	ds.SetData(c.postTable.Copy())
	emitDatasetChanged(c.events, c.project, c.datasetItemID, ds, "add_column",
		map[string]any{"column": c.columnName})
	return nil
}

func (c *AddColumnCommand) Description() string {
	return fmt.Sprintf("Add column %q", c.columnName)
}

// AddRowCommand inserts a row at a position (negative position appends).
// Undo restores the entire pre-mutation table rather than attempting an
// inverse splice, which sidesteps index drift over repeated undo/redo cycles.
type AddRowCommand struct {
	project       *project.Project
	events        ports.EventSink
	datasetItemID core.ItemID
	position      int
	values        map[string]any

	prevTable dataset.Table
	postTable dataset.Table
}

// NewAddRowCommand constructs an add-row command (not yet applied)
func NewAddRowCommand(p *project.Project, events ports.EventSink,
	datasetItemID core.ItemID, position int, values map[string]any) *AddRowCommand {
	return &AddRowCommand{
		project:       p,
		events:        events,
		datasetItemID: datasetItemID,
		position:      position,
		values:        values,
	}
}

func (c *AddRowCommand) Execute() error {
	ds, err := c.project.Dataset(c.datasetItemID)
	if err != nil {
		return err
	}
	for name := range c.values {
		if !ds.Data().HasColumn(name) {
			return core.NewNotFoundError("column", name)
		}
	}

	c.prevTable = ds.Data().Copy()

	next := ds.Data().Copy()
	next.InsertRow(c.position, c.values)
	ds.SetData(next)
	c.postTable = next

	emitDatasetChanged(c.events, c.project, c.datasetItemID, ds, "add_row",
		map[string]any{"position": c.position})
	return nil
}

func (c *AddRowCommand) Undo() error {
	ds, err := c.project.Dataset(c.datasetItemID)
	if err != nil {
		return err
	}
	ds.SetData(c.prevTable.Copy())
	emitDatasetChanged(c.events, c.project, c.datasetItemID, ds, "undo_add_row",
		map[string]any{"position": c.position})
	return nil
}

func (c *AddRowCommand) Redo() error {
	ds, err := c.project.Dataset(c.datasetItemID)
	if err != nil {
		return err
	}
	ds.SetData(c.postTable.Copy())
	emitDatasetChanged(c.events, c.project, c.datasetItemID, ds, "add_row",
		map[string]any{"position": c.position})
	return nil
}

func (c *AddRowCommand) Description() string {
	return "Add row"
}

// ApplyAnalysisCommand runs an analysis over two source columns and merges
// the result series into the dataset as a new (or replaced) column. Undo
// snapshots only the affected column: the saved prior values when the column
// existed before, or a drop when it did not.
type ApplyAnalysisCommand struct {
	project       *project.Project
	events        ports.EventSink
	runner        AnalysisRunner
	datasetItemID core.ItemID
	xColumn       string
	yColumn       string
	newColumn     string
	analysisType  analysis.Type
	method        string
	params        analysis.Parameters
	replace       bool

	result        *analysis.Result
	resultColumn  []any
	prevValues    []any
	columnExisted bool
}

// NewApplyAnalysisCommand constructs an analysis-apply command (not yet applied)
func NewApplyAnalysisCommand(p *project.Project, events ports.EventSink, runner AnalysisRunner,
	datasetItemID core.ItemID, xColumn, yColumn, newColumn string,
	analysisType analysis.Type, method string, params analysis.Parameters,
	replaceExisting bool) *ApplyAnalysisCommand {
	return &ApplyAnalysisCommand{
		project:       p,
		events:        events,
		runner:        runner,
		datasetItemID: datasetItemID,
		xColumn:       xColumn,
		yColumn:       yColumn,
		newColumn:     newColumn,
		analysisType:  analysisType,
		method:        method,
		params:        params,
		replace:       replaceExisting,
	}
}

// Result exposes the computed analysis bundle after a successful execute
func (c *ApplyAnalysisCommand) Result() *analysis.Result {
	return c.result
}

func (c *ApplyAnalysisCommand) validate(table dataset.Table) error {
	if c.newColumn == "" {
		return core.NewInvalidInputError("new column name cannot be empty")
	}
	for _, name := range []string{c.xColumn, c.yColumn} {
		if !table.HasColumn(name) {
			return core.NewNotFoundError("source column", name)
		}
		if !table.IsNumericColumn(name) {
			return fmt.Errorf("%w: %q", core.ErrNonNumericColumn, name)
		}
	}
	if table.HasColumn(c.newColumn) && !c.replace {
		return core.NewDuplicateNameError("column", c.newColumn)
	}
	return nil
}

func (c *ApplyAnalysisCommand) Execute() error {
	ds, err := c.project.Dataset(c.datasetItemID)
	if err != nil {
		return err
	}
	table := ds.Data()

	// Everything that can fail runs before any snapshot is taken.
	if err := c.validate(table); err != nil {
		return err
	}
	x, err := table.NumericColumn(c.xColumn)
	if err != nil {
		return err
	}
	y, err := table.NumericColumn(c.yColumn)
	if err != nil {
		return err
	}
	result, err := c.runner.Run(c.analysisType, c.method, x, y, c.params)
	if err != nil {
		return err
	}
	result.SourceColumns = []string{c.xColumn, c.yColumn}
	c.result = result

	c.columnExisted = table.HasColumn(c.newColumn)
	if c.columnExisted {
		c.prevValues, err = table.Column(c.newColumn)
		if err != nil {
			return err
		}
	}

	c.resultColumn = seriesToColumn(result.Series, table.RowCount())

	next := table.Copy()
	if err := next.SetColumn(c.newColumn, c.resultColumn); err != nil {
		return err
	}
	ds.SetData(next)

	emitDatasetChanged(c.events, c.project, c.datasetItemID, ds, "apply_analysis",
		map[string]any{
			"analysis_type":  string(c.analysisType),
			"method":         c.method,
			"source_columns": []string{c.xColumn, c.yColumn},
			"new_column":     c.newColumn,
		})
	return nil
}

func (c *ApplyAnalysisCommand) Undo() error {
	return undoColumnMutation(c.project, c.events, c.datasetItemID, c.newColumn,
		c.columnExisted, c.prevValues, "undo_apply_analysis")
}

func (c *ApplyAnalysisCommand) Redo() error {
	return redoColumnMutation(c.project, c.events, c.datasetItemID, c.newColumn,
		c.resultColumn, "apply_analysis")
}

func (c *ApplyAnalysisCommand) Description() string {
	return fmt.Sprintf("Apply %s to %q", c.analysisType, c.yColumn)
}

// ApplyTransformCommand evaluates a column expression through the external
// evaluator and stores the result as a new (or replaced) column. Validation
// runs through the evaluator before any snapshot is taken; the same
// single-column undo strategy as analysis-apply.
type ApplyTransformCommand struct {
	project       *project.Project
	events        ports.EventSink
	evaluator     ports.Evaluator
	datasetItemID core.ItemID
	newColumn     string
	expression    string
	replace       bool

	resultColumn  []any
	prevValues    []any
	columnExisted bool
}

// NewApplyTransformCommand constructs a transform command (not yet applied)
func NewApplyTransformCommand(p *project.Project, events ports.EventSink, evaluator ports.Evaluator,
	datasetItemID core.ItemID, newColumn, expression string, replaceExisting bool) *ApplyTransformCommand {
	return &ApplyTransformCommand{
		project:       p,
		events:        events,
		evaluator:     evaluator,
		datasetItemID: datasetItemID,
		newColumn:     newColumn,
		expression:    expression,
		replace:       replaceExisting,
	}
}

func (c *ApplyTransformCommand) Execute() error {
	if err := c.evaluator.Validate(c.expression); err != nil {
		return err
	}

	ds, err := c.project.Dataset(c.datasetItemID)
	if err != nil {
		return err
	}
	table := ds.Data()

	if c.newColumn == "" {
		return core.NewInvalidInputError("new column name cannot be empty")
	}
	if table.HasColumn(c.newColumn) && !c.replace {
		return core.NewDuplicateNameError("column", c.newColumn)
	}

	// Bind every numeric column; the evaluator resolves identifiers itself.
	bindings := make(map[string][]float64)
	for _, name := range table.ColumnNames() {
		if !table.IsNumericColumn(name) {
			continue
		}
		values, err := table.NumericColumn(name)
		if err != nil {
			return err
		}
		bindings[name] = values
	}

	series, err := c.evaluator.Evaluate(c.expression, bindings, table.RowCount())
	if err != nil {
		return err
	}

	c.columnExisted = table.HasColumn(c.newColumn)
	if c.columnExisted {
		c.prevValues, err = table.Column(c.newColumn)
		if err != nil {
			return err
		}
	}
	c.resultColumn = seriesToColumn(series, table.RowCount())

	next := table.Copy()
	if err := next.SetColumn(c.newColumn, c.resultColumn); err != nil {
		return err
	}
	ds.SetData(next)

	emitDatasetChanged(c.events, c.project, c.datasetItemID, ds, "apply_transform",
		map[string]any{
			"expression": c.expression,
			"new_column": c.newColumn,
		})
	return nil
}

func (c *ApplyTransformCommand) Undo() error {
	return undoColumnMutation(c.project, c.events, c.datasetItemID, c.newColumn,
		c.columnExisted, c.prevValues, "undo_apply_transform")
}

func (c *ApplyTransformCommand) Redo() error {
	return redoColumnMutation(c.project, c.events, c.datasetItemID, c.newColumn,
		c.resultColumn, "apply_transform")
}

func (c *ApplyTransformCommand) Description() string {
	return fmt.Sprintf("Transform %q = %s", c.newColumn, c.expression)
}

// seriesToColumn fits a result series into a column of rowCount cells.
// Shorter results are padded with NaN beyond their length; equal-or-longer
// results fill the column directly.
func seriesToColumn(series []float64, rowCount int) []any {
	col := make([]any, rowCount)
	for i := 0; i < rowCount; i++ {
		if i < len(series) {
			col[i] = series[i]
		} else {
			col[i] = math.NaN()
		}
	}
	return col
}

// undoColumnMutation reverses a single-column mutation: restore the saved
// values when the column pre-existed, drop the column when it did not.
func undoColumnMutation(p *project.Project, events ports.EventSink, datasetItemID core.ItemID,
	column string, existed bool, prevValues []any, operation string) error {
	ds, err := p.Dataset(datasetItemID)
	if err != nil {
		return err
	}

	next := ds.Data().Copy()
	if existed {
		if err := next.SetColumn(column, prevValues); err != nil {
			return err
		}
	} else {
		if err := next.DropColumn(column); err != nil {
			return err
		}
	}
	ds.SetData(next)

	emitDatasetChanged(events, p, datasetItemID, ds, operation,
		map[string]any{"column": column})
	return nil
}

// redoColumnMutation re-applies a single-column mutation from the values
// captured at execute time.
func redoColumnMutation(p *project.Project, events ports.EventSink, datasetItemID core.ItemID,
	column string, values []any, operation string) error {
	ds, err := p.Dataset(datasetItemID)
	if err != nil {
		return err
	}

	next := ds.Data().Copy()
	if err := next.SetColumn(column, values); err != nil {
		return err
	}
	ds.SetData(next)

	emitDatasetChanged(events, p, datasetItemID, ds, operation,
		map[string]any{"column": column})
	return nil
}
