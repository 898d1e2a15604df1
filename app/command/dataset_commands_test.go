package command

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabkit/domain/analysis"
	"tabkit/domain/core"
	"tabkit/domain/project"
	"tabkit/internal/testkit"
	"tabkit/ports"
)

type fakeRunner struct {
	result *analysis.Result
	err    error
}

func (f *fakeRunner) Run(typ analysis.Type, method string, x, y []float64,
	params analysis.Parameters) (*analysis.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeEvaluator struct {
	validateErr error
	series      []float64
	evalErr     error
	lastBound   map[string][]float64
}

func (f *fakeEvaluator) Validate(expression string) error {
	return f.validateErr
}

func (f *fakeEvaluator) Evaluate(expression string, bindings map[string][]float64, n int) ([]float64, error) {
	f.lastBound = bindings
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return f.series, nil
}

type eventRecorder struct {
	events []any
}

func (r *eventRecorder) Publish(event any) {
	r.events = append(r.events, event)
}

func (r *eventRecorder) operations() []string {
	ops := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		if dc, ok := ev.(DatasetChangedEvent); ok {
			ops = append(ops, dc.Operation)
		}
	}
	return ops
}

func newTestProject(t *testing.T) (*project.Project, core.ItemID) {
	t.Helper()
	table := testkit.Table([]float64{0, 1, 2, 3}, []float64{0, 1, 4, 9})
	p, item := testkit.Project("measurements", table)
	return p, item.ID
}

func TestAddColumnCommand(t *testing.T) {
	p, dsID := newTestProject(t)
	rec := &eventRecorder{}

	cmd := NewAddColumnCommand(p, rec, dsID, "flag", true)
	require.NoError(t, cmd.Execute())

	ds, err := p.Dataset(dsID)
	require.NoError(t, err)
	values, err := ds.Data().Column("flag")
	require.NoError(t, err)
	assert.Equal(t, []any{true, true, true, true}, values)

	require.NoError(t, cmd.Undo())
	assert.False(t, ds.Data().HasColumn("flag"))

	require.NoError(t, cmd.Redo())
	assert.True(t, ds.Data().HasColumn("flag"))
	assert.Equal(t, []string{"add_column", "undo_add_column", "add_column"}, rec.operations())
}

func TestAddColumnCommandRejectsDuplicate(t *testing.T) {
	p, dsID := newTestProject(t)
	rec := &eventRecorder{}

	cmd := NewAddColumnCommand(p, rec, dsID, "y", 0.0)
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, core.IsDuplicateError(err))
	assert.Empty(t, rec.events)
}

func TestAddColumnCommandRejectsEmptyName(t *testing.T) {
	p, dsID := newTestProject(t)

	cmd := NewAddColumnCommand(p, ports.NopEventSink{}, dsID, "", 0.0)
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, core.IsInvalidInputError(err))
}

func TestAddRowCommand(t *testing.T) {
	p, dsID := newTestProject(t)
	ds, err := p.Dataset(dsID)
	require.NoError(t, err)

	cmd := NewAddRowCommand(p, ports.NopEventSink{}, dsID, 1, map[string]any{"x": 0.5, "y": 0.25})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 5, ds.Data().RowCount())
	row, err := ds.Data().Row(1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, row["x"])

	require.NoError(t, cmd.Undo())
	assert.Equal(t, 4, ds.Data().RowCount())

	require.NoError(t, cmd.Redo())
	assert.Equal(t, 5, ds.Data().RowCount())
}

func TestAddRowCommandRejectsUnknownColumn(t *testing.T) {
	p, dsID := newTestProject(t)
	ds, err := p.Dataset(dsID)
	require.NoError(t, err)
	before := ds.Data().RowCount()

	cmd := NewAddRowCommand(p, ports.NopEventSink{}, dsID, -1, map[string]any{"ghost": 1.0})
	require.Error(t, cmd.Execute())
	assert.Equal(t, before, ds.Data().RowCount())
}

func TestApplyAnalysisCommandNewColumn(t *testing.T) {
	p, dsID := newTestProject(t)
	rec := &eventRecorder{}
	runner := &fakeRunner{result: &analysis.Result{
		Type:   analysis.TypeDerivative,
		Series: []float64{1.0, 2.0, 4.0, 6.0},
	}}

	cmd := NewApplyAnalysisCommand(p, rec, runner, dsID, "x", "y", "dy_dx",
		analysis.TypeDerivative, "central", analysis.DefaultParameters(), false)
	require.NoError(t, cmd.Execute())
	require.NotNil(t, cmd.Result())
	assert.Equal(t, []string{"x", "y"}, cmd.Result().SourceColumns)

	ds, err := p.Dataset(dsID)
	require.NoError(t, err)
	values, err := ds.Data().NumericColumn("dy_dx")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0, 4.0, 6.0}, values)

	// The column was created by this command, so undo removes it entirely.
	require.NoError(t, cmd.Undo())
	assert.False(t, ds.Data().HasColumn("dy_dx"))

	require.NoError(t, cmd.Redo())
	assert.True(t, ds.Data().HasColumn("dy_dx"))
}

func TestApplyAnalysisCommandPadsShortResult(t *testing.T) {
	p, dsID := newTestProject(t)
	runner := &fakeRunner{result: &analysis.Result{
		Type:   analysis.TypeInterpolation,
		Series: []float64{5.0, 6.0},
	}}

	cmd := NewApplyAnalysisCommand(p, ports.NopEventSink{}, runner, dsID, "x", "y", "resampled",
		analysis.TypeInterpolation, "linear", analysis.DefaultParameters(), false)
	require.NoError(t, cmd.Execute())

	ds, err := p.Dataset(dsID)
	require.NoError(t, err)
	values, err := ds.Data().NumericColumn("resampled")
	require.NoError(t, err)
	require.Len(t, values, 4)
	assert.Equal(t, 5.0, values[0])
	assert.Equal(t, 6.0, values[1])
	assert.True(t, math.IsNaN(values[2]))
	assert.True(t, math.IsNaN(values[3]))
}

func TestApplyAnalysisCommandReplaceExisting(t *testing.T) {
	p, dsID := newTestProject(t)
	runner := &fakeRunner{result: &analysis.Result{
		Type:   analysis.TypeSmoothing,
		Series: []float64{0.0, 1.5, 4.5, 9.0},
	}}

	// Without replaceExisting a collision with "y" is rejected.
	blocked := NewApplyAnalysisCommand(p, ports.NopEventSink{}, runner, dsID, "x", "y", "y",
		analysis.TypeSmoothing, "rolling_mean", analysis.DefaultParameters(), false)
	err := blocked.Execute()
	require.Error(t, err)
	assert.True(t, core.IsDuplicateError(err))

	cmd := NewApplyAnalysisCommand(p, ports.NopEventSink{}, runner, dsID, "x", "y", "y",
		analysis.TypeSmoothing, "rolling_mean", analysis.DefaultParameters(), true)
	require.NoError(t, cmd.Execute())

	ds, err := p.Dataset(dsID)
	require.NoError(t, err)
	values, err := ds.Data().NumericColumn("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0, 1.5, 4.5, 9.0}, values)

	// The column pre-existed, so undo restores its original values.
	require.NoError(t, cmd.Undo())
	values, err = ds.Data().NumericColumn("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0, 1.0, 4.0, 9.0}, values)
}

func TestApplyAnalysisCommandValidationFailures(t *testing.T) {
	p, dsID := newTestProject(t)
	rec := &eventRecorder{}
	runner := &fakeRunner{err: errors.New("engine should not be reached")}

	tests := []struct {
		name    string
		xCol    string
		yCol    string
		newCol  string
		wantNot bool
	}{
		{name: "missing source column", xCol: "x", yCol: "ghost", newCol: "out", wantNot: true},
		{name: "empty new column", xCol: "x", yCol: "y", newCol: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewApplyAnalysisCommand(p, rec, runner, dsID, tt.xCol, tt.yCol, tt.newCol,
				analysis.TypeDerivative, "central", analysis.DefaultParameters(), false)
			err := cmd.Execute()
			require.Error(t, err)
			if tt.wantNot {
				assert.True(t, core.IsNotFoundError(err))
			}
		})
	}
	assert.Empty(t, rec.events)
}

func TestApplyAnalysisCommandEngineFailureLeavesTable(t *testing.T) {
	p, dsID := newTestProject(t)
	runner := &fakeRunner{err: errors.New("diverged")}

	cmd := NewApplyAnalysisCommand(p, ports.NopEventSink{}, runner, dsID, "x", "y", "out",
		analysis.TypeDerivative, "central", analysis.DefaultParameters(), false)
	require.Error(t, cmd.Execute())

	ds, err := p.Dataset(dsID)
	require.NoError(t, err)
	assert.False(t, ds.Data().HasColumn("out"))
}

func TestApplyTransformCommand(t *testing.T) {
	p, dsID := newTestProject(t)
	eval := &fakeEvaluator{series: []float64{0.0, 2.0, 8.0, 18.0}}

	cmd := NewApplyTransformCommand(p, ports.NopEventSink{}, eval, dsID, "doubled", "y * 2", false)
	require.NoError(t, cmd.Execute())

	// Both numeric columns were bound for the evaluator.
	assert.Contains(t, eval.lastBound, "x")
	assert.Contains(t, eval.lastBound, "y")

	ds, err := p.Dataset(dsID)
	require.NoError(t, err)
	values, err := ds.Data().NumericColumn("doubled")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0, 2.0, 8.0, 18.0}, values)

	require.NoError(t, cmd.Undo())
	assert.False(t, ds.Data().HasColumn("doubled"))

	require.NoError(t, cmd.Redo())
	assert.True(t, ds.Data().HasColumn("doubled"))
}

func TestApplyTransformCommandInvalidExpression(t *testing.T) {
	p, dsID := newTestProject(t)
	rec := &eventRecorder{}
	eval := &fakeEvaluator{validateErr: core.NewInvalidInputError("unknown function")}

	cmd := NewApplyTransformCommand(p, rec, eval, dsID, "out", "nuke(y)", false)
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, core.IsInvalidInputError(err))
	assert.Empty(t, rec.events)

	ds, derr := p.Dataset(dsID)
	require.NoError(t, derr)
	assert.False(t, ds.Data().HasColumn("out"))
}

func TestApplyTransformCommandSkipsNonNumericBindings(t *testing.T) {
	p, dsID := newTestProject(t)
	ds, err := p.Dataset(dsID)
	require.NoError(t, err)

	labeled := ds.Data().Copy()
	require.NoError(t, labeled.AddColumn("label", []any{"a", "b", "c", "d"}))
	ds.SetData(labeled)

	eval := &fakeEvaluator{series: []float64{1, 1, 1, 1}}
	cmd := NewApplyTransformCommand(p, ports.NopEventSink{}, eval, dsID, "ones", "x - x + 1", false)
	require.NoError(t, cmd.Execute())
	assert.NotContains(t, eval.lastBound, "label")
}
