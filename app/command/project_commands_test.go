package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabkit/domain/core"
	"tabkit/domain/dataset"
	"tabkit/domain/project"
	"tabkit/ports"
)

type fakeReader struct {
	name  string
	table dataset.Table
	err   error
	reads int
}

func (f *fakeReader) Read(path string) (string, dataset.Table, error) {
	f.reads++
	if f.err != nil {
		return "", dataset.Table{}, f.err
	}
	return f.name, f.table, nil
}

type fakeStore struct {
	loaded   *project.Project
	loadErr  error
	saveErr  error
	saves    int
	lastPath string
}

func (f *fakeStore) Load(path string) (*project.Project, error) {
	f.lastPath = path
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.loaded, nil
}

func (f *fakeStore) Save(p *project.Project, path string) error {
	f.saves++
	f.lastPath = path
	return f.saveErr
}

type fakeHolder struct {
	current *project.Project
}

func (f *fakeHolder) CurrentProject() *project.Project { return f.current }
func (f *fakeHolder) SetProject(p *project.Project)    { f.current = p }

func TestCreateFolderCommandKeepsIdentity(t *testing.T) {
	p := project.New("test")
	cmd := NewCreateFolderCommand(p, ports.NopEventSink{}, "results", "")

	require.NoError(t, cmd.Execute())
	created := cmd.Item()
	require.NotNil(t, p.FindItem(created.ID))

	require.NoError(t, cmd.Undo())
	assert.Nil(t, p.FindItem(created.ID))

	// Redo restores the same item under the same id.
	require.NoError(t, cmd.Redo())
	assert.Equal(t, created, p.FindItem(created.ID))
}

func TestCreateItemUnderFolder(t *testing.T) {
	p := project.New("test")
	folder := NewCreateFolderCommand(p, ports.NopEventSink{}, "inputs", "")
	require.NoError(t, folder.Execute())

	note := NewCreateNoteCommand(p, ports.NopEventSink{}, "readme", "# Hello", folder.Item().ID)
	require.NoError(t, note.Execute())

	children := p.GetChildren(folder.Item().ID)
	require.Len(t, children, 1)
	assert.Equal(t, note.Item().ID, children[0].ID)
}

func TestCreateItemRejectsNonFolderParent(t *testing.T) {
	p := project.New("test")
	note := NewCreateNoteCommand(p, ports.NopEventSink{}, "readme", "", "")
	require.NoError(t, note.Execute())

	child := NewCreateChartCommand(p, ports.NopEventSink{}, "plot",
		&project.Chart{ChartType: project.ChartLine}, note.Item().ID)
	require.Error(t, child.Execute())
}

func TestCreateDatasetCommand(t *testing.T) {
	p := project.New("test")
	cmd := NewCreateDatasetCommand(p, ports.NopEventSink{}, "empty", "")
	require.NoError(t, cmd.Execute())

	ds, err := p.Dataset(cmd.Item().ID)
	require.NoError(t, err)
	assert.Equal(t, "empty", ds.Name)
	assert.Equal(t, 0, ds.RowCount())
}

func TestImportDatasetCommandReadsOnce(t *testing.T) {
	p := project.New("test")
	table, err := dataset.NewTableFromColumns([]string{"v"}, map[string][]any{"v": {1.0, 2.0}})
	require.NoError(t, err)
	reader := &fakeReader{name: "samples", table: table}

	cmd := NewImportDatasetCommand(p, ports.NopEventSink{}, reader, "/data/samples.csv", "")
	require.NoError(t, cmd.Execute())

	ds, err := p.Dataset(cmd.Item().ID)
	require.NoError(t, err)
	assert.Equal(t, "samples", ds.Name)
	assert.Equal(t, "/data/samples.csv", ds.SourceFile)
	assert.Equal(t, 2, ds.RowCount())

	require.NoError(t, cmd.Undo())
	require.NoError(t, cmd.Redo())
	assert.Equal(t, 1, reader.reads)
	require.NoError(t, err)
	assert.NotNil(t, p.FindItem(cmd.Item().ID))
}

func TestImportDatasetCommandReadFailure(t *testing.T) {
	p := project.New("test")
	reader := &fakeReader{err: errors.New("corrupt file")}

	cmd := NewImportDatasetCommand(p, ports.NopEventSink{}, reader, "/data/bad.xlsx", "")
	require.Error(t, cmd.Execute())
	assert.Equal(t, 0, p.ItemCount())
}

func TestRenameItemCommand(t *testing.T) {
	p := project.New("test")
	table, err := dataset.NewTableFromColumns([]string{"v"}, map[string][]any{"v": {1.0}})
	require.NoError(t, err)
	item := project.NewDatasetItem(dataset.NewWithTable("raw", table))
	require.NoError(t, p.AddItem(item, ""))

	cmd := NewRenameItemCommand(p, ports.NopEventSink{}, item.ID, "calibrated")
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "calibrated", item.Name)
	assert.Equal(t, "calibrated", item.Dataset.Name)

	require.NoError(t, cmd.Undo())
	assert.Equal(t, "raw", item.Name)
	assert.Equal(t, "raw", item.Dataset.Name)

	require.NoError(t, cmd.Redo())
	assert.Equal(t, "calibrated", item.Name)
}

func TestRenameItemCommandRejectsEmptyName(t *testing.T) {
	p := project.New("test")
	item := project.NewFolderItem("keep")
	require.NoError(t, p.AddItem(item, ""))

	cmd := NewRenameItemCommand(p, ports.NopEventSink{}, item.ID, "")
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, core.IsInvalidInputError(err))
	assert.Equal(t, "keep", item.Name)
}

func TestNewProjectCommandSwap(t *testing.T) {
	old := project.New("old")
	holder := &fakeHolder{current: old}

	cmd := NewNewProjectCommand(holder, ports.NopEventSink{}, "fresh")
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "fresh", holder.current.Name)

	require.NoError(t, cmd.Undo())
	assert.Same(t, old, holder.current)

	require.NoError(t, cmd.Redo())
	assert.Equal(t, "fresh", holder.current.Name)
}

func TestLoadProjectCommandLoadsOnce(t *testing.T) {
	old := project.New("old")
	loaded := project.New("loaded")
	holder := &fakeHolder{current: old}
	store := &fakeStore{loaded: loaded}

	cmd := NewLoadProjectCommand(holder, ports.NopEventSink{}, store, "/projects/a.tabkit")
	require.NoError(t, cmd.Execute())
	assert.Same(t, loaded, holder.current)
	assert.Equal(t, "/projects/a.tabkit", store.lastPath)

	require.NoError(t, cmd.Undo())
	assert.Same(t, old, holder.current)

	require.NoError(t, cmd.Redo())
	assert.Same(t, loaded, holder.current)
}

func TestLoadProjectCommandFailureKeepsCurrent(t *testing.T) {
	old := project.New("old")
	holder := &fakeHolder{current: old}
	store := &fakeStore{loadErr: core.ErrInvalidFormat}

	cmd := NewLoadProjectCommand(holder, ports.NopEventSink{}, store, "/projects/bad.tabkit")
	require.Error(t, cmd.Execute())
	assert.Same(t, old, holder.current)
}

func TestSaveProjectCommand(t *testing.T) {
	p := project.New("current")
	holder := &fakeHolder{current: p}
	store := &fakeStore{}
	rec := &eventRecorder{}

	cmd := NewSaveProjectCommand(holder, rec, store, "/projects/out.tabkit")
	require.NoError(t, cmd.Execute())
	assert.Equal(t, 1, store.saves)

	// Undo is a no-op; redo saves again.
	require.NoError(t, cmd.Undo())
	require.NoError(t, cmd.Redo())
	assert.Equal(t, 2, store.saves)

	saved := 0
	for _, ev := range rec.events {
		if _, ok := ev.(ProjectSavedEvent); ok {
			saved++
		}
	}
	assert.Equal(t, 2, saved)
}

func TestSaveProjectCommandNoActiveProject(t *testing.T) {
	holder := &fakeHolder{}
	cmd := NewSaveProjectCommand(holder, ports.NopEventSink{}, &fakeStore{}, "/projects/out.tabkit")
	require.Error(t, cmd.Execute())
}
