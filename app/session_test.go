package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabkit/app/command"
	"tabkit/domain/project"
	"tabkit/ports"
)

type memoryStore struct {
	projects map[string]*project.Project
}

func newMemoryStore() *memoryStore {
	return &memoryStore{projects: map[string]*project.Project{}}
}

func (m *memoryStore) Load(path string) (*project.Project, error) {
	p, ok := m.projects[path]
	if !ok {
		return nil, errors.New("no such project file")
	}
	return p, nil
}

func (m *memoryStore) Save(p *project.Project, path string) error {
	m.projects[path] = p
	return nil
}

func TestSessionStartsWithUntitledProject(t *testing.T) {
	s := NewSession(newMemoryStore(), nil)
	require.NotNil(t, s.CurrentProject())
	assert.Equal(t, "Untitled", s.CurrentProject().Name)
	assert.False(t, s.CanUndo())
}

func TestSessionExecuteRecordsHistory(t *testing.T) {
	s := NewSession(newMemoryStore(), nil)

	cmd := command.NewCreateFolderCommand(s.CurrentProject(), s.Events(), "results", "")
	require.True(t, s.Execute(cmd))
	assert.True(t, s.CanUndo())

	require.True(t, s.Undo())
	assert.Nil(t, s.CurrentProject().FindItem(cmd.Item().ID))
	assert.True(t, s.CanRedo())

	require.True(t, s.Redo())
	assert.NotNil(t, s.CurrentProject().FindItem(cmd.Item().ID))
}

func TestSessionNewProjectClearsHistory(t *testing.T) {
	s := NewSession(newMemoryStore(), nil)
	require.True(t, s.Execute(command.NewCreateFolderCommand(s.CurrentProject(), s.Events(), "old", "")))
	require.True(t, s.CanUndo())

	require.NoError(t, s.NewProject("fresh"))
	assert.Equal(t, "fresh", s.CurrentProject().Name)
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestSessionSaveAndOpenRoundTrip(t *testing.T) {
	store := newMemoryStore()
	s := NewSession(store, nil)
	require.NoError(t, s.NewProject("experiment"))
	require.NoError(t, s.SaveProject("/projects/experiment.tabkit"))

	other := NewSession(store, nil)
	require.NoError(t, other.OpenProject("/projects/experiment.tabkit"))
	assert.Equal(t, "experiment", other.CurrentProject().Name)
}

func TestSessionOpenProjectFailureKeepsCurrent(t *testing.T) {
	s := NewSession(newMemoryStore(), nil)
	before := s.CurrentProject()

	require.Error(t, s.OpenProject("/projects/missing.tabkit"))
	assert.Same(t, before, s.CurrentProject())
}

func TestSessionEventsDefaultToNop(t *testing.T) {
	s := NewSession(newMemoryStore(), nil)
	require.NotNil(t, s.Events())
	_, ok := s.Events().(ports.NopEventSink)
	assert.True(t, ok)
}
