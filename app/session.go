// Package app holds the session service tying the project model, the
// command executor and the persistence ports together for callers.
package app

import (
	"tabkit/app/command"
	"tabkit/domain/project"
	"tabkit/internal"
	"tabkit/ports"
)

// Session owns the current project and the undo/redo history. All mutations
// flow through Execute; direct writes to the project bypass history and are
// reserved for project switching.
type Session struct {
	project  *project.Project
	executor *command.Executor
	store    ports.ProjectStore
	events   ports.EventSink
	logger   *internal.Logger
}

// NewSession creates a session with a fresh untitled project
func NewSession(store ports.ProjectStore, events ports.EventSink) *Session {
	if events == nil {
		events = ports.NopEventSink{}
	}
	return &Session{
		project:  project.New("Untitled"),
		executor: command.NewExecutor(),
		store:    store,
		events:   events,
		logger:   internal.DefaultLogger,
	}
}

// CurrentProject returns the active project
func (s *Session) CurrentProject() *project.Project {
	return s.project
}

// SetProject swaps the active project. Used by project-switching commands;
// history is cleared by the session methods that drive the swap.
func (s *Session) SetProject(p *project.Project) {
	s.project = p
}

// Events returns the sink commands should publish to
func (s *Session) Events() ports.EventSink {
	return s.events
}

// Executor exposes the command executor for history configuration
func (s *Session) Executor() *command.Executor {
	return s.executor
}

// Execute runs a command through the executor, recording it for undo
func (s *Session) Execute(cmd command.Command) bool {
	return s.executor.ExecuteCommand(cmd)
}

// Undo reverses the most recent command
func (s *Session) Undo() bool {
	return s.executor.Undo()
}

// Redo re-applies the most recently undone command
func (s *Session) Redo() bool {
	return s.executor.Redo()
}

// CanUndo reports whether there is history to undo
func (s *Session) CanUndo() bool {
	return s.executor.CanUndo()
}

// CanRedo reports whether there is history to redo
func (s *Session) CanRedo() bool {
	return s.executor.CanRedo()
}

// NewProject replaces the current project with a fresh one. Edit history
// belongs to the project being closed, so the stacks are cleared.
func (s *Session) NewProject(name string) error {
	cmd := command.NewNewProjectCommand(s, s.events, name)
	if err := cmd.Execute(); err != nil {
		return err
	}
	s.executor.ClearHistory()
	s.logger.Info("started new project %q", name)
	return nil
}

// OpenProject loads a project from disk and makes it current, clearing
// history the same way NewProject does.
func (s *Session) OpenProject(path string) error {
	cmd := command.NewLoadProjectCommand(s, s.events, s.store, path)
	if err := cmd.Execute(); err != nil {
		return err
	}
	s.executor.ClearHistory()
	s.logger.Info("opened project from %s", path)
	return nil
}

// SaveProject persists the current project to the given path
func (s *Session) SaveProject(path string) error {
	cmd := command.NewSaveProjectCommand(s, s.events, s.store, path)
	if err := cmd.Execute(); err != nil {
		return err
	}
	s.logger.Info("saved project to %s", path)
	return nil
}
