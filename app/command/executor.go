package command

import (
	"tabkit/internal"
	apperrors "tabkit/internal/errors"
)

// DefaultMaxUndoLevels bounds history depth unless configured otherwise
const DefaultMaxUndoLevels = 10

// Executor runs commands and maintains the undo/redo stacks. It owns both
// stacks exclusively; nothing else holds references into them. All methods
// are driven from the single control thread, so no locking is needed.
type Executor struct {
	maxUndoLevels int
	undoStack     []Command
	redoStack     []Command
	logger        *internal.Logger
}

// NewExecutor creates an executor with the default history depth
func NewExecutor() *Executor {
	return &Executor{
		maxUndoLevels: DefaultMaxUndoLevels,
		logger:        internal.DefaultLogger,
	}
}

// MaxUndoLevels returns the configured history bound
func (e *Executor) MaxUndoLevels() int {
	return e.maxUndoLevels
}

// SetMaxUndoLevels changes the history bound. An already-deeper undo stack is
// not trimmed until the next push (lazy trim).
func (e *Executor) SetMaxUndoLevels(n int) {
	if n < 1 {
		n = 1
	}
	e.maxUndoLevels = n
}

// ExecuteCommand runs the command. On failure the error is reported and both
// stacks are left untouched; the command is never pushed. On success the
// command is pushed onto the undo stack (evicting from the front when the
// bound is exceeded) and the redo stack is cleared: any forward history is
// invalidated by a new branch of edits.
func (e *Executor) ExecuteCommand(cmd Command) bool {
	if err := cmd.Execute(); err != nil {
		e.logger.Error("%v", apperrors.ExecutionFailure(cmd.Description(), err))
		return false
	}

	e.undoStack = append(e.undoStack, cmd)
	for len(e.undoStack) > e.maxUndoLevels {
		e.undoStack = e.undoStack[1:]
	}
	e.redoStack = nil
	return true
}

// Undo reverses the most recent command. On failure the command is dropped
// rather than returned to the stack: a known-broken command must not stay
// re-runnable, even at the cost of history depth. Callers should treat an
// undo failure as leaving the model possibly inconsistent.
func (e *Executor) Undo() bool {
	if len(e.undoStack) == 0 {
		return false
	}

	cmd := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]

	if err := cmd.Undo(); err != nil {
		e.logger.Error("undo: %v", apperrors.ExecutionFailure(cmd.Description(), err))
		return false
	}

	e.redoStack = append(e.redoStack, cmd)
	return true
}

// Redo re-applies the most recently undone command. Failure drops the
// command, symmetric with Undo.
func (e *Executor) Redo() bool {
	if len(e.redoStack) == 0 {
		return false
	}

	cmd := e.redoStack[len(e.redoStack)-1]
	e.redoStack = e.redoStack[:len(e.redoStack)-1]

	if err := cmd.Redo(); err != nil {
		e.logger.Error("redo: %v", apperrors.ExecutionFailure(cmd.Description(), err))
		return false
	}

	e.undoStack = append(e.undoStack, cmd)
	return true
}

// CanUndo reports whether the undo stack is non-empty
func (e *Executor) CanUndo() bool {
	return len(e.undoStack) > 0
}

// CanRedo reports whether the redo stack is non-empty
func (e *Executor) CanRedo() bool {
	return len(e.redoStack) > 0
}

// UndoDescription returns the description of the next command to undo,
// or an empty string when there is none
func (e *Executor) UndoDescription() string {
	if len(e.undoStack) == 0 {
		return ""
	}
	return e.undoStack[len(e.undoStack)-1].Description()
}

// RedoDescription returns the description of the next command to redo,
// or an empty string when there is none
func (e *Executor) RedoDescription() string {
	if len(e.redoStack) == 0 {
		return ""
	}
	return e.redoStack[len(e.redoStack)-1].Description()
}

// UndoDepth returns the current undo stack depth
func (e *Executor) UndoDepth() int {
	return len(e.undoStack)
}

// RedoDepth returns the current redo stack depth
func (e *Executor) RedoDepth() int {
	return len(e.redoStack)
}

// ClearHistory empties both stacks without undoing anything. Used when
// switching projects.
func (e *Executor) ClearHistory() {
	e.undoStack = nil
	e.redoStack = nil
}

// Contains reports whether a command instance is still on the undo stack
func (e *Executor) Contains(cmd Command) bool {
	for _, c := range e.undoStack {
		if c == cmd {
			return true
		}
	}
	return false
}
