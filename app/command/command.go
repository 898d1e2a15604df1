// Package command implements the reversible-mutation core: a Command
// interface over concrete project/dataset mutations and an Executor
// maintaining bounded undo/redo history.
package command

import (
	"tabkit/domain/analysis"
	"tabkit/domain/project"
)

// Command is one reversible unit of work. Execute applies the mutation and
// captures whatever state is needed to reverse it; Undo reverses it; Redo
// re-applies from the captured state without re-running input capture or
// validation prompts.
type Command interface {
	Execute() error
	Undo() error
	Redo() error
	Description() string
}

// AnalysisRunner is the slice of the analysis engine the commands consume
type AnalysisRunner interface {
	Run(typ analysis.Type, method string, x, y []float64, params analysis.Parameters) (*analysis.Result, error)
}

// ProjectHolder is the session surface that project-swapping commands
// (new/load) operate against.
type ProjectHolder interface {
	CurrentProject() *project.Project
	SetProject(p *project.Project)
}
