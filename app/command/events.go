package command

import (
	"tabkit/domain/core"
	"tabkit/domain/dataset"
	"tabkit/domain/project"
)

// DatasetChangedEvent describes one completed dataset mutation. Consumed by
// the display layer; the payload carries the post-mutation table so listeners
// never need to re-read the dataset.
type DatasetChangedEvent struct {
	Project     *project.Project
	DatasetID   core.ItemID
	DatasetName string
	Operation   string
	Details     map[string]any
	Data        dataset.Table
}

// ProjectChangedEvent describes a structural change of the project tree
type ProjectChangedEvent struct {
	Project   *project.Project
	Operation string
	ItemID    core.ItemID
	ItemName  string
}

// ProjectSwitchedEvent fires when the current project is replaced
// (new project, load, or an undo of either)
type ProjectSwitchedEvent struct {
	Project *project.Project
}

// ProjectSavedEvent fires after a successful save
type ProjectSavedEvent struct {
	Project *project.Project
	Path    string
}
