package command

import (
	"fmt"

	"tabkit/domain/core"
	"tabkit/domain/dataset"
	"tabkit/domain/project"
	"tabkit/ports"
)

func emitProjectChanged(sink ports.EventSink, p *project.Project, operation string,
	itemID core.ItemID, itemName string) {
	if sink == nil {
		return
	}
	sink.Publish(ProjectChangedEvent{
		Project:   p,
		Operation: operation,
		ItemID:    itemID,
		ItemName:  itemName,
	})
}

// CreateItemCommand adds a tree item under a parent folder. The item keeps
// its identity across undo/redo cycles, so references captured elsewhere
// stay valid after a redo.
type CreateItemCommand struct {
	project  *project.Project
	events   ports.EventSink
	item     *project.Item
	parentID core.ItemID
	kind     string
}

// NewCreateFolderCommand builds a command that creates a folder item
func NewCreateFolderCommand(p *project.Project, events ports.EventSink,
	name string, parentID core.ItemID) *CreateItemCommand {
	return &CreateItemCommand{
		project:  p,
		events:   events,
		item:     project.NewFolderItem(name),
		parentID: parentID,
		kind:     "folder",
	}
}

// NewCreateNoteCommand builds a command that creates a note item
func NewCreateNoteCommand(p *project.Project, events ports.EventSink,
	name, content string, parentID core.ItemID) *CreateItemCommand {
	return &CreateItemCommand{
		project:  p,
		events:   events,
		item:     project.NewNoteItem(name, content),
		parentID: parentID,
		kind:     "note",
	}
}

// NewCreateChartCommand builds a command that creates a chart item
func NewCreateChartCommand(p *project.Project, events ports.EventSink,
	name string, chart *project.Chart, parentID core.ItemID) *CreateItemCommand {
	return &CreateItemCommand{
		project:  p,
		events:   events,
		item:     project.NewChartItem(name, chart),
		parentID: parentID,
		kind:     "chart",
	}
}

// NewCreateDatasetCommand builds a command that creates an empty dataset item
func NewCreateDatasetCommand(p *project.Project, events ports.EventSink,
	name string, parentID core.ItemID) *CreateItemCommand {
	return &CreateItemCommand{
		project:  p,
		events:   events,
		item:     project.NewDatasetItem(dataset.New(name)),
		parentID: parentID,
		kind:     "dataset",
	}
}

// Item exposes the created item so callers can navigate to it after execute
func (c *CreateItemCommand) Item() *project.Item {
	return c.item
}

func (c *CreateItemCommand) Execute() error {
	if err := c.project.AddItem(c.item, c.parentID); err != nil {
		return err
	}
	emitProjectChanged(c.events, c.project, "create_"+c.kind, c.item.ID, c.item.Name)
	return nil
}

func (c *CreateItemCommand) Undo() error {
	if err := c.project.RemoveItem(c.item); err != nil {
		return err
	}
	emitProjectChanged(c.events, c.project, "remove_"+c.kind, c.item.ID, c.item.Name)
	return nil
}

func (c *CreateItemCommand) Redo() error {
	return c.Execute()
}

func (c *CreateItemCommand) Description() string {
	return fmt.Sprintf("Create %s %q", c.kind, c.item.Name)
}

// ImportDatasetCommand reads a file through a DatasetReader and adds the
// resulting dataset to the tree. The file is read once on first execute;
// redo re-inserts the already-parsed item without touching the filesystem.
type ImportDatasetCommand struct {
	project  *project.Project
	events   ports.EventSink
	reader   ports.DatasetReader
	path     string
	parentID core.ItemID

	item *project.Item
}

// NewImportDatasetCommand builds an import command for the given file path
func NewImportDatasetCommand(p *project.Project, events ports.EventSink,
	reader ports.DatasetReader, path string, parentID core.ItemID) *ImportDatasetCommand {
	return &ImportDatasetCommand{
		project:  p,
		events:   events,
		reader:   reader,
		path:     path,
		parentID: parentID,
	}
}

// Item exposes the imported item after a successful execute
func (c *ImportDatasetCommand) Item() *project.Item {
	return c.item
}

func (c *ImportDatasetCommand) Execute() error {
	if c.item == nil {
		name, table, err := c.reader.Read(c.path)
		if err != nil {
			return err
		}
		ds := dataset.NewWithTable(name, table)
		ds.SourceFile = c.path
		c.item = project.NewDatasetItem(ds)
	}
	if err := c.project.AddItem(c.item, c.parentID); err != nil {
		return err
	}
	emitProjectChanged(c.events, c.project, "import_dataset", c.item.ID, c.item.Name)
	return nil
}

func (c *ImportDatasetCommand) Undo() error {
	if err := c.project.RemoveItem(c.item); err != nil {
		return err
	}
	emitProjectChanged(c.events, c.project, "remove_dataset", c.item.ID, c.item.Name)
	return nil
}

func (c *ImportDatasetCommand) Redo() error {
	return c.Execute()
}

func (c *ImportDatasetCommand) Description() string {
	return fmt.Sprintf("Import dataset from %s", c.path)
}

// RenameItemCommand changes an item's display name
type RenameItemCommand struct {
	project *project.Project
	events  ports.EventSink
	itemID  core.ItemID
	newName string

	prevName string
}

// NewRenameItemCommand builds a rename command for an existing item
func NewRenameItemCommand(p *project.Project, events ports.EventSink,
	itemID core.ItemID, newName string) *RenameItemCommand {
	return &RenameItemCommand{
		project: p,
		events:  events,
		itemID:  itemID,
		newName: newName,
	}
}

func (c *RenameItemCommand) rename(to string, operation string) error {
	item, err := c.project.GetItem(c.itemID)
	if err != nil {
		return err
	}
	item.Name = to
	if item.IsDataset() {
		item.Dataset.Name = to
	}
	emitProjectChanged(c.events, c.project, operation, item.ID, to)
	return nil
}

func (c *RenameItemCommand) Execute() error {
	if c.newName == "" {
		return core.NewInvalidInputError("item name cannot be empty")
	}
	item, err := c.project.GetItem(c.itemID)
	if err != nil {
		return err
	}
	c.prevName = item.Name
	return c.rename(c.newName, "rename_item")
}

func (c *RenameItemCommand) Undo() error {
	return c.rename(c.prevName, "rename_item")
}

func (c *RenameItemCommand) Redo() error {
	return c.rename(c.newName, "rename_item")
}

func (c *RenameItemCommand) Description() string {
	return fmt.Sprintf("Rename item to %q", c.newName)
}

// NewProjectCommand replaces the session's current project with a fresh one.
// Undo restores the previously active project in full since the swap keeps
// the old pointer alive.
type NewProjectCommand struct {
	holder ProjectHolder
	events ports.EventSink
	name   string

	prev    *project.Project
	created *project.Project
}

// NewNewProjectCommand builds a command that starts a fresh named project
func NewNewProjectCommand(holder ProjectHolder, events ports.EventSink, name string) *NewProjectCommand {
	return &NewProjectCommand{holder: holder, events: events, name: name}
}

func (c *NewProjectCommand) swap(to *project.Project) {
	c.holder.SetProject(to)
	if c.events != nil {
		c.events.Publish(ProjectSwitchedEvent{Project: to})
	}
}

func (c *NewProjectCommand) Execute() error {
	if c.created == nil {
		c.created = project.New(c.name)
	}
	c.prev = c.holder.CurrentProject()
	c.swap(c.created)
	return nil
}

func (c *NewProjectCommand) Undo() error {
	c.swap(c.prev)
	return nil
}

func (c *NewProjectCommand) Redo() error {
	c.swap(c.created)
	return nil
}

func (c *NewProjectCommand) Description() string {
	return fmt.Sprintf("New project %q", c.name)
}

// LoadProjectCommand loads a project from a store and makes it current.
// The file is read once; redo swaps back to the already-loaded project.
type LoadProjectCommand struct {
	holder ProjectHolder
	events ports.EventSink
	store  ports.ProjectStore
	path   string

	prev   *project.Project
	loaded *project.Project
}

// NewLoadProjectCommand builds a command that loads a project from a path
func NewLoadProjectCommand(holder ProjectHolder, events ports.EventSink,
	store ports.ProjectStore, path string) *LoadProjectCommand {
	return &LoadProjectCommand{holder: holder, events: events, store: store, path: path}
}

func (c *LoadProjectCommand) swap(to *project.Project) {
	c.holder.SetProject(to)
	if c.events != nil {
		c.events.Publish(ProjectSwitchedEvent{Project: to})
	}
}

func (c *LoadProjectCommand) Execute() error {
	if c.loaded == nil {
		p, err := c.store.Load(c.path)
		if err != nil {
			return err
		}
		c.loaded = p
	}
	c.prev = c.holder.CurrentProject()
	c.swap(c.loaded)
	return nil
}

func (c *LoadProjectCommand) Undo() error {
	c.swap(c.prev)
	return nil
}

func (c *LoadProjectCommand) Redo() error {
	c.swap(c.loaded)
	return nil
}

func (c *LoadProjectCommand) Description() string {
	return fmt.Sprintf("Load project from %s", c.path)
}

// SaveProjectCommand persists the current project. Saving has no state to
// reverse, so undo and redo are no-ops beyond re-saving on redo.
type SaveProjectCommand struct {
	holder ProjectHolder
	events ports.EventSink
	store  ports.ProjectStore
	path   string
}

// NewSaveProjectCommand builds a command that saves the current project
func NewSaveProjectCommand(holder ProjectHolder, events ports.EventSink,
	store ports.ProjectStore, path string) *SaveProjectCommand {
	return &SaveProjectCommand{holder: holder, events: events, store: store, path: path}
}

func (c *SaveProjectCommand) Execute() error {
	p := c.holder.CurrentProject()
	if p == nil {
		return core.NewInvalidInputError("no active project to save")
	}
	if err := c.store.Save(p, c.path); err != nil {
		return err
	}
	if c.events != nil {
		c.events.Publish(ProjectSavedEvent{Project: p, Path: c.path})
	}
	return nil
}

func (c *SaveProjectCommand) Undo() error {
	return nil
}

func (c *SaveProjectCommand) Redo() error {
	return c.Execute()
}

func (c *SaveProjectCommand) Description() string {
	return fmt.Sprintf("Save project to %s", c.path)
}
