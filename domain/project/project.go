package project

import (
	"fmt"
	"time"

	"tabkit/domain/core"
	"tabkit/domain/dataset"
)

// FormatVersion is the persisted project file format version
const FormatVersion = "1.0"

// Project is a rooted tree of items (folders, datasets, charts, notes).
// Invariants: ids are unique across the project, the tree is acyclic, and
// every non-root item has exactly one existing parent. Top-level items have
// an empty ParentID.
type Project struct {
	ID      core.ProjectID `json:"id"`
	Name    string         `json:"name"`
	Version string         `json:"version"`

	items    map[core.ItemID]*Item
	children map[core.ItemID][]core.ItemID

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty project
func New(name string) *Project {
	return &Project{
		ID:        core.ProjectID(core.NewID()),
		Name:      name,
		Version:   FormatVersion,
		items:     make(map[core.ItemID]*Item),
		children:  make(map[core.ItemID][]core.ItemID),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// FindItem returns the item with the given id, or nil when absent
func (p *Project) FindItem(id core.ItemID) *Item {
	return p.items[id]
}

// GetItem returns the item with the given id or a not-found error
func (p *Project) GetItem(id core.ItemID) (*Item, error) {
	item, ok := p.items[id]
	if !ok {
		return nil, fmt.Errorf("%w %s", core.ErrItemNotFound, id)
	}
	return item, nil
}

// AddItem inserts an item under parentID (empty parentID means top level).
// Fails with ErrDuplicateID on id collision and ErrNotFound when the parent
// does not exist. Only folders can parent other items.
func (p *Project) AddItem(item *Item, parentID core.ItemID) error {
	if item == nil {
		return core.NewInvalidInputError("item cannot be nil")
	}
	if _, exists := p.items[item.ID]; exists {
		return fmt.Errorf("%w: item %s", core.ErrDuplicateID, item.ID)
	}
	if parentID != "" {
		parent, ok := p.items[parentID]
		if !ok {
			return fmt.Errorf("%w: parent %s", core.ErrItemNotFound, parentID)
		}
		if parent.Type != ItemFolder {
			return core.NewInvalidInputError("parent item must be a folder")
		}
	}

	item.ParentID = parentID
	p.items[item.ID] = item
	p.children[parentID] = append(p.children[parentID], item.ID)
	p.UpdatedAt = time.Now()
	return nil
}

// RemoveItem detaches an item and its whole subtree from the project
func (p *Project) RemoveItem(item *Item) error {
	if item == nil {
		return core.NewInvalidInputError("item cannot be nil")
	}
	if _, ok := p.items[item.ID]; !ok {
		return fmt.Errorf("%w %s", core.ErrItemNotFound, item.ID)
	}

	// Depth-first removal of the subtree.
	for _, childID := range append([]core.ItemID(nil), p.children[item.ID]...) {
		if child, ok := p.items[childID]; ok {
			if err := p.RemoveItem(child); err != nil {
				return err
			}
		}
	}

	siblings := p.children[item.ParentID]
	for i, id := range siblings {
		if id == item.ID {
			p.children[item.ParentID] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	delete(p.children, item.ID)
	delete(p.items, item.ID)
	p.UpdatedAt = time.Now()
	return nil
}

// GetChildren returns the direct children of an item in insertion order.
// An empty id returns the top-level items.
func (p *Project) GetChildren(id core.ItemID) []*Item {
	ids := p.children[id]
	out := make([]*Item, 0, len(ids))
	for _, childID := range ids {
		if item, ok := p.items[childID]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Items returns all items in the project (unordered)
func (p *Project) Items() []*Item {
	out := make([]*Item, 0, len(p.items))
	for _, item := range p.items {
		out = append(out, item)
	}
	return out
}

// ItemCount returns the number of items in the tree
func (p *Project) ItemCount() int {
	return len(p.items)
}

// Dataset resolves the dataset carried by the given item. Fails with a
// not-found error when the item is absent or is not a dataset item.
func (p *Project) Dataset(id core.ItemID) (*dataset.Dataset, error) {
	item, ok := p.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", core.ErrDatasetNotFound, id)
	}
	if !item.IsDataset() {
		return nil, fmt.Errorf("%w: item %s is a %s", core.ErrDatasetNotFound, id, item.Type)
	}
	return item.Dataset, nil
}

// Datasets returns every dataset item in the project (unordered)
func (p *Project) Datasets() []*Item {
	var out []*Item
	for _, item := range p.items {
		if item.IsDataset() {
			out = append(out, item)
		}
	}
	return out
}
