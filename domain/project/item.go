package project

import (
	"time"

	"tabkit/domain/core"
	"tabkit/domain/dataset"
)

// ItemType classifies the nodes of the project tree
type ItemType string

const (
	ItemFolder  ItemType = "folder"
	ItemDataset ItemType = "dataset"
	ItemChart   ItemType = "chart"
	ItemNote    ItemType = "note"
)

// Item is a node of the project tree. Exactly one payload field is set
// according to Type; folders carry none.
type Item struct {
	ID       core.ItemID `json:"id"`
	Name     string      `json:"name"`
	Type     ItemType    `json:"item_type"`
	ParentID core.ItemID `json:"parent_id,omitempty"`

	Dataset *dataset.Dataset `json:"dataset,omitempty"`
	Note    *Note            `json:"note,omitempty"`
	Chart   *Chart           `json:"chart,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewFolderItem creates a folder item
func NewFolderItem(name string) *Item {
	return &Item{
		ID:        core.ItemID(core.NewID()),
		Name:      name,
		Type:      ItemFolder,
		CreatedAt: time.Now(),
	}
}

// NewDatasetItem wraps a dataset into a tree item
func NewDatasetItem(ds *dataset.Dataset) *Item {
	return &Item{
		ID:        core.ItemID(core.NewID()),
		Name:      ds.Name,
		Type:      ItemDataset,
		Dataset:   ds,
		CreatedAt: time.Now(),
	}
}

// NewNoteItem creates a note item with a markdown body
func NewNoteItem(name, content string) *Item {
	return &Item{
		ID:        core.ItemID(core.NewID()),
		Name:      name,
		Type:      ItemNote,
		Note:      &Note{Content: content},
		CreatedAt: time.Now(),
	}
}

// NewChartItem creates a chart item from a chart configuration
func NewChartItem(name string, chart *Chart) *Item {
	return &Item{
		ID:        core.ItemID(core.NewID()),
		Name:      name,
		Type:      ItemChart,
		Chart:     chart,
		CreatedAt: time.Now(),
	}
}

// IsDataset reports whether the item carries a dataset payload
func (i *Item) IsDataset() bool {
	return i.Type == ItemDataset && i.Dataset != nil
}
