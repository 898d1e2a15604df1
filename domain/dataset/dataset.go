package dataset

import (
	"time"

	"tabkit/domain/core"
)

// Dataset represents a named tabular container owned by the project tree.
// The table is read through Data and replaced wholesale through SetData;
// callers never mutate a live table's columns without first copying it.
type Dataset struct {
	ID         core.DatasetID `json:"id"`
	Name       string         `json:"name"`
	SourceFile string         `json:"source_file,omitempty"`

	// Metadata carries auxiliary facts about the dataset, such as per-column
	// profile summaries computed after import. It never affects table content.
	Metadata map[string]any `json:"metadata,omitempty"`

	table Table

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty dataset with a fresh id
func New(name string) *Dataset {
	return &Dataset{
		ID:        core.DatasetID(core.NewID()),
		Name:      name,
		table:     NewTable(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// NewWithTable creates a dataset seeded with an initial table
func NewWithTable(name string, t Table) *Dataset {
	ds := New(name)
	ds.table = t.Copy()
	return ds
}

// Data returns the current table. The returned value shares storage with the
// dataset and must be treated as read-only; mutate through Copy + SetData.
func (d *Dataset) Data() Table {
	return d.table
}

// SetData atomically replaces the whole table
func (d *Dataset) SetData(t Table) {
	d.table = t
	d.UpdatedAt = time.Now()
}

// RowCount returns the number of rows in the current table
func (d *Dataset) RowCount() int {
	return d.table.RowCount()
}

// ColumnNames returns the current column names in order
func (d *Dataset) ColumnNames() []string {
	return d.table.ColumnNames()
}

// SetMetadata stores an auxiliary fact under the given key
func (d *Dataset) SetMetadata(key string, value any) {
	if d.Metadata == nil {
		d.Metadata = make(map[string]any)
	}
	d.Metadata[key] = value
}

// Fingerprint returns the content hash of the current table
func (d *Dataset) Fingerprint() core.TableHash {
	return d.table.Fingerprint()
}
