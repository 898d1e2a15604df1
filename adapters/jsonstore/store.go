// Package jsonstore persists projects as JSON documents on disk. Tables are
// stored column-wise; NaN and infinite values are written as null because
// JSON has no representation for them, and nulls read back as missing cells.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"tabkit/domain/core"
	"tabkit/domain/dataset"
	"tabkit/domain/project"
	"tabkit/internal"
)

// Store reads and writes project files in the JSON format
type Store struct {
	logger *internal.Logger
}

// New creates a JSON project store
func New() *Store {
	return &Store{logger: internal.DefaultLogger}
}

type projectFile struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Version   string       `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Items     []itemRecord `json:"items"`
}

type itemRecord struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"item_type"`
	ParentID  string         `json:"parent_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Dataset   *datasetRecord `json:"dataset,omitempty"`
	Note      *noteRecord    `json:"note,omitempty"`
	Chart     *project.Chart `json:"chart,omitempty"`
}

type datasetRecord struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	SourceFile string           `json:"source_file,omitempty"`
	Columns    []string         `json:"columns"`
	Cells      map[string][]any `json:"cells"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type noteRecord struct {
	Content string `json:"content"`
}

// Marshal encodes a project into the JSON document format. Shared by the
// file store and the database repository so both persist identically.
func Marshal(p *project.Project) ([]byte, error) {
	file := projectFile{
		ID:        p.ID.String(),
		Name:      p.Name,
		Version:   project.FormatVersion,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	// Depth-first from the roots so every parent precedes its children and
	// load can rebuild the tree in a single pass.
	var walk func(parentID core.ItemID)
	walk = func(parentID core.ItemID) {
		for _, item := range p.GetChildren(parentID) {
			file.Items = append(file.Items, encodeItem(item))
			if item.Type == project.ItemFolder {
				walk(item.ID)
			}
		}
	}
	walk("")

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding project %q: %w", p.Name, err)
	}
	return data, nil
}

// Unmarshal decodes a project document back into the tree model
func Unmarshal(data []byte) (*project.Project, error) {
	var file projectFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidFormat, err)
	}
	if file.Name == "" {
		return nil, fmt.Errorf("%w: missing project name", core.ErrInvalidFormat)
	}

	p := project.New(file.Name)
	if file.ID != "" {
		p.ID = core.ProjectID(file.ID)
	}
	if file.Version != "" {
		p.Version = file.Version
	}
	if !file.CreatedAt.IsZero() {
		p.CreatedAt = file.CreatedAt
	}

	for _, rec := range file.Items {
		item, err := decodeItem(rec)
		if err != nil {
			return nil, err
		}
		if err := p.AddItem(item, core.ItemID(rec.ParentID)); err != nil {
			return nil, fmt.Errorf("%w: item %q: %v", core.ErrInvalidFormat, rec.Name, err)
		}
	}
	return p, nil
}

// Save writes the project to path, creating parent directories as needed
func (s *Store) Save(p *project.Project, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating project directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing project file: %w", err)
	}

	s.logger.Info("saved project %q (%d items) to %s", p.Name, p.ItemCount(), path)
	return nil
}

// Load reads a project file back into the tree model
func (s *Store) Load(path string) (*project.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrProjectNotFound, path)
		}
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	p, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded project %q (%d items) from %s", p.Name, p.ItemCount(), path)
	return p, nil
}

func encodeItem(item *project.Item) itemRecord {
	rec := itemRecord{
		ID:        item.ID.String(),
		Name:      item.Name,
		Type:      string(item.Type),
		ParentID:  item.ParentID.String(),
		CreatedAt: item.CreatedAt,
		Chart:     item.Chart,
	}
	if item.Note != nil {
		rec.Note = &noteRecord{Content: item.Note.Content}
	}
	if item.Dataset != nil {
		rec.Dataset = encodeDataset(item.Dataset)
	}
	return rec
}

func encodeDataset(ds *dataset.Dataset) *datasetRecord {
	table := ds.Data()
	cells := table.Cells()
	for _, values := range cells {
		for i, v := range values {
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				values[i] = nil
			}
		}
	}
	return &datasetRecord{
		ID:         ds.ID.String(),
		Name:       ds.Name,
		SourceFile: ds.SourceFile,
		Columns:    table.ColumnNames(),
		Cells:      cells,
		Metadata:   ds.Metadata,
		CreatedAt:  ds.CreatedAt,
		UpdatedAt:  ds.UpdatedAt,
	}
}

func decodeItem(rec itemRecord) (*project.Item, error) {
	item := &project.Item{
		ID:        core.ItemID(rec.ID),
		Name:      rec.Name,
		Type:      project.ItemType(rec.Type),
		CreatedAt: rec.CreatedAt,
		Chart:     rec.Chart,
	}
	if item.ID == "" {
		return nil, fmt.Errorf("%w: item %q has no id", core.ErrInvalidFormat, rec.Name)
	}

	switch item.Type {
	case project.ItemFolder:
	case project.ItemNote:
		note := &project.Note{}
		if rec.Note != nil {
			note.Content = rec.Note.Content
		}
		item.Note = note
	case project.ItemChart:
		if item.Chart == nil {
			item.Chart = &project.Chart{}
		}
	case project.ItemDataset:
		ds, err := decodeDataset(rec)
		if err != nil {
			return nil, err
		}
		item.Dataset = ds
	default:
		return nil, fmt.Errorf("%w: unknown item type %q", core.ErrInvalidFormat, rec.Type)
	}
	return item, nil
}

func decodeDataset(rec itemRecord) (*dataset.Dataset, error) {
	if rec.Dataset == nil {
		return nil, fmt.Errorf("%w: dataset item %q has no data", core.ErrInvalidFormat, rec.Name)
	}
	table, err := dataset.NewTableFromColumns(rec.Dataset.Columns, rec.Dataset.Cells)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset %q: %v", core.ErrInvalidFormat, rec.Dataset.Name, err)
	}

	ds := dataset.NewWithTable(rec.Dataset.Name, table)
	if rec.Dataset.ID != "" {
		ds.ID = core.DatasetID(rec.Dataset.ID)
	}
	ds.SourceFile = rec.Dataset.SourceFile
	ds.Metadata = rec.Dataset.Metadata
	if !rec.Dataset.CreatedAt.IsZero() {
		ds.CreatedAt = rec.Dataset.CreatedAt
	}
	return ds, nil
}
