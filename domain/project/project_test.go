package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabkit/domain/core"
	"tabkit/domain/dataset"
)

func TestAddItemTopLevel(t *testing.T) {
	p := New("study")

	folder := NewFolderItem("raw")
	require.NoError(t, p.AddItem(folder, ""))

	assert.Equal(t, folder, p.FindItem(folder.ID))
	assert.Len(t, p.GetChildren(""), 1)
	assert.Equal(t, core.ItemID(""), folder.ParentID)
}

func TestAddItemDuplicateID(t *testing.T) {
	p := New("study")

	folder := NewFolderItem("raw")
	require.NoError(t, p.AddItem(folder, ""))

	err := p.AddItem(folder, "")
	assert.ErrorIs(t, err, core.ErrDuplicateID)
	assert.Equal(t, 1, p.ItemCount())
}

func TestAddItemMissingParent(t *testing.T) {
	p := New("study")

	note := NewNoteItem("todo", "- check units")
	err := p.AddItem(note, core.ItemID("nope"))
	assert.ErrorIs(t, err, core.ErrItemNotFound)
	assert.Zero(t, p.ItemCount())
}

func TestGetItemMissing(t *testing.T) {
	p := New("study")

	_, err := p.GetItem(core.ItemID("nope"))
	assert.ErrorIs(t, err, core.ErrItemNotFound)
}

func TestAddItemParentMustBeFolder(t *testing.T) {
	p := New("study")

	note := NewNoteItem("todo", "")
	require.NoError(t, p.AddItem(note, ""))

	child := NewFolderItem("sub")
	err := p.AddItem(child, note.ID)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRemoveItemSubtree(t *testing.T) {
	p := New("study")

	folder := NewFolderItem("raw")
	require.NoError(t, p.AddItem(folder, ""))

	ds := dataset.New("run1")
	dsItem := NewDatasetItem(ds)
	require.NoError(t, p.AddItem(dsItem, folder.ID))

	require.NoError(t, p.RemoveItem(folder))

	assert.Nil(t, p.FindItem(folder.ID))
	assert.Nil(t, p.FindItem(dsItem.ID))
	assert.Empty(t, p.GetChildren(""))
}

func TestGetChildrenPreservesOrder(t *testing.T) {
	p := New("study")

	names := []string{"first", "second", "third"}
	for _, name := range names {
		require.NoError(t, p.AddItem(NewFolderItem(name), ""))
	}

	children := p.GetChildren("")
	require.Len(t, children, 3)
	for i, child := range children {
		assert.Equal(t, names[i], child.Name)
	}
}

func TestDatasetResolution(t *testing.T) {
	p := New("study")

	ds := dataset.New("run1")
	dsItem := NewDatasetItem(ds)
	require.NoError(t, p.AddItem(dsItem, ""))

	note := NewNoteItem("todo", "")
	require.NoError(t, p.AddItem(note, ""))

	resolved, err := p.Dataset(dsItem.ID)
	require.NoError(t, err)
	assert.Equal(t, ds, resolved)

	_, err = p.Dataset(note.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = p.Dataset(core.ItemID("missing"))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNoteRenderHTML(t *testing.T) {
	n := &Note{Content: "# Findings\n\nslope is *positive*"}
	html := n.RenderHTML()
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<em>positive</em>")
}
